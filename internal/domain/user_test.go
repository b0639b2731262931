package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterRequest {
	return RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
		Phone:    "+15551234567",
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	ok := validRegister()
	require.NoError(t, ok.Validate())

	tests := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing name", func(r *RegisterRequest) { r.Name = "" }},
		{"missing email", func(r *RegisterRequest) { r.Email = "" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"missing phone", func(r *RegisterRequest) { r.Phone = "" }},
		{"bad phone", func(r *RegisterRequest) { r.Phone = "abc" }},
		{"short phone", func(r *RegisterRequest) { r.Phone = "12345" }},
		{"missing password", func(r *RegisterRequest) { r.Password = "" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRegister()
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestRegisterRequestNormalize(t *testing.T) {
	r := RegisterRequest{
		Email:    "  Alice@Example.COM ",
		Name:     " Alice ",
		Phone:    " +15551234567 ",
		SubTypes: []string{"Fishery", "Cattle", "Fishery", "Poultry"},
	}
	r.Normalize()

	assert.Equal(t, "alice@example.com", r.Email)
	assert.Equal(t, "Alice", r.Name)
	assert.Equal(t, "+15551234567", r.Phone)
	assert.Equal(t, "en", r.Locale)
	assert.Equal(t, []string{"Fishery", "Poultry"}, r.SubTypes)
}

func TestFilterSubTypes(t *testing.T) {
	assert.Nil(t, FilterSubTypes(nil))
	assert.Empty(t, FilterSubTypes([]string{"Cattle", "Bees"}))
	assert.Equal(t,
		[]string{"Poultry", "Animal Husbandry", "Fishery"},
		FilterSubTypes([]string{"Poultry", " Animal Husbandry ", "Poultry", "Fishery"}))
}

func TestUpdateProfileRequestValidate(t *testing.T) {
	empty := ""
	bad := "abc"
	good := "+15559876543"

	r := UpdateProfileRequest{}
	assert.NoError(t, r.Validate())

	r = UpdateProfileRequest{Phone: &good}
	assert.NoError(t, r.Validate())

	r = UpdateProfileRequest{Phone: &bad}
	assert.Error(t, r.Validate())

	r = UpdateProfileRequest{Name: &empty}
	assert.Error(t, r.Validate())
}

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	u := User{ID: 1, Email: "alice@example.com", PasswordHash: "secret"}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestToProfile(t *testing.T) {
	u := User{
		ID:           7,
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Name:         "Alice",
		AccountType:  AccountTypeProducer,
		SubTypes:     []string{SubTypeFishery},
	}
	p := u.ToProfile()
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, AccountTypeProducer, p.AccountType)
	assert.Equal(t, []string{SubTypeFishery}, p.SubTypes)
}
