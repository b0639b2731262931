package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewAdminTokenRoundTrip(t *testing.T) {
	token, err := NewAdminToken(testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAdminToken(token, testSecret)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseAdminTokenWrongSecret(t *testing.T) {
	token, err := NewAdminToken(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseAdminTokenExpired(t *testing.T) {
	token, err := NewAdminToken(testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseAdminTokenRejectsNonAdminClaims(t *testing.T) {
	claims := AdminClaims{
		IsAdmin: false,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAdminToken(token, testSecret)
	assert.Error(t, err)
}

func TestParseAdminTokenGarbage(t *testing.T) {
	_, err := ParseAdminToken("not.a.token", testSecret)
	assert.Error(t, err)
}
