package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/service"
	"github.com/agrovia/farmstead/pkg/auth"
	"github.com/agrovia/farmstead/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCredentialService(t *testing.T) (service.CredentialService, *mockUserRepo, *mockAdminRepo, *mockSessionRepo) {
	t.Helper()
	sessions := newMockSessionRepo()
	users := newMockUserRepo(sessions)
	admins := newMockAdminRepo()
	svc := service.NewCredentialService(users, admins, sessions, events.NopPublisher{}, testConfig())
	return svc, users, admins, sessions
}

func registerAlice(t *testing.T, svc service.CredentialService) *domain.Profile {
	t.Helper()
	profile, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
		Name:     "Alice",
		Phone:    "+15550100",
		SubTypes: []string{"Poultry"},
	})
	require.NoError(t, err)
	return profile
}

func TestRegister_Success(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)

	profile := registerAlice(t, svc)

	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, domain.AccountTypeProducer, profile.AccountType)
	assert.Equal(t, []string{"Poultry"}, profile.SubTypes)
}

func TestRegister_DuplicateEmailOrPhone(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "other@example.com",
		Password: "Secret123!",
		Name:     "Other",
		Phone:    "+15550100", // same phone
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.AsError(err).Kind)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "bob@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.AsError(err).Kind)
}

func TestLogin_SuccessCreatesSession(t *testing.T) {
	svc, _, _, sessions := newCredentialService(t)
	registerAlice(t, svc)

	profile, session, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "alice@example.com", profile.Email)
	assert.NotEmpty(t, session.SID)
	assert.Contains(t, sessions.sessions, session.SID)
	assert.True(t, session.ExpiresAt.After(time.Now().Add(71*time.Hour)))
}

func TestLogin_WrongPasswordAndUnknownEmailAreIndistinguishable(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)
	registerAlice(t, svc)

	_, _, errWrongPw := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "nope-nope",
	})
	_, _, errNoUser := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ghost@example.com",
		Password: "Secret123!",
	})

	require.Error(t, errWrongPw)
	require.Error(t, errNoUser)
	assert.Equal(t, domain.KindAuth, domain.AsError(errWrongPw).Kind)
	assert.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestValidateSession(t *testing.T) {
	svc, _, _, sessions := newCredentialService(t)
	profile := registerAlice(t, svc)

	_, session, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	userID := service.FormatUserID(profile.ID)
	ctx := context.Background()

	assert.True(t, svc.ValidateSession(ctx, session.SID, userID))
	assert.False(t, svc.ValidateSession(ctx, session.SID, "999"))
	assert.False(t, svc.ValidateSession(ctx, "never-issued", userID))
	assert.False(t, svc.ValidateSession(ctx, "", userID))
	assert.False(t, svc.ValidateSession(ctx, session.SID, ""))

	// Expired sessions fail validation and are deleted lazily.
	sessions.sessions[session.SID].ExpiresAt = time.Now().Add(-time.Minute)
	assert.False(t, svc.ValidateSession(ctx, session.SID, userID))
	assert.NotContains(t, sessions.sessions, session.SID)
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _, sessions := newCredentialService(t)
	profile := registerAlice(t, svc)

	_, session, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Logout(ctx, session.SID))
	assert.NotContains(t, sessions.sessions, session.SID)
	assert.False(t, svc.ValidateSession(ctx, session.SID, service.FormatUserID(profile.ID)))

	// Deleting a nonexistent sid is not an error.
	require.NoError(t, svc.Logout(ctx, session.SID))
}

func TestDeleteAccount(t *testing.T) {
	svc, users, _, sessions := newCredentialService(t)
	profile := registerAlice(t, svc)

	_, session, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.DeleteAccount(ctx, profile.ID, session.SID))

	assert.NotContains(t, users.users, profile.ID)
	assert.NotContains(t, sessions.sessions, session.SID)

	// Re-login with the old credentials fails.
	_, _, err = svc.Login(ctx, &domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "Secret123!",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindAuth, domain.AsError(err).Kind)
}

func TestDeleteAccount_UnknownUser(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)

	err := svc.DeleteAccount(context.Background(), 42, "some-sid")
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.AsError(err).Kind)
}

func TestAdminLogin(t *testing.T) {
	svc, _, admins, sessions := newCredentialService(t)

	// Seed an admin the way the registration path hashes passwords.
	hash := mustHash(t, "AdminPass1!")
	admins.admins["root@farmstead.io"] = &domain.Admin{
		ID: 1, Email: "root@farmstead.io", PasswordHash: hash,
	}

	token, err := svc.AdminLogin(context.Background(), &domain.LoginRequest{
		Email:    "root@farmstead.io",
		Password: "AdminPass1!",
	})
	require.NoError(t, err)

	claims, err := auth.ParseAdminToken(token, "test-secret")
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)

	// No session row is created for admin tokens.
	assert.Empty(t, sessions.sessions)

	_, err = svc.AdminLogin(context.Background(), &domain.LoginRequest{
		Email:    "root@farmstead.io",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindAuth, domain.AsError(err).Kind)
}

func TestUpdateProfile_DropsUnknownSubTypes(t *testing.T) {
	svc, _, _, _ := newCredentialService(t)
	profile := registerAlice(t, svc)

	updated, err := svc.UpdateProfile(context.Background(), profile.ID, &domain.UpdateProfileRequest{
		SubTypes: []string{"Poultry", "Spaceships", "Fishery", "Poultry"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Poultry", "Fishery"}, updated.SubTypes)
}

func TestSweepRemovesExpiredSessions(t *testing.T) {
	svc, _, _, sessions := newCredentialService(t)
	registerAlice(t, svc)

	ctx := context.Background()
	_, live, err := svc.Login(ctx, &domain.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)
	_, stale, err := svc.Login(ctx, &domain.LoginRequest{Email: "alice@example.com", Password: "Secret123!"})
	require.NoError(t, err)

	sessions.sessions[stale.SID].ExpiresAt = time.Now().Add(-time.Hour)

	n, err := sessions.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, sessions.sessions, live.SID)
	assert.NotContains(t, sessions.sessions, stale.SID)
}
