package service

import (
	"context"
	"strconv"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/password"
	"github.com/agrovia/farmstead/internal/repo/postgres"
	"github.com/agrovia/farmstead/pkg/auth"
	"github.com/agrovia/farmstead/pkg/config"
	"github.com/agrovia/farmstead/pkg/events"
	"github.com/agrovia/farmstead/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// invalidCredentials is deliberately the same for unknown emails and
// wrong passwords so login cannot be used to enumerate accounts.
const invalidCredentials = "invalid email or password"

type CredentialService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Profile, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.Profile, *domain.Session, error)
	AdminLogin(ctx context.Context, req *domain.LoginRequest) (string, error)
	ValidateSession(ctx context.Context, sid, claimedUserID string) bool
	ResolveSession(ctx context.Context, sid string) (*domain.Session, error)
	Logout(ctx context.Context, sid string) error
	DeleteAccount(ctx context.Context, userID int64, sid string) error
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
	GetUser(ctx context.Context, userID int64) (*domain.Profile, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type credentialService struct {
	userRepo    postgres.UserRepository
	adminRepo   postgres.AdminRepository
	sessionRepo postgres.SessionRepository
	publisher   events.Publisher
	config      *config.Config
}

func NewCredentialService(
	userRepo postgres.UserRepository,
	adminRepo postgres.AdminRepository,
	sessionRepo postgres.SessionRepository,
	publisher events.Publisher,
	config *config.Config,
) CredentialService {
	return &credentialService{
		userRepo:    userRepo,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
		config:      config,
	}
}

func (s *credentialService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.ValidationError(err.Error())
	}

	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil {
		logger.ErrorContext(ctx, "register: existence check failed", "error", err)
		return nil, domain.InternalError("failed to register", err)
	}
	if exists {
		return nil, domain.ConflictError("an account with this email or phone already exists")
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		logger.ErrorContext(ctx, "register: password hashing failed", "error", err)
		return nil, domain.InternalError("failed to register", err)
	}

	user, err := s.userRepo.Create(ctx, req, hash)
	if err != nil {
		logger.ErrorContext(ctx, "register: insert failed", "error", err)
		return nil, domain.InternalError("failed to register", err)
	}

	if err := s.publisher.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		BusinessName: user.BusinessName,
		RegisteredAt: user.CreatedAt,
	}); err != nil {
		logger.WarnContext(ctx, "register: event publish failed", "error", err)
	}

	return user.ToProfile(), nil
}

func (s *credentialService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Profile, *domain.Session, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, nil, domain.ValidationError(err.Error())
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.ErrorContext(ctx, "login: lookup failed", "error", err)
		return nil, nil, domain.InternalError("failed to log in", err)
	}
	if user == nil {
		return nil, nil, domain.AuthError(invalidCredentials)
	}

	if !password.Verify(user.PasswordHash, req.Password) {
		return nil, nil, domain.AuthError(invalidCredentials)
	}

	now := time.Now()
	session := &domain.Session{
		SID:       uuid.NewString(),
		Payload:   domain.SessionPayload{UserID: user.ID, CreatedAt: now},
		ExpiresAt: now.Add(s.config.Auth.SessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, session.SID, session.Payload, session.ExpiresAt); err != nil {
		logger.ErrorContext(ctx, "login: session create failed", "error", err)
		return nil, nil, domain.InternalError("failed to log in", err)
	}

	return user.ToProfile(), session, nil
}

func (s *credentialService) AdminLogin(ctx context.Context, req *domain.LoginRequest) (string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return "", domain.ValidationError(err.Error())
	}

	admin, err := s.adminRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		logger.ErrorContext(ctx, "admin login: lookup failed", "error", err)
		return "", domain.InternalError("failed to log in", err)
	}
	if admin == nil || !password.Verify(admin.PasswordHash, req.Password) {
		return "", domain.AuthError(invalidCredentials)
	}

	token, err := auth.NewAdminToken(s.config.Auth.JWTSecret, s.config.Auth.AdminTokenTTL)
	if err != nil {
		logger.ErrorContext(ctx, "admin login: token mint failed", "error", err)
		return "", domain.InternalError("failed to log in", err)
	}

	return token, nil
}

// ResolveSession returns the live session for sid, or nil when the sid is
// unknown or expired. Expired rows are deleted on the spot; the hourly
// sweep catches the rest.
func (s *credentialService) ResolveSession(ctx context.Context, sid string) (*domain.Session, error) {
	if sid == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.Find(ctx, sid)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired(time.Now()) {
		if err := s.sessionRepo.Delete(ctx, sid); err != nil {
			logger.WarnContext(ctx, "failed to delete expired session", "error", err)
		}
		return nil, nil
	}

	return session, nil
}

func (s *credentialService) ValidateSession(ctx context.Context, sid, claimedUserID string) bool {
	if sid == "" || claimedUserID == "" {
		return false
	}

	session, err := s.ResolveSession(ctx, sid)
	if err != nil {
		logger.ErrorContext(ctx, "session validation failed", "error", err)
		return false
	}
	if session == nil {
		return false
	}

	return session.MatchesUser(claimedUserID)
}

func (s *credentialService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, sid); err != nil {
		logger.ErrorContext(ctx, "logout: session delete failed", "error", err)
		return domain.InternalError("failed to log out", err)
	}
	return nil
}

func (s *credentialService) DeleteAccount(ctx context.Context, userID int64, sid string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "delete account: lookup failed", "error", err)
		return domain.InternalError("failed to delete account", err)
	}
	if user == nil {
		return domain.NotFoundError("user not found")
	}

	if err := s.userRepo.DeleteWithSession(ctx, userID, sid); err != nil {
		if err == pgx.ErrNoRows {
			return domain.NotFoundError("user not found")
		}
		logger.ErrorContext(ctx, "delete account: delete failed", "error", err)
		return domain.InternalError("failed to delete account", err)
	}

	if err := s.publisher.Publish(ctx, events.UserDeleted, events.UserDeletedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		DeletedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "delete account: event publish failed", "error", err)
	}

	return nil
}

func (s *credentialService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "get profile: lookup failed", "error", err)
		return nil, domain.InternalError("failed to load profile", err)
	}
	if user == nil {
		return nil, domain.NotFoundError("user not found")
	}
	return user.ToProfile(), nil
}

func (s *credentialService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.ValidationError(err.Error())
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, req)
	if err != nil {
		logger.ErrorContext(ctx, "update profile: update failed", "error", err)
		return nil, domain.InternalError("failed to update profile", err)
	}
	if user == nil {
		return nil, domain.NotFoundError("user not found")
	}
	return user.ToProfile(), nil
}

func (s *credentialService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		logger.ErrorContext(ctx, "list users failed", "error", err)
		return nil, domain.InternalError("failed to list users", err)
	}

	profiles := make([]*domain.Profile, len(users))
	for i := range users {
		profiles[i] = users[i].ToProfile()
	}
	return profiles, nil
}

func (s *credentialService) GetUser(ctx context.Context, userID int64) (*domain.Profile, error) {
	return s.GetProfile(ctx, userID)
}

func (s *credentialService) DeleteUser(ctx context.Context, userID int64) error {
	// Admin-initiated removal has no session cookie to clear; any live
	// sessions turn into dangling rows that the sweep reaps.
	return s.DeleteAccount(ctx, userID, "")
}

// FormatUserID renders a user id the way session payloads are compared.
func FormatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}
