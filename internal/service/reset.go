package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/mailer"
	"github.com/agrovia/farmstead/internal/password"
	"github.com/agrovia/farmstead/internal/repo/postgres"
	"github.com/agrovia/farmstead/pkg/config"
	"github.com/agrovia/farmstead/pkg/events"
	"github.com/agrovia/farmstead/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type ResetService interface {
	RequestReset(ctx context.Context, email string) error
	RedeemReset(ctx context.Context, email, token, newPassword string) error
}

type resetService struct {
	userRepo  postgres.UserRepository
	resetRepo postgres.ResetRepository
	mailer    mailer.Service
	publisher events.Publisher
	config    *config.Config
}

func NewResetService(
	userRepo postgres.UserRepository,
	resetRepo postgres.ResetRepository,
	mailer mailer.Service,
	publisher events.Publisher,
	config *config.Config,
) ResetService {
	return &resetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    mailer,
		publisher: publisher,
		config:    config,
	}
}

func (s *resetService) RequestReset(ctx context.Context, email string) error {
	if email == "" {
		return domain.ValidationError("email is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.ErrorContext(ctx, "request reset: lookup failed", "error", err)
		return domain.InternalError("failed to request password reset", err)
	}
	if user == nil {
		return domain.NotFoundError("no account with this email")
	}

	// Only the hash is stored; the plaintext token travels in the email
	// link and nowhere else.
	token := uuid.NewString()
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorContext(ctx, "request reset: token hashing failed", "error", err)
		return domain.InternalError("failed to request password reset", err)
	}

	expiresAt := time.Now().Add(s.config.Auth.ResetTokenTTL)
	if err := s.resetRepo.Upsert(ctx, user.Email, string(tokenHash), expiresAt); err != nil {
		logger.ErrorContext(ctx, "request reset: upsert failed", "error", err)
		return domain.InternalError("failed to request password reset", err)
	}

	resetURL := s.buildResetURL(token, user.Email)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.Name, resetURL); err != nil {
		// Transient fault: the record exists, the user can retry.
		logger.ErrorContext(ctx, "request reset: email send failed", "error", err, "email", user.Email)
	}

	if err := s.publisher.Publish(ctx, events.PasswordResetRequested, events.PasswordResetRequestedEvent{
		Email:       user.Email,
		RequestedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "request reset: event publish failed", "error", err)
	}

	return nil
}

func (s *resetService) RedeemReset(ctx context.Context, email, token, newPassword string) error {
	if email == "" || token == "" {
		return domain.ValidationError("email and token are required")
	}
	if len(newPassword) < 8 {
		return domain.ValidationError("password must be at least 8 characters")
	}

	record, err := s.resetRepo.Find(ctx, email)
	if err != nil {
		logger.ErrorContext(ctx, "redeem reset: lookup failed", "error", err)
		return domain.InternalError("failed to reset password", err)
	}
	if record == nil {
		return domain.NotFoundError("no pending password reset for this email")
	}

	if record.Expired(time.Now()) {
		return domain.AuthError("reset token has expired")
	}

	if bcrypt.CompareHashAndPassword([]byte(record.TokenHash), []byte(token)) != nil {
		return domain.AuthError("invalid reset token")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		logger.ErrorContext(ctx, "redeem reset: user lookup failed", "error", err)
		return domain.InternalError("failed to reset password", err)
	}
	if user == nil {
		return domain.NotFoundError("user not found")
	}

	if password.Verify(user.PasswordHash, newPassword) {
		return domain.ValidationError("new password must differ from the current password")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		logger.ErrorContext(ctx, "redeem reset: hashing failed", "error", err)
		return domain.InternalError("failed to reset password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		logger.ErrorContext(ctx, "redeem reset: password update failed", "error", err)
		return domain.InternalError("failed to reset password", err)
	}

	// Single use: the record goes away on success only, so a wrong token
	// does not burn the pending reset.
	if err := s.resetRepo.Delete(ctx, email); err != nil {
		logger.ErrorContext(ctx, "redeem reset: record delete failed", "error", err)
	}

	if err := s.publisher.Publish(ctx, events.PasswordChanged, events.PasswordChangedEvent{
		UserID:    user.ID,
		Email:     user.Email,
		ChangedAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "redeem reset: event publish failed", "error", err)
	}

	return nil
}

func (s *resetService) buildResetURL(token, email string) string {
	return fmt.Sprintf("%s/reset_password?token=%s&email=%s",
		s.config.Frontend.Origin, url.QueryEscape(token), url.QueryEscape(email))
}
