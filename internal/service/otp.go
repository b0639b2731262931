package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/agrovia/farmstead/internal/cache"
	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/mailer"
	"github.com/agrovia/farmstead/pkg/logger"
)

type OTPService interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (bool, error)
}

type otpService struct {
	store  *cache.TTLCache
	mailer mailer.Service
}

// NewOTPService takes the code store as a dependency so its TTL and
// lifetime are owned by the caller, not the service.
func NewOTPService(store *cache.TTLCache, mailer mailer.Service) OTPService {
	return &otpService{store: store, mailer: mailer}
}

func (s *otpService) SendOTP(ctx context.Context, email string) error {
	if email == "" {
		return domain.ValidationError("email is required")
	}

	code, err := generateOTP()
	if err != nil {
		logger.ErrorContext(ctx, "send otp: code generation failed", "error", err)
		return domain.InternalError("failed to send verification code", err)
	}

	// Last writer wins: a fresh code replaces any outstanding one.
	s.store.Set(email, code)

	if err := s.mailer.SendOTPEmail(email, code); err != nil {
		logger.ErrorContext(ctx, "send otp: email send failed", "error", err, "email", email)
	}

	return nil
}

func (s *otpService) VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	if email == "" || code == "" {
		return false, domain.ValidationError("email and code are required")
	}

	stored, ok := s.store.Get(email)
	if !ok || stored != code {
		// The stored code survives a failed attempt; only a fresh send
		// replaces it.
		return false, domain.AuthError("invalid OTP")
	}

	s.store.Delete(email)
	return true, nil
}

// generateOTP returns a uniformly random 6-digit numeric code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
