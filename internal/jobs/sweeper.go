package jobs

import (
	"context"
	"time"

	"github.com/agrovia/farmstead/internal/repo/postgres"
	"github.com/agrovia/farmstead/pkg/logger"
)

// Sweeper periodically deletes expired session and password-reset rows.
// It is the only backstop against unbounded table growth, since session
// validation deletes lazily and only the row it is asked about.
type Sweeper struct {
	sessions postgres.SessionRepository
	resets   postgres.ResetRepository
	interval time.Duration
}

func NewSweeper(sessions postgres.SessionRepository, resets postgres.ResetRepository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{sessions: sessions, resets: resets, interval: interval}
}

// Run blocks until ctx is canceled. Sweep failures are logged and the
// schedule keeps going.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if n, err := s.sessions.DeleteExpired(ctx); err != nil {
		logger.Error("session sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("swept expired sessions", "deleted", n)
	}

	if n, err := s.resets.DeleteExpired(ctx); err != nil {
		logger.Error("password reset sweep failed", "error", err)
	} else if n > 0 {
		logger.Info("swept expired password resets", "deleted", n)
	}
}
