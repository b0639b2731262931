package postgres

import (
	"context"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository interface {
	Create(ctx context.Context, sid string, payload domain.SessionPayload, expiresAt time.Time) error
	Find(ctx context.Context, sid string) (*domain.Session, error)
	Delete(ctx context.Context, sid string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepository{pool: pool}
}

func (r *sessionRepository) Create(ctx context.Context, sid string, payload domain.SessionPayload, expiresAt time.Time) error {
	const q = `INSERT INTO sessions (sid, payload, expires_at) VALUES ($1, $2, $3)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	data, err := payload.Marshal()
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, q, sid, data, expiresAt)
	return err
}

func (r *sessionRepository) Find(ctx context.Context, sid string) (*domain.Session, error) {
	const q = `SELECT sid, payload, expires_at FROM sessions WHERE sid = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var (
		s    domain.Session
		data []byte
	)
	err := r.pool.QueryRow(ctx, q, sid).Scan(&s.SID, &data, &s.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Payload, err = domain.UnmarshalSessionPayload(data)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete is idempotent: removing an absent sid is not an error.
func (r *sessionRepository) Delete(ctx context.Context, sid string) error {
	const q = `DELETE FROM sessions WHERE sid = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, sid)
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM sessions WHERE expires_at < now()`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
