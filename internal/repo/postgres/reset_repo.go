package postgres

import (
	"context"
	"time"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetRepository interface {
	Upsert(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	Find(ctx context.Context, email string) (*domain.PasswordReset, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type resetRepository struct {
	pool *pgxpool.Pool
}

func NewResetRepository(pool *pgxpool.Pool) ResetRepository {
	return &resetRepository{pool: pool}
}

// Upsert keeps at most one live record per email: a new forgot-password
// request replaces any prior unredeemed token.
func (r *resetRepository) Upsert(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	const q = `
		INSERT INTO password_resets (email, token_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email, tokenHash, expiresAt)
	return err
}

func (r *resetRepository) Find(ctx context.Context, email string) (*domain.PasswordReset, error) {
	const q = `SELECT email, token_hash, expires_at FROM password_resets WHERE email = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var pr domain.PasswordReset
	err := r.pool.QueryRow(ctx, q, email).Scan(&pr.Email, &pr.TokenHash, &pr.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *resetRepository) Delete(ctx context.Context, email string) error {
	const q = `DELETE FROM password_resets WHERE email = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, email)
	return err
}

func (r *resetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM password_resets WHERE expires_at < now()`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
