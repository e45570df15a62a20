package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"taskdesk/internal/domain"
)

// AuthTokenRepository define el contrato de persistencia para llaves estaticas.
type AuthTokenRepository interface {
	Create(ctx context.Context, token domain.AuthToken) error
	GetByUserID(ctx context.Context, userID string) (domain.AuthToken, error)
	GetByKey(ctx context.Context, key string) (domain.AuthToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// PgAuthTokenRepository implementa AuthTokenRepository usando pgxpool.
type PgAuthTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuthTokenRepository(pool *pgxpool.Pool) *PgAuthTokenRepository {
	return &PgAuthTokenRepository{pool: pool}
}

func (r *PgAuthTokenRepository) Create(ctx context.Context, token domain.AuthToken) error {
	const query = `
		INSERT INTO auth_tokens (key, user_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, token.Key, token.UserID, token.CreatedAt)
	return err
}

func (r *PgAuthTokenRepository) GetByUserID(ctx context.Context, userID string) (domain.AuthToken, error) {
	const query = `
		SELECT key, user_id, created_at FROM auth_tokens WHERE user_id = $1
	`
	var t domain.AuthToken
	err := r.pool.QueryRow(ctx, query, userID).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		return domain.AuthToken{}, err
	}
	return t, nil
}

func (r *PgAuthTokenRepository) GetByKey(ctx context.Context, key string) (domain.AuthToken, error) {
	const query = `
		SELECT key, user_id, created_at FROM auth_tokens WHERE key = $1
	`
	var t domain.AuthToken
	err := r.pool.QueryRow(ctx, query, key).Scan(&t.Key, &t.UserID, &t.CreatedAt)
	if err != nil {
		return domain.AuthToken{}, err
	}
	return t, nil
}

func (r *PgAuthTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM auth_tokens WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
