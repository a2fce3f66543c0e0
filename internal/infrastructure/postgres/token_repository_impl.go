package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/domain/repository"
)

const tokenColumns = `id, user_id, token_hash, expires_at, revoked, replaced_by_id, created_at`

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func scanToken(row pgx.Row) (*entity.RefreshToken, error) {
	t := &entity.RefreshToken{}
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked, &t.ReplacedByID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TokenRepository) Create(ctx context.Context, t *entity.RefreshToken) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.UserID, t.TokenHash, t.ExpiresAt)
	return row.Scan(&t.ID, &t.CreatedAt)
}

func (r *TokenRepository) LatestActive(ctx context.Context, userID int64, now time.Time) (*entity.RefreshToken, error) {
	t, err := scanToken(r.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+` FROM refresh_tokens
		WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, now))
	return t, mapErr(err, "refresh token not found")
}

func (r *TokenRepository) ActiveByUser(ctx context.Context, userID int64) ([]*entity.RefreshToken, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tokenColumns+` FROM refresh_tokens
		WHERE user_id = $1 AND revoked = FALSE
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []*entity.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *TokenRepository) Revoke(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, id)
	return err
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	return err
}

// Rotate inserts the replacement and retires the old token in one
// transaction; no intermediate state with two trusted lineages (or none) is
// ever visible.
func (r *TokenRepository) Rotate(ctx context.Context, replacement *entity.RefreshToken, oldID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, replacement.UserID, replacement.TokenHash, replacement.ExpiresAt)
	if err := row.Scan(&replacement.ID, &replacement.CreatedAt); err != nil {
		return err
	}

	res, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, replaced_by_id = $1
		WHERE id = $2 AND revoked = FALSE
	`, replacement.ID, oldID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		// Lost the race against a concurrent rotation of the same token.
		return mapErr(pgx.ErrNoRows, "refresh token not found")
	}

	return tx.Commit(ctx)
}

var _ repository.TokenRepository = (*TokenRepository)(nil)
