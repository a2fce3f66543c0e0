package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/domain/repository"
)

const userColumns = `id, email, password_hash, first_name, last_name, nick_name, profile_image,
		role, is_verified, verification_code, verification_code_expiry,
		reset_code, reset_code_expiry, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var verifyCode, resetCode *string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.NickName,
		&u.ProfileImage, &u.Role, &u.IsVerified, &verifyCode, &u.VerificationCodeExpiry,
		&resetCode, &u.ResetCodeExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if verifyCode != nil {
		u.VerificationCode = *verifyCode
	}
	if resetCode != nil {
		u.ResetCode = *resetCode
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, first_name, last_name, nick_name, role,
			is_verified, verification_code, verification_code_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING id, created_at, updated_at
	`, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.NickName, u.Role,
		u.IsVerified, u.VerificationCode, u.VerificationCodeExpiry)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt), "user not found")
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	return u, mapErr(err, "user not found")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email))
	return u, mapErr(err, "user not found")
}

func (r *UserRepository) GetByVerificationCode(ctx context.Context, code string, now time.Time) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE verification_code = $1 AND verification_code_expiry > $2 AND is_verified = FALSE
	`, code, now))
	return u, mapErr(err, "user not found")
}

func (r *UserRepository) GetByResetCode(ctx context.Context, code string, now time.Time) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE reset_code = $1 AND reset_code_expiry > $2
	`, code, now))
	return u, mapErr(err, "user not found")
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, nick_name = $4,
			profile_image = $5, updated_at = $6
		WHERE id = $7
	`, u.Email, u.FirstName, u.LastName, u.NickName, u.ProfileImage, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err, "user not found")
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "user not found")
	}
	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_verified = TRUE, verification_code = NULL, verification_code_expiry = NULL,
			updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "user not found")
	}
	return nil
}

func (r *UserRepository) SetVerificationCode(ctx context.Context, id int64, code string, expiry time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET verification_code = $1, verification_code_expiry = $2, updated_at = now()
		WHERE id = $3
	`, code, expiry, id)
	return err
}

func (r *UserRepository) SetResetCode(ctx context.Context, id int64, code string, expiry time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_code = $1, reset_code_expiry = $2, updated_at = now()
		WHERE id = $3
	`, code, expiry, id)
	return err
}

// UpdatePasswordAndRevokeTokens commits the new hash and the token sweep in a
// single transaction so a crash cannot leave old sessions valid under a new
// password.
func (r *UserRepository) UpdatePasswordAndRevokeTokens(ctx context.Context, id int64, passwordHash string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := tx.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_code = NULL, reset_code_expiry = NULL, updated_at = now()
		WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "user not found")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
