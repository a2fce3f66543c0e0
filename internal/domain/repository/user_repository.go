package repository

import (
	"context"
	"time"

	"github.com/ppfood/api/internal/domain/entity"
)

// UserRepository defines the interface for account persistence.
// Implementations surface duplicate-email violations as apperr.Conflict and
// missing rows as apperr.NotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByVerificationCode matches an unverified user holding the given
	// unexpired code. GetByResetCode works the same for reset codes.
	GetByVerificationCode(ctx context.Context, code string, now time.Time) (*entity.User, error)
	GetByResetCode(ctx context.Context, code string, now time.Time) (*entity.User, error)

	Update(ctx context.Context, u *entity.User) error

	// SetVerified marks the account verified and clears the code + expiry.
	SetVerified(ctx context.Context, id int64) error
	SetVerificationCode(ctx context.Context, id int64, code string, expiry time.Time) error
	SetResetCode(ctx context.Context, id int64, code string, expiry time.Time) error

	// UpdatePasswordAndRevokeTokens replaces the password hash, clears any
	// reset code, and revokes every refresh token of the user. Both writes
	// commit together or not at all.
	UpdatePasswordAndRevokeTokens(ctx context.Context, id int64, passwordHash string) error
}
