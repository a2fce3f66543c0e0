package repository

import (
	"context"
	"time"

	"github.com/ppfood/api/internal/domain/entity"
)

// TokenRepository persists the refresh-token lineage used for rotation and
// reuse detection.
type TokenRepository interface {
	Create(ctx context.Context, t *entity.RefreshToken) error

	// LatestActive returns the newest non-revoked, non-expired token for the
	// user, or apperr.NotFound when no active lineage exists (the reuse-
	// detection signal).
	LatestActive(ctx context.Context, userID int64, now time.Time) (*entity.RefreshToken, error)

	// ActiveByUser lists all non-revoked tokens for hash-compare scans.
	ActiveByUser(ctx context.Context, userID int64) ([]*entity.RefreshToken, error)

	Revoke(ctx context.Context, id int64) error
	RevokeAllForUser(ctx context.Context, userID int64) error

	// Rotate creates the replacement token and, in the same transaction,
	// marks the old record revoked with replaced_by pointing at the new one.
	Rotate(ctx context.Context, replacement *entity.RefreshToken, oldID int64) error
}
