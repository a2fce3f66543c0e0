package entity

import "time"

// RefreshToken is one issued refresh credential. Only the argon2id hash of
// the raw token is stored. Rotation links the replacement via ReplacedByID
// and revokes the old record in the same transaction.
type RefreshToken struct {
	ID           int64
	UserID       int64
	TokenHash    string
	ExpiresAt    time.Time
	Revoked      bool
	ReplacedByID *int64
	CreatedAt    time.Time
}

// Active reports whether the token can still be trusted at the given instant.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
