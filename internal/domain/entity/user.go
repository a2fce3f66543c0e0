package entity

import "time"

// User is the aggregate root for the account domain.
// Passwords are stored as argon2id hashes in PasswordHash.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	NickName     string
	ProfileImage string
	Role         string
	IsVerified   bool

	// One-time codes; cleared once consumed.
	VerificationCode       string
	VerificationCodeExpiry *time.Time
	ResetCode              string
	ResetCodeExpiry        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the projection safe to return to callers.
type PublicUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	NickName     string    `json:"nick_name,omitempty"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		NickName:     u.NickName,
		ProfileImage: u.ProfileImage,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}
