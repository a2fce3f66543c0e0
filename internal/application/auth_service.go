package application

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/helpers"
	"github.com/ppfood/api/pkg/mailer"
)

// Publisher is the queue side of email delivery. *helpers.RabbitPublisher
// satisfies it; tests use an in-memory recorder.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService implements registration, email verification, login, refresh
// rotation, logout and the password lifecycle.
type AuthService struct {
	Users  repo.UserRepository
	Tokens repo.TokenRepository
	JWT    *helpers.JWTManager
	Mail   Publisher
	Logger *logrus.Logger

	GCS       *storage.Client
	GCSBucket string

	DefaultRole string
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	FrontendURL string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	NickName  string
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	NickName  *string
}

// Register creates an unverified account and emails a one-time verification
// code. Duplicate emails surface as apperr.Conflict from the store.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.PublicUser, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(s.VerifyTTL)

	u := &entity.User{
		Email:                  strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:           hash,
		FirstName:              in.FirstName,
		LastName:               in.LastName,
		NickName:               in.NickName,
		Role:                   s.DefaultRole,
		IsVerified:             false,
		VerificationCode:       code,
		VerificationCodeExpiry: &expiry,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.sendEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateVerifyOTP,
		Data:     map[string]any{"Code": code},
	})

	pub := u.Public()
	return &pub, nil
}

// VerifyEmail consumes a verification code: the account becomes verified and
// the code is cleared so it cannot be replayed.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) error {
	u, err := s.Users.GetByVerificationCode(ctx, code, time.Now())
	if err != nil {
		return apperr.BadRequest("invalid or expired verification code")
	}
	return s.Users.SetVerified(ctx, u.ID)
}

// ResendOTP issues a fresh verification code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if u.IsVerified {
		return apperr.BadRequest("email is already verified")
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := s.Users.SetVerificationCode(ctx, u.ID, code, time.Now().Add(s.VerifyTTL)); err != nil {
		return err
	}
	s.sendEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateVerifyOTP,
		Data:     map[string]any{"Code": code},
	})
	return nil
}

// Login authenticates and issues a token pair. Unknown email, wrong password
// and unverified account all return the same Unauthorized error so callers
// cannot probe which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.PublicUser, TokenPair, error) {
	fail := apperr.Unauthorized("invalid email or password")

	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, TokenPair{}, fail
	}
	if !helpers.VerifyPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, fail
	}
	if !u.IsVerified {
		return nil, TokenPair{}, fail
	}

	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pub := u.Public()
	return &pub, pair, nil
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	hash, err := helpers.HashToken(refresh)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Tokens.Create(ctx, &entity.RefreshToken{
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: rexp,
	}); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// Refresh validates and rotates a refresh token. A valid signature whose
// lineage has no active record means the token was already rotated and is
// being replayed; the caller gets Unauthorized and must log in again.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*entity.PublicUser, TokenPair, error) {
	fail := apperr.Unauthorized("invalid refresh token")

	claims, err := s.JWT.ParseRefreshToken(raw)
	if err != nil {
		return nil, TokenPair{}, fail
	}

	current, err := s.Tokens.LatestActive(ctx, claims.UserID, time.Now())
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithField("user_id", claims.UserID).Warn("refresh token reuse detected")
		}
		return nil, TokenPair{}, fail
	}
	if !helpers.VerifyToken(current.TokenHash, raw) {
		return nil, TokenPair{}, fail
	}

	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, TokenPair{}, fail
	}

	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	hash, err := helpers.HashToken(refresh)
	if err != nil {
		return nil, TokenPair{}, err
	}
	replacement := &entity.RefreshToken{UserID: u.ID, TokenHash: hash, ExpiresAt: rexp}
	if err := s.Tokens.Rotate(ctx, replacement, current.ID); err != nil {
		// Lost a concurrent rotation race; the presented token is now stale.
		return nil, TokenPair{}, fail
	}

	pub := u.Public()
	return &pub, TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// Logout revokes refresh tokens. With a raw token it revokes only the session
// presenting it (matched by hash compare); without one it revokes every
// session of the user.
func (s *AuthService) Logout(ctx context.Context, userID int64, raw string) error {
	if raw == "" {
		return s.Tokens.RevokeAllForUser(ctx, userID)
	}
	active, err := s.Tokens.ActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, t := range active {
		if helpers.VerifyToken(t.TokenHash, raw) {
			return s.Tokens.Revoke(ctx, t.ID)
		}
	}
	// Unknown token; nothing to revoke.
	return nil
}

// ForgotPassword always reports success so the endpoint cannot be used to
// enumerate accounts. Known emails get a reset code.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := s.Users.SetResetCode(ctx, u.ID, code, time.Now().Add(s.ResetTTL)); err != nil {
		return err
	}
	s.sendEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetPassword,
		Data: map[string]any{
			"Code":     code,
			"ResetURL": strings.TrimRight(s.FrontendURL, "/") + "/reset-password?code=" + code,
		},
	})
	return nil
}

// ResetPassword consumes a reset code, replaces the password and revokes all
// refresh tokens in the same transaction.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	u, err := s.Users.GetByResetCode(ctx, code, time.Now())
	if err != nil {
		return apperr.BadRequest("invalid or expired reset code")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePasswordAndRevokeTokens(ctx, u.ID, hash); err != nil {
		return err
	}
	s.sendEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailer.TemplateResetSuccess,
		Data:     map[string]any{"Name": u.FirstName},
	})
	return nil
}

// ChangePassword verifies the current password then rotates the hash,
// revoking every session.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.VerifyPassword(u.PasswordHash, current) {
		return apperr.BadRequest("current password is incorrect")
	}
	if current == newPassword {
		return apperr.BadRequest("new password must be different from the current password")
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePasswordAndRevokeTokens(ctx, userID, hash)
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*entity.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// UpdateProfile patches display fields. Nil pointers leave a field untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*entity.PublicUser, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.NickName != nil {
		u.NickName = *upd.NickName
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

// UploadAvatar stores the image in GCS and records its public URL on the profile.
func (s *AuthService) UploadAvatar(ctx context.Context, userID int64, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.Internal("object storage is not configured")
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := "avatars/" + uuid.NewString() + ext
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.ProfileImage = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	return url, nil
}

func (s *AuthService) sendEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Error("publish email job failed")
	}
}
