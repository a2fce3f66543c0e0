package application

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/helpers"
)

func newAuthService() (*AuthService, *fakeUserRepo, *fakeTokenRepo, *recordingPublisher) {
	tokens := newFakeTokenRepo()
	users := newFakeUserRepo(tokens)
	pub := &recordingPublisher{}
	svc := &AuthService{
		Users:       users,
		Tokens:      tokens,
		JWT:         helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour),
		Mail:        pub,
		DefaultRole: "CUSTOMER",
		VerifyTTL:   30 * time.Minute,
		ResetTTL:    time.Hour,
		FrontendURL: "https://app.example.test",
	}
	return svc, users, tokens, pub
}

func register(t *testing.T, svc *AuthService, users *fakeUserRepo, email, password string, verify bool) int64 {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{Email: email, Password: password, FirstName: "Test"})
	require.NoError(t, err)
	if verify {
		require.NoError(t, svc.VerifyEmail(context.Background(), users.users[u.ID].VerificationCode))
	}
	return u.ID
}

func TestRegister(t *testing.T) {
	svc, users, _, pub := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "Sasha@Example.test", Password: "supersecret", FirstName: "Sasha"})
	require.NoError(t, err)
	require.Equal(t, "sasha@example.test", u.Email)
	require.Equal(t, "CUSTOMER", u.Role)
	require.False(t, u.IsVerified)

	stored := users.users[u.ID]
	require.Len(t, stored.VerificationCode, 6)
	require.NotNil(t, stored.VerificationCodeExpiry)
	require.Equal(t, 1, pub.count())

	_, err = svc.Register(ctx, RegisterInput{Email: "sasha@example.test", Password: "othersecret"})
	require.Equal(t, http.StatusConflict, apperr.StatusOf(err))
}

func TestVerifyEmail(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "v@example.test", "supersecret", false)
	code := users.users[id].VerificationCode

	require.NoError(t, svc.VerifyEmail(ctx, code))
	require.True(t, users.users[id].IsVerified)
	require.Empty(t, users.users[id].VerificationCode)

	// Codes are single-use.
	err := svc.VerifyEmail(ctx, code)
	require.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "late@example.test", "supersecret", false)
	expired := time.Now().Add(-time.Minute)
	users.users[id].VerificationCodeExpiry = &expired

	err := svc.VerifyEmail(ctx, users.users[id].VerificationCode)
	require.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
	require.False(t, users.users[id].IsVerified)
}

func TestResendOTP(t *testing.T) {
	svc, users, _, pub := newAuthService()
	ctx := context.Background()

	require.Equal(t, http.StatusNotFound, apperr.StatusOf(svc.ResendOTP(ctx, "nobody@example.test")))

	id := register(t, svc, users, "resend@example.test", "supersecret", false)
	first := users.users[id].VerificationCode
	require.NoError(t, svc.ResendOTP(ctx, "resend@example.test"))
	require.NotEqual(t, first, users.users[id].VerificationCode)
	require.Equal(t, 2, pub.count())

	require.NoError(t, svc.VerifyEmail(ctx, users.users[id].VerificationCode))
	err := svc.ResendOTP(ctx, "resend@example.test")
	require.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	register(t, svc, users, "known@example.test", "supersecret", true)
	register(t, svc, users, "unverified@example.test", "supersecret", false)

	_, _, errUnknown := svc.Login(ctx, "ghost@example.test", "supersecret")
	_, _, errWrongPwd := svc.Login(ctx, "known@example.test", "wrongpass")
	_, _, errUnverified := svc.Login(ctx, "unverified@example.test", "supersecret")

	for _, err := range []error{errUnknown, errWrongPwd, errUnverified} {
		require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	}
	require.Equal(t, errUnknown.Error(), errWrongPwd.Error())
	require.Equal(t, errWrongPwd.Error(), errUnverified.Error())
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, users, tokens, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "pair@example.test", "supersecret", true)

	u, pair, err := svc.Login(ctx, "pair@example.test", "supersecret")
	require.NoError(t, err)
	require.Equal(t, id, u.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, id, claims.UserID)
	require.Equal(t, "CUSTOMER", claims.Role)

	// Only a hash of the refresh token is stored.
	active, err := tokens.ActiveByUser(ctx, id)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotEqual(t, pair.RefreshToken, active[0].TokenHash)
	require.True(t, helpers.VerifyToken(active[0].TokenHash, pair.RefreshToken))
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	svc, users, tokens, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "rotate@example.test", "supersecret", true)
	_, pair, err := svc.Login(ctx, "rotate@example.test", "supersecret")
	require.NoError(t, err)

	_, next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old record is revoked and linked to its replacement.
	latest, err := tokens.LatestActive(ctx, id, time.Now())
	require.NoError(t, err)
	for _, rec := range tokens.tokens {
		if rec.Revoked {
			require.NotNil(t, rec.ReplacedByID)
			require.Equal(t, latest.ID, *rec.ReplacedByID)
		}
	}

	// Replaying the rotated-out token fails; the fresh one still works.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))

	_, _, err = svc.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbageAndForeignTokens(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	register(t, svc, users, "victim@example.test", "supersecret", true)

	_, _, err := svc.Refresh(ctx, "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))

	// Signed with the right key but never issued through login: no stored
	// lineage matches, so it is treated as reuse.
	forged, _, err := svc.JWT.GenerateRefreshToken(999, "ghost@example.test", "CUSTOMER")
	require.NoError(t, err)
	_, _, err = svc.Refresh(ctx, forged)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestLogout(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "logout@example.test", "supersecret", true)
	_, first, err := svc.Login(ctx, "logout@example.test", "supersecret")
	require.NoError(t, err)
	_, second, err := svc.Login(ctx, "logout@example.test", "supersecret")
	require.NoError(t, err)

	// Targeted logout revokes only the presenting session.
	require.NoError(t, svc.Logout(ctx, id, first.RefreshToken))
	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	_, rotated, err := svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	// Logout-everywhere kills the rest.
	require.NoError(t, svc.Logout(ctx, id, ""))
	_, _, err = svc.Refresh(ctx, rotated.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestChangePasswordRevokesAllSessions(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "change@example.test", "supersecret", true)
	_, pair, err := svc.Login(ctx, "change@example.test", "supersecret")
	require.NoError(t, err)

	require.Equal(t, http.StatusBadRequest,
		apperr.StatusOf(svc.ChangePassword(ctx, id, "wrongcurrent", "freshsecret")))
	require.Equal(t, http.StatusBadRequest,
		apperr.StatusOf(svc.ChangePassword(ctx, id, "supersecret", "supersecret")))

	require.NoError(t, svc.ChangePassword(ctx, id, "supersecret", "freshsecret"))

	// Every pre-change session is out.
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))

	_, _, err = svc.Login(ctx, "change@example.test", "supersecret")
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	_, _, err = svc.Login(ctx, "change@example.test", "freshsecret")
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, _, pub := newAuthService()
	ctx := context.Background()

	// Unknown email still reports success and sends nothing.
	require.NoError(t, svc.ForgotPassword(ctx, "ghost@example.test"))
	require.Equal(t, 0, pub.count())

	id := register(t, svc, users, "reset@example.test", "supersecret", true)
	_, pair, err := svc.Login(ctx, "reset@example.test", "supersecret")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "reset@example.test"))
	code := users.users[id].ResetCode
	require.Len(t, code, 6)

	require.Equal(t, http.StatusBadRequest,
		apperr.StatusOf(svc.ResetPassword(ctx, "000000", "freshsecret")))

	require.NoError(t, svc.ResetPassword(ctx, code, "freshsecret"))

	// Code consumed, sessions revoked, new password live.
	require.Equal(t, http.StatusBadRequest,
		apperr.StatusOf(svc.ResetPassword(ctx, code, "anothersecret")))
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
	_, _, err = svc.Login(ctx, "reset@example.test", "freshsecret")
	require.NoError(t, err)
}

// Only the not-found lookup is masked as success; a store outage must
// surface to the caller.
func TestForgotPasswordPropagatesStoreErrors(t *testing.T) {
	svc, users, _, pub := newAuthService()
	ctx := context.Background()

	outage := errors.New("connection refused")
	users.failGetByEmail = outage

	err := svc.ForgotPassword(ctx, "anyone@example.test")
	require.ErrorIs(t, err, outage)
	require.Equal(t, 0, pub.count())
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, _ := newAuthService()
	ctx := context.Background()

	id := register(t, svc, users, "profile@example.test", "supersecret", true)

	nick := "PP"
	u, err := svc.UpdateProfile(ctx, id, ProfileUpdate{NickName: &nick})
	require.NoError(t, err)
	require.Equal(t, "PP", u.NickName)
	require.Equal(t, "Test", u.FirstName) // untouched

	got, err := svc.GetProfile(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "PP", got.NickName)
}
