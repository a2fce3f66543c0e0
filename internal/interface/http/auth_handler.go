package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/application"
	"github.com/ppfood/api/internal/interface/middleware"
	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/helpers"
	"github.com/ppfood/api/pkg/response"
	"github.com/ppfood/api/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,pwd"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	NickName  string `json:"nick_name"`
}

type verifyEmailRequest struct {
	Code string `json:"code" binding:"required,otp"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Code        string `json:"code" binding:"required,otp"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

type updateProfileRequest struct {
	FirstName *string `form:"first_name" json:"first_name"`
	LastName  *string `form:"last_name" json:"last_name"`
	NickName  *string `form:"nick_name" json:"nick_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		NickName:  req.NickName,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, u, "registered, please verify your email", nil)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	if err := h.Svc.VerifyEmail(c.Request.Context(), req.Code); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"verified": true}, "email verified", nil)
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	if err := h.Svc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         u,
		"access_token": pair.AccessToken,
	}, "login successful", gin.H{"access_expires_at": pair.AccessTokenExpiry})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(helpers.RefreshCookieName)
	if err != nil || raw == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	u, pair, err := h.Svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		h.Cookies.ClearRefresh(c)
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.SetRefresh(c, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"user":         u,
		"access_token": pair.AccessToken,
	}, "token refreshed", gin.H{"access_expires_at": pair.AccessTokenExpiry})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	raw, _ := c.Cookie(helpers.RefreshCookieName)
	if err := h.Svc.Logout(c.Request.Context(), middleware.UserID(c), raw); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		fail(c, h.Logger, err)
		return
	}
	// Always the same answer; the endpoint must not reveal which emails exist.
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the email exists, a reset link has been sent", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password reset", nil)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), middleware.UserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, h.Logger, err)
		return
	}
	h.Cookies.ClearRefresh(c)
	response.Success[any](c, http.StatusOK, gin.H{"changed": true}, "password changed, please log in again", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// UpdateMe accepts multipart form data so the profile fields and a new avatar
// can arrive in one request.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	userID := middleware.UserID(c)

	u, err := h.Svc.UpdateProfile(c.Request.Context(), userID, application.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		NickName:  req.NickName,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}

	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		defer func() { _ = src.Close() }()
		url, err := h.Svc.UploadAvatar(c.Request.Context(), userID, src, file.Filename, file.Header.Get("Content-Type"))
		if err != nil {
			fail(c, h.Logger, err)
			return
		}
		u.ProfileImage = url
	}

	response.Success(c, http.StatusOK, u, "profile updated", nil)
}
