package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppfood/api/internal/container"
	handlers "github.com/ppfood/api/internal/interface/http"
	"github.com/ppfood/api/internal/interface/middleware"
)

// AuthModule wires the credential and session endpoints. Registration,
// verification, login, refresh and the password flows are public; logout,
// profile and change-password sit behind the bearer middleware.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuth(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	// Credential endpoints are brute-force targets; keep them tight per IP.
	strictLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	auth := rg.Group("/auth")
	auth.POST("/register", strictLimiter, m.Handler.Register)
	auth.POST("/verify-email", strictLimiter, m.Handler.VerifyEmail)
	auth.POST("/resend-otp", strictLimiter, m.Handler.ResendOTP)
	auth.POST("/login", strictLimiter, m.Handler.Login)
	auth.POST("/refresh-token", refreshLimiter, m.Handler.Refresh)
	auth.POST("/forgot-password", strictLimiter, m.Handler.ForgotPassword)
	auth.POST("/reset-password", strictLimiter, m.Handler.ResetPassword)

	protected := auth.Group("/")
	protected.Use(middleware.Auth(container.GetJWT()))
	protected.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		protected.POST("/logout", m.Handler.Logout)
		protected.GET("/me", m.Handler.Me)
		protected.PUT("/me", m.Handler.UpdateMe)
		protected.PUT("/me/change-password", m.Handler.ChangePassword)
	}
}
