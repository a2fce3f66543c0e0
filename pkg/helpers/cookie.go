package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const RefreshCookieName = "refresh_token"

// Manager writes the refresh-token cookie. The access token travels in the
// Authorization header and is never stored in a cookie; the refresh token is
// HttpOnly and same-site restricted so scripts cannot read it.
type Manager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func NewCookie(domain string, secure bool, sameSite string) *Manager {
	ss := http.SameSiteLaxMode
	switch sameSite {
	case "strict":
		ss = http.SameSiteStrictMode
	case "none":
		ss = http.SameSiteNoneMode
	}
	return &Manager{Domain: domain, Secure: secure, SameSite: ss}
}

func (m *Manager) SetRefresh(c *gin.Context, refresh string, exp time.Time) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(RefreshCookieName, refresh, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *Manager) ClearRefresh(c *gin.Context) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(RefreshCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
