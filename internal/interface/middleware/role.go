package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppfood/api/pkg/response"
)

// RequireRole gates a route group to callers holding the given role.
// Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != role {
			response.Error[any](c, http.StatusForbidden, "insufficient permissions", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
