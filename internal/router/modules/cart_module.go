package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppfood/api/internal/container"
	handlers "github.com/ppfood/api/internal/interface/http"
	"github.com/ppfood/api/internal/interface/middleware"
)

// CartModule wires the per-user cart endpoints. Everything requires auth.
type CartModule struct {
	Handler *handlers.CartHandler
}

func NewCart(h *handlers.CartHandler) *CartModule {
	return &CartModule{Handler: h}
}

func (m *CartModule) Register(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	cart.Use(middleware.Auth(container.GetJWT()))
	cart.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		cart.GET("", m.Handler.GetCart)
		cart.POST("/items", m.Handler.AddItem)
		cart.PUT("/items/:itemId", m.Handler.UpdateItem)
		cart.DELETE("/items/:itemId", m.Handler.RemoveItem)
		cart.DELETE("", m.Handler.ClearCart)
	}
}
