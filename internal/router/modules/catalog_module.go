package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppfood/api/internal/container"
	handlers "github.com/ppfood/api/internal/interface/http"
	"github.com/ppfood/api/internal/interface/middleware"
)

// CatalogModule wires product and category endpoints. Reads are public;
// mutations require an authenticated admin.
type CatalogModule struct {
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
}

func NewCatalog(products *handlers.ProductHandler, categories *handlers.CategoryHandler) *CatalogModule {
	return &CatalogModule{Products: products, Categories: categories}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	adminRole := container.GetConfig().AdminRole

	publicLimiter := middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByIPAndPath(), nil)
	adminGuard := []gin.HandlerFunc{
		middleware.Auth(container.GetJWT()),
		middleware.RequireRole(adminRole),
	}

	products := rg.Group("/products")
	products.GET("", publicLimiter, m.Products.List)
	products.GET("/:id", publicLimiter, m.Products.Get)

	adminProducts := rg.Group("/products")
	adminProducts.Use(adminGuard...)
	{
		adminProducts.POST("", m.Products.Create)
		adminProducts.PUT("/:id", m.Products.Update)
		adminProducts.DELETE("/:id", m.Products.Delete)
	}

	// Separate path: a static "image" segment under /products would collide
	// with the :id wildcard in Gin's routing tree.
	adminImages := rg.Group("/product-images")
	adminImages.Use(adminGuard...)
	adminImages.DELETE("/:imgId", m.Products.DeleteImage)

	categories := rg.Group("/categories")
	categories.GET("", publicLimiter, m.Categories.List)
	categories.GET("/:id", publicLimiter, m.Categories.Get)

	adminCategories := rg.Group("/categories")
	adminCategories.Use(adminGuard...)
	{
		adminCategories.POST("", m.Categories.Create)
		adminCategories.PUT("/:id", m.Categories.Update)
		adminCategories.DELETE("/:id", m.Categories.Delete)
	}
}
