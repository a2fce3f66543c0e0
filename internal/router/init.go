package router

import (
	"github.com/ppfood/api/internal/application"
	"github.com/ppfood/api/internal/container"
	pginfra "github.com/ppfood/api/internal/infrastructure/postgres"
	"github.com/ppfood/api/internal/infrastructure/search"
	handlers "github.com/ppfood/api/internal/interface/http"
	"github.com/ppfood/api/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(pool)
	tokenRepo := pginfra.NewTokenRepository(pool)
	cartRepo := pginfra.NewCartRepository(pool)
	productRepo := pginfra.NewProductRepository(pool)
	categoryRepo := pginfra.NewCategoryRepository(pool)

	// A nil *RabbitPublisher must not end up inside the interface, or the
	// nil check in the service would pass it.
	var mail application.Publisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	authSvc := &application.AuthService{
		Users:       userRepo,
		Tokens:      tokenRepo,
		JWT:         container.GetJWT(),
		Mail:        mail,
		Logger:      logger,
		GCS:         container.GetGCS(),
		GCSBucket:   cfg.GCSBucket,
		DefaultRole: cfg.DefaultUserRole,
		VerifyTTL:   cfg.VerifyOTPTTL,
		ResetTTL:    cfg.ResetCodeTTL,
		FrontendURL: cfg.FrontendURL,
	}

	productSvc := &application.ProductService{
		Products:   productRepo,
		Categories: categoryRepo,
		Index:      search.NewProductIndex(container.GetES(), cfg.ESProductsIndex, logger),
		GCS:        container.GetGCS(),
		GCSBucket:  cfg.GCSBucket,
		Logger:     logger,
	}

	categorySvc := &application.CategoryService{
		Categories: categoryRepo,
		Redis:      container.GetRedis(),
		Logger:     logger,
	}

	cartSvc := &application.CartService{
		Carts:    cartRepo,
		Products: productRepo,
		Logger:   logger,
	}

	r.Add(modules.NewAuth(handlers.NewAuthHandler(authSvc, logger, container.GetCookies())))
	r.Add(modules.NewCatalog(
		handlers.NewProductHandler(productSvc, logger),
		handlers.NewCategoryHandler(categorySvc, logger),
	))
	r.Add(modules.NewCart(handlers.NewCartHandler(cartSvc, logger)))
}
