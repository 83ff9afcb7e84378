// Package v1 provides HTTP API version 1 for both services.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/http/v1/handlers"
	"stockroom/internal/infrastructure/http/v1/middleware"
)

// ProductsRouterConfig holds wiring for the products service router.
type ProductsRouterConfig struct {
	Pool           *pgxpool.Pool
	ProductService *product.Service

	// APIKeys authorized to call the API. Empty disables the check.
	APIKeys []string

	Development bool
}

// NewProductsRouter configures the gin router for the products service.
func NewProductsRouter(cfg ProductsRouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Order matters: recovery first, error rendering last-registered
	// so it observes everything.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, "products")
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	productHandler := handlers.NewProductHandler(cfg.ProductService)

	api := router.Group("/api/v1", middleware.APIKey(cfg.APIKeys))
	{
		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/stats", productHandler.Stats)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.GET("/:id/exists", productHandler.Exists)
		}
	}

	return router
}
