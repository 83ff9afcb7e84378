package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockroom/internal/domain/purchase"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/http/v1/handlers"
	"stockroom/internal/infrastructure/http/v1/middleware"
)

// InventoryRouterConfig holds wiring for the inventory service router.
type InventoryRouterConfig struct {
	Pool            *pgxpool.Pool
	StockService    *stock.Service
	PurchaseService *purchase.Service

	APIKeys []string

	Development bool
}

// NewInventoryRouter configures the gin router for the inventory service.
func NewInventoryRouter(cfg InventoryRouterConfig) *gin.Engine {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, "inventory")
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	stockHandler := handlers.NewStockHandler(cfg.StockService)
	purchaseHandler := handlers.NewPurchaseHandler(cfg.PurchaseService)

	api := router.Group("/api/v1", middleware.APIKey(cfg.APIKeys))
	{
		stockGroup := api.Group("/stock")
		{
			stockGroup.POST("", stockHandler.Create)
			stockGroup.GET("", stockHandler.List)
			stockGroup.GET("/low", stockHandler.LowStock)
			stockGroup.GET("/stats", stockHandler.Stats)
			stockGroup.GET("/:productId", stockHandler.Get)
			stockGroup.DELETE("/:productId", stockHandler.Deactivate)
			stockGroup.GET("/:productId/availability", stockHandler.Availability)
			stockGroup.POST("/:productId/increase", stockHandler.Increase)
			stockGroup.POST("/:productId/decrease", stockHandler.Decrease)
			stockGroup.PUT("/:productId/quantity", stockHandler.SetQuantity)
			stockGroup.PUT("/:productId/thresholds", stockHandler.UpdateThresholds)
		}

		purchases := api.Group("/purchases")
		{
			purchases.POST("", purchaseHandler.Process)
			purchases.GET("", purchaseHandler.List)
			purchases.GET("/can-process", purchaseHandler.CanProcess)
			purchases.GET("/recent", purchaseHandler.Recent)
			purchases.GET("/stats", purchaseHandler.Stats)
			purchases.GET("/sales/:productId", purchaseHandler.SalesByProduct)
			purchases.GET("/:id", purchaseHandler.Get)
			purchases.POST("/:id/cancel", purchaseHandler.Cancel)
		}
	}

	return router
}
