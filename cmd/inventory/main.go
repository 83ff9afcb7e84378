// Package main is the entry point for the inventory service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/domain/purchase"
	"stockroom/internal/domain/stock"
	v1 "stockroom/internal/infrastructure/http/v1"
	"stockroom/internal/infrastructure/productdir"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/purchaserepo"
	"stockroom/internal/infrastructure/storage/postgres/stockrepo"
	"stockroom/pkg/logger"
)

func main() {
	cfg, err := config.LoadInventory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
		ServiceName: "inventory",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "starting inventory service")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL, "inventory"))
	if err != nil {
		logger.Fatal(ctx, "database connection failed", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	catalog := productdir.NewClient(productdir.Config{
		BaseURL: cfg.ProductsURL,
		APIKey:  cfg.ProductsAPIKey,
		Timeout: cfg.ProductsTimeout,
	})

	stockService := stock.NewService(stockrepo.New(txManager), catalog, txManager)
	purchaseService := purchase.NewService(purchaserepo.New(txManager), stockService, catalog, txManager)

	router := v1.NewInventoryRouter(v1.InventoryRouterConfig{
		Pool:            pool.Pool,
		StockService:    stockService,
		PurchaseService: purchaseService,
		APIKeys:         cfg.APIKeys,
		Development:     cfg.Development,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Port, "products_url", cfg.ProductsURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(ctx, "server forced to shutdown", "error", err)
	}

	logger.Info(ctx, "server stopped")
}
