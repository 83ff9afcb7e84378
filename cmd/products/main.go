// Package main is the entry point for the products service.
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
	"stockroom/internal/domain/product"
	v1 "stockroom/internal/infrastructure/http/v1"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/productrepo"
	"stockroom/pkg/logger"
)

func main() {
	cfg, err := config.LoadProducts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
		ServiceName: "products",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	logger.Info(ctx, "starting products service")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL, "products"))
	if err != nil {
		logger.Fatal(ctx, "database connection failed", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	productService := product.NewService(productrepo.New(txManager))

	router := v1.NewProductsRouter(v1.ProductsRouterConfig{
		Pool:           pool.Pool,
		ProductService: productService,
		APIKeys:        cfg.APIKeys,
		Development:    cfg.Development,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Port)
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
