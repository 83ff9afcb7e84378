// Package config loads service configuration from environment variables.
// A local .env file is loaded when present (development convenience);
// real deployments set variables through the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Products holds configuration for the products service.
type Products struct {
	Port        string
	DatabaseURL string
	LogLevel    string
	Development bool

	// APIKeys authorized to call the service. Comma-separated in env.
	APIKeys []string
}

// Inventory holds configuration for the inventory service.
type Inventory struct {
	Port        string
	DatabaseURL string
	LogLevel    string
	Development bool

	APIKeys []string

	// Products service client settings
	ProductsURL     string
	ProductsAPIKey  string
	ProductsTimeout time.Duration
}

// LoadProducts reads products service configuration from the environment.
func LoadProducts() (*Products, error) {
	_ = godotenv.Load()

	dbURL, err := mustEnv("PRODUCTS_DATABASE_URL")
	if err != nil {
		return nil, err
	}

	return &Products{
		Port:        getEnv("PRODUCTS_PORT", "8080"),
		DatabaseURL: dbURL,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Development: getEnvBool("DEVELOPMENT", false),
		APIKeys:     splitList(getEnv("PRODUCTS_API_KEYS", "")),
	}, nil
}

// LoadInventory reads inventory service configuration from the environment.
func LoadInventory() (*Inventory, error) {
	_ = godotenv.Load()

	dbURL, err := mustEnv("INVENTORY_DATABASE_URL")
	if err != nil {
		return nil, err
	}
	productsURL, err := mustEnv("PRODUCTS_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	return &Inventory{
		Port:            getEnv("INVENTORY_PORT", "8081"),
		DatabaseURL:     dbURL,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Development:     getEnvBool("DEVELOPMENT", false),
		APIKeys:         splitList(getEnv("INVENTORY_API_KEYS", "")),
		ProductsURL:     productsURL,
		ProductsAPIKey:  getEnv("PRODUCTS_SERVICE_API_KEY", ""),
		ProductsTimeout: getEnvDuration("PRODUCTS_SERVICE_TIMEOUT", 5*time.Second),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
