// Package productdir is the HTTP client for the products service,
// implementing the directory.Directory interface consumed by the
// inventory side.
package productdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/directory"
	"stockroom/pkg/logger"
)

var tracer = otel.Tracer("stockroom/productdir")

var _ directory.Directory = (*Client)(nil)

// Client talks to the products service over HTTP.
// Every failure mode (missing product, bad payload, unreachable service)
// surfaces as CodeProductUnavailable so the purchase workflow has one
// error to handle; the "reason" detail distinguishes the cases.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Config holds client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a products service client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// productResponse is the products service representation.
type productResponse struct {
	ID    id.ID  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

// GetProduct fetches a product by id from the catalog.
func (c *Client) GetProduct(ctx context.Context, productID id.ID) (*directory.Product, error) {
	ctx, span := tracer.Start(ctx, "productdir.GetProduct",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer span.End()

	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, productID)
	resp, err := c.do(ctx, url)
	if err != nil {
		logger.Warn(ctx, "products service unreachable", "product_id", productID, "error", err)
		return nil, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "unreachable").
			WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "not_found")
	case resp.StatusCode != http.StatusOK:
		logger.Warn(ctx, "products service returned unexpected status",
			"product_id", productID, "status", resp.StatusCode)
		return nil, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "unreachable").
			WithDetail("status", resp.StatusCode)
	}

	var body productResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "bad_payload").
			WithCause(err)
	}

	price, err := types.NewMoneyFromString(body.Price)
	if err != nil {
		return nil, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "bad_payload").
			WithCause(err)
	}

	return &directory.Product{
		ID:        body.ID,
		Name:      body.Name,
		UnitPrice: price,
	}, nil
}

// Exists reports whether the catalog knows the product.
func (c *Client) Exists(ctx context.Context, productID id.ID) (bool, error) {
	ctx, span := tracer.Start(ctx, "productdir.Exists",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer span.End()

	url := fmt.Sprintf("%s/api/v1/products/%s/exists", c.baseURL, productID)
	resp, err := c.do(ctx, url)
	if err != nil {
		return false, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "unreachable").
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "unreachable").
			WithDetail("status", resp.StatusCode)
	}

	var body struct {
		Exists bool `json:"exists"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, apperror.NewProductUnavailable(productID.String()).
			WithDetail("reason", "bad_payload").
			WithCause(err)
	}
	return body.Exists, nil
}

func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	return c.http.Do(req)
}
