package productdir_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/infrastructure/productdir"
)

func newClient(baseURL string) *productdir.Client {
	return productdir.NewClient(productdir.Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: time.Second,
	})
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	productID := id.New()

	t.Run("returns product with decimal price", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
			assert.Equal(t, "/api/v1/products/"+productID.String(), r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + productID.String() + `","name":"widget","price":"9.99"}`))
		}))
		defer srv.Close()

		p, err := newClient(srv.URL).GetProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, productID, p.ID)
		assert.Equal(t, "widget", p.Name)
		assert.True(t, p.UnitPrice.Equal(types.MustMoney("9.99")))
	})

	t.Run("404 maps to product unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).GetProduct(ctx, productID)
		require.Error(t, err)
		require.True(t, apperror.IsProductUnavailable(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "not_found", appErr.Details["reason"])
	})

	t.Run("5xx maps to product unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).GetProduct(ctx, productID)
		require.Error(t, err)
		require.True(t, apperror.IsProductUnavailable(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "unreachable", appErr.Details["reason"])
	})

	t.Run("dead endpoint maps to product unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		_, err := newClient(srv.URL).GetProduct(ctx, productID)
		require.Error(t, err)
		require.True(t, apperror.IsProductUnavailable(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "unreachable", appErr.Details["reason"])
	})

	t.Run("garbage payload maps to product unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"price":`))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).GetProduct(ctx, productID)
		require.Error(t, err)
		require.True(t, apperror.IsProductUnavailable(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, "bad_payload", appErr.Details["reason"])
	})
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	productID := id.New()

	t.Run("parses the exists flag", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/products/"+productID.String()+"/exists", r.URL.Path)
			_, _ = w.Write([]byte(`{"exists":true}`))
		}))
		defer srv.Close()

		exists, err := newClient(srv.URL).Exists(ctx, productID)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("unreachable service is an error, not false", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		_, err := newClient(srv.URL).Exists(ctx, productID)
		require.Error(t, err)
		assert.True(t, apperror.IsProductUnavailable(err))
	})
}
