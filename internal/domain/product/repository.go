package product

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines persistence operations for products.
type Repository interface {
	// Create persists a new product. Returns CodeConflict when a product
	// with the same name already exists.
	Create(ctx context.Context, p *Product) error

	// GetByID returns a product or CodeNotFound.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// FindByName returns the product with the exact name, or nil when absent.
	FindByName(ctx context.Context, name string) (*Product, error)

	// List returns a page of products ordered by creation time.
	List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Product], error)

	// SearchByName returns products whose name contains the query,
	// case-insensitive.
	SearchByName(ctx context.Context, query string, filter domain.ListFilter) (*domain.ListResult[Product], error)

	// Update persists changes to an existing product. Returns CodeNotFound
	// when the product does not exist.
	Update(ctx context.Context, p *Product) error

	// Delete removes a product. Returns CodeNotFound when absent.
	Delete(ctx context.Context, productID id.ID) error

	// Exists reports whether the product exists.
	Exists(ctx context.Context, productID id.ID) (bool, error)

	// Stats returns aggregate catalog statistics.
	Stats(ctx context.Context) (*Stats, error)
}
