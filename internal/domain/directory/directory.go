// Package directory defines how the inventory side looks up products.
// The catalog lives in a separate service; this interface hides the
// transport so domain services can be tested against an in-memory fake.
package directory

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Product is the catalog view the inventory service needs:
// identity and the unit price used to compute purchase totals.
type Product struct {
	ID        id.ID
	Name      string
	UnitPrice types.Money
}

// Directory resolves products from the remote catalog.
type Directory interface {
	// GetProduct fetches a product by ID. Returns
	// apperror.CodeProductUnavailable when the product does not exist
	// or the catalog cannot be reached.
	GetProduct(ctx context.Context, productID id.ID) (*Product, error)

	// Exists reports whether the product is known to the catalog.
	Exists(ctx context.Context, productID id.ID) (bool, error)
}
