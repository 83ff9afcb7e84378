package purchase

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
)

// ListFilter narrows purchase listings. Zero values mean "no filter".
type ListFilter struct {
	domain.ListFilter
	ProductID *id.ID
	Status    *Status
}

// Repository defines persistence operations for the purchase ledger.
type Repository interface {
	// Create persists a new purchase.
	Create(ctx context.Context, p *Purchase) error

	// GetByID returns a purchase or CodeNotFound.
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	// UpdateStatus sets status and notes. Returns CodeNotFound when the
	// purchase does not exist.
	UpdateStatus(ctx context.Context, purchaseID id.ID, status Status, notes string) error

	// List returns a page of purchases, newest first.
	List(ctx context.Context, filter ListFilter) (*domain.ListResult[Purchase], error)

	// Recent returns the latest purchases up to limit.
	Recent(ctx context.Context, limit int) ([]Purchase, error)

	// Stats returns ledger aggregates. Cancelled purchases do not count
	// towards total sales.
	Stats(ctx context.Context) (*Stats, error)

	// TotalSalesByProduct sums completed purchase totals for a product.
	TotalSalesByProduct(ctx context.Context, productID id.ID) (types.Money, error)
}
