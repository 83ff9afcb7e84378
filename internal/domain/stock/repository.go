package stock

import (
	"context"

	"stockroom/internal/core/id"
	"stockroom/internal/domain"
)

// Repository defines persistence operations for stock records.
//
// The quantity mutators are conditional single-row updates: the guard
// (sufficient quantity, maximum not exceeded, record active) is evaluated
// atomically with the write. When the guard fails they return (nil, nil)
// and the caller decides which business error applies.
type Repository interface {
	// Create persists a new stock record. Returns CodeConflict when the
	// product already has one.
	Create(ctx context.Context, r *Record) error

	// FindByProduct returns the active record for the product,
	// or (nil, nil) when absent.
	FindByProduct(ctx context.Context, productID id.ID) (*Record, error)

	// ExistsByProduct reports whether a record exists for the product,
	// active or not. Product ids stay unique across soft deletes.
	ExistsByProduct(ctx context.Context, productID id.ID) (bool, error)

	// IncrementQuantity atomically adds qty if the result stays within
	// the maximum. Returns the updated record, or (nil, nil) when the
	// record is absent, inactive, or the maximum would be exceeded.
	IncrementQuantity(ctx context.Context, productID id.ID, qty int) (*Record, error)

	// DecrementQuantity atomically subtracts qty if enough stock remains.
	// Returns the updated record, or (nil, nil) when the record is absent,
	// inactive, or the quantity would go negative.
	DecrementQuantity(ctx context.Context, productID id.ID, qty int) (*Record, error)

	// SetQuantity overwrites the quantity regardless of the maximum
	// (administrative correction). Returns (nil, nil) when the record is
	// absent or inactive.
	SetQuantity(ctx context.Context, productID id.ID, qty int) (*Record, error)

	// UpdateThresholds overwrites min/max settings. Returns (nil, nil)
	// when the record is absent or inactive.
	UpdateThresholds(ctx context.Context, productID id.ID, minQty int, maxQty *int) (*Record, error)

	// Deactivate soft-deletes the record. Reports whether a record
	// existed. Repeated calls succeed.
	Deactivate(ctx context.Context, productID id.ID) (bool, error)

	// ListActive returns a page of active records.
	ListActive(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Record], error)

	// FindLowStock returns active records at or below their minimum.
	FindLowStock(ctx context.Context) ([]Record, error)

	// Stats returns aggregates over active records.
	Stats(ctx context.Context) (*Stats, error)
}
