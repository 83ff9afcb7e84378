// Package stock tracks per-product quantities for the inventory service.
// Each product has at most one stock record; quantities never go negative
// and never exceed the optional configured maximum.
package stock

import (
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
)

// Record is the stock ledger entry for one product.
type Record struct {
	ID        id.ID
	ProductID id.ID
	Quantity  int

	// MinQuantity marks the low-stock alert threshold.
	MinQuantity int

	// MaxQuantity caps increases when set; nil means unbounded.
	MaxQuantity *int

	// Active is a soft-delete flag. Inactive records are invisible
	// to all stock operations.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks record invariants before persisting.
func (r *Record) Validate() error {
	if id.IsNil(r.ProductID) {
		return apperror.NewValidation("product id is required")
	}
	if r.Quantity < 0 {
		return apperror.NewValidation("quantity must not be negative")
	}
	if r.MinQuantity < 0 {
		return apperror.NewValidation("minimum quantity must not be negative")
	}
	if r.MaxQuantity != nil {
		if *r.MaxQuantity <= 0 {
			return apperror.NewValidation("maximum quantity must be positive")
		}
		if r.Quantity > *r.MaxQuantity {
			return apperror.NewValidation("quantity must not exceed maximum quantity")
		}
	}
	return nil
}

// IsLow reports whether the quantity is at or below the alert threshold.
func (r *Record) IsLow() bool {
	return r.Quantity <= r.MinQuantity
}

// Stats is an aggregate view over active stock records.
type Stats struct {
	TotalRecords  int64
	TotalQuantity int64
	LowStockCount int64
}
