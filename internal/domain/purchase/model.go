// Package purchase implements the purchase ledger and the purchase
// workflow that coordinates the catalog and the stock ledger.
package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Status is the lifecycle state of a purchase.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"

	// StatusReturned is declared for forward compatibility;
	// no transition produces it yet.
	StatusReturned Status = "RETURNED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// Fixed audit notes written by the workflow.
const (
	noteProcessed = "purchase processed successfully"
	noteCancelled = "purchase cancelled"
)

// Purchase is one ledger entry. UnitPrice is the catalog price snapshot
// at purchase time; TotalPrice is derived from it via ComputeTotal.
type Purchase struct {
	ID          id.ID
	ProductID   id.ID
	Quantity    int
	UnitPrice   types.Money
	TotalPrice  types.Money
	Status      Status
	Notes       string
	PurchasedAt time.Time
	UpdatedAt   time.Time
}

// ComputeTotal derives the total price from a unit price snapshot.
// Kept as an explicit function so the derivation has exactly one home.
func ComputeTotal(unitPrice types.Money, quantity int) types.Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Validate checks ledger invariants before persisting.
func (p *Purchase) Validate() error {
	if id.IsNil(p.ProductID) {
		return apperror.NewValidation("product id is required")
	}
	if p.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price must not be negative")
	}
	if !p.Status.Valid() {
		return apperror.NewValidation("invalid purchase status")
	}
	return nil
}

// Stats is an aggregate view over the purchase ledger.
type Stats struct {
	TotalPurchases int64
	Completed      int64
	Cancelled      int64
	TotalSales     types.Money
}
