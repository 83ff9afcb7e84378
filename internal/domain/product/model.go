// Package product implements the catalog side: products with a name,
// a description and a decimal price.
package product

import (
	"strings"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
)

// Product is a catalog entry.
type Product struct {
	ID          id.ID
	Name        string
	Description *string
	Price       types.Money
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business invariants before persisting.
func (p *Product) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return apperror.NewValidation("product name is required")
	}
	if len(name) > 255 {
		return apperror.NewValidation("product name must not exceed 255 characters")
	}
	if !p.Price.IsPositive() {
		return apperror.NewValidation("product price must be positive")
	}
	return nil
}

// Stats is an aggregate view over the whole catalog.
type Stats struct {
	TotalProducts int64
	AveragePrice  types.Money
}
