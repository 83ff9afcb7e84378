package dto

import (
	"time"

	"stockroom/internal/domain/stock"
)

// CreateStockRequest opens a stock record for a product.
type CreateStockRequest struct {
	ProductID   string `json:"productId" binding:"required,uuid"`
	Quantity    int    `json:"quantity" binding:"omitempty,min=0"`
	MinQuantity int    `json:"minQuantity" binding:"omitempty,min=0"`
	MaxQuantity *int   `json:"maxQuantity"`
}

// AdjustStockRequest for increase/decrease operations. Zero and negative
// quantities bind fine; the services decide what to do with them
// (increase treats qty <= 0 as a no-op, decrease rejects it).
type AdjustStockRequest struct {
	Quantity int `json:"quantity"`
}

// SetStockQuantityRequest overwrites the quantity.
type SetStockQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// UpdateThresholdsRequest changes min/max settings.
type UpdateThresholdsRequest struct {
	MinQuantity int  `json:"minQuantity" binding:"min=0"`
	MaxQuantity *int `json:"maxQuantity"`
}

// StockResponse is the API representation of a stock record.
type StockResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"minQuantity"`
	MaxQuantity *int      `json:"maxQuantity,omitempty"`
	Active      bool      `json:"active"`
	Low         bool      `json:"low"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromStockRecord converts a domain stock record.
func FromStockRecord(r *stock.Record) StockResponse {
	return StockResponse{
		ID:          r.ID.String(),
		ProductID:   r.ProductID.String(),
		Quantity:    r.Quantity,
		MinQuantity: r.MinQuantity,
		MaxQuantity: r.MaxQuantity,
		Active:      r.Active,
		Low:         r.IsLow(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// AvailabilityResponse for the sufficiency probe endpoint.
type AvailabilityResponse struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Available bool   `json:"available"`
}

// StockStatsResponse for inventory aggregates.
type StockStatsResponse struct {
	TotalRecords  int64 `json:"totalRecords"`
	TotalQuantity int64 `json:"totalQuantity"`
	LowStockCount int64 `json:"lowStockCount"`
}
