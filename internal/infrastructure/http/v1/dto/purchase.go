package dto

import (
	"time"

	"stockroom/internal/core/types"
	"stockroom/internal/domain/purchase"
)

// ProcessPurchaseRequest records a purchase.
type ProcessPurchaseRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// PurchaseResponse is the API representation of a purchase.
type PurchaseResponse struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"productId"`
	Quantity    int         `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	TotalPrice  types.Money `json:"totalPrice"`
	Status      string      `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	PurchasedAt time.Time   `json:"purchasedAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// FromPurchase converts a domain purchase.
func FromPurchase(p *purchase.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID.String(),
		ProductID:   p.ProductID.String(),
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalPrice:  p.TotalPrice,
		Status:      string(p.Status),
		Notes:       p.Notes,
		PurchasedAt: p.PurchasedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PurchaseListRequest filters purchase listings.
type PurchaseListRequest struct {
	PaginationRequest
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	Status    string `form:"status"`
}

// CanProcessResponse for the feasibility probe endpoint.
type CanProcessResponse struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	CanProcess bool   `json:"canProcess"`
}

// PurchaseStatsResponse for ledger aggregates.
type PurchaseStatsResponse struct {
	TotalPurchases int64       `json:"totalPurchases"`
	Completed      int64       `json:"completed"`
	Cancelled      int64       `json:"cancelled"`
	TotalSales     types.Money `json:"totalSales"`
}

// ProductSalesResponse for per-product sales totals.
type ProductSalesResponse struct {
	ProductID  string      `json:"productId"`
	TotalSales types.Money `json:"totalSales"`
}
