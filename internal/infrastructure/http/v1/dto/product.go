package dto

import (
	"time"

	"stockroom/internal/core/types"
	"stockroom/internal/domain/product"
)

// CreateProductRequest for creating products.
type CreateProductRequest struct {
	Name        string      `json:"name" binding:"required,max=255"`
	Description *string     `json:"description"`
	Price       types.Money `json:"price" binding:"required"`
}

// UpdateProductRequest for updating products. Nil fields stay unchanged.
type UpdateProductRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Price       *types.Money `json:"price"`
}

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Price       types.Money `json:"price"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// FromProduct converts a domain product.
func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ExistsResponse for the existence probe endpoint.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}

// ProductStatsResponse for catalog aggregates.
type ProductStatsResponse struct {
	TotalProducts int64       `json:"totalProducts"`
	AveragePrice  types.Money `json:"averagePrice"`
}
