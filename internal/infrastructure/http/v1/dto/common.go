// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"stockroom/internal/domain"
)

// PaginationRequest contains pagination query parameters.
type PaginationRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts pagination to a domain list filter.
func (p *PaginationRequest) ToFilter() domain.ListFilter {
	return domain.ListFilter{Limit: p.Limit, Offset: p.Offset}
}

// ListResponse wraps list results with pagination metadata.
type ListResponse struct {
	Items  any   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse documents the error body shape produced by the error
// handler middleware.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
