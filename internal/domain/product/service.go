package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/pkg/logger"
)

// Service implements catalog use cases on top of Repository.
type Service struct {
	repo Repository
}

// NewService creates a product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields needed to create a product.
type CreateInput struct {
	Name        string
	Description *string
	Price       types.Money
}

// Create adds a new product to the catalog.
// Names are unique; a duplicate yields CodeConflict.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:          id.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByName(ctx, p.Name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.NewConflict(fmt.Sprintf("product with name %q already exists", p.Name))
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// GetByID returns a product or CodeNotFound.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// List returns a page of the catalog.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Product], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// SearchByName returns products matching the query, case-insensitive.
// An empty query behaves like List.
func (s *Service) SearchByName(ctx context.Context, query string, filter domain.ListFilter) (*domain.ListResult[Product], error) {
	filter.Normalize()
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx, filter)
	}
	return s.repo.SearchByName(ctx, query, filter)
}

// UpdateInput carries the mutable product fields. Nil pointers mean
// "leave unchanged".
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *types.Money
}

// Update modifies an existing product.
func (s *Service) Update(ctx context.Context, productID id.ID, in UpdateInput) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		newName := strings.TrimSpace(*in.Name)
		if newName != p.Name {
			if existing, err := s.repo.FindByName(ctx, newName); err != nil {
				return nil, err
			} else if existing != nil {
				return nil, apperror.NewConflict(fmt.Sprintf("product with name %q already exists", newName))
			}
			p.Name = newName
		}
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	p.UpdatedAt = time.Now().UTC()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product updated", "product_id", p.ID)
	return p, nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "product_id", productID)
	return nil
}

// Exists reports whether the product exists. Used by the HTTP
// existence endpoint the inventory service polls.
func (s *Service) Exists(ctx context.Context, productID id.ID) (bool, error) {
	return s.repo.Exists(ctx, productID)
}

// Stats returns catalog aggregates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
