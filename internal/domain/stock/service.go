package stock

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/domain"
	"stockroom/internal/domain/directory"
	"stockroom/pkg/logger"
)

// Service implements stock use cases on top of Repository.
type Service struct {
	repo      Repository
	directory directory.Directory
	txManager tx.Manager
}

// NewService creates a stock service.
func NewService(repo Repository, dir directory.Directory, txManager tx.Manager) *Service {
	return &Service{repo: repo, directory: dir, txManager: txManager}
}

// CreateInput carries the fields needed to open a stock record.
type CreateInput struct {
	ProductID   id.ID
	Quantity    int
	MinQuantity int
	MaxQuantity *int
}

// Create opens a stock record for a product. The product must exist in
// the catalog, and at most one record per product is allowed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	now := time.Now().UTC()
	r := &Record{
		ID:          id.New(),
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		MinQuantity: in.MinQuantity,
		MaxQuantity: in.MaxQuantity,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.directory.Exists(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NewNotFound("product", in.ProductID)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if has, err := s.repo.ExistsByProduct(ctx, in.ProductID); err != nil {
			return err
		} else if has {
			return apperror.NewConflict("product already has a stock record")
		}
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock record created",
		"product_id", r.ProductID, "quantity", r.Quantity)
	return r, nil
}

// GetByProduct returns the active stock record, or (nil, nil) when the
// product has none. Absence is an ordinary answer here, not an error.
func (s *Service) GetByProduct(ctx context.Context, productID id.ID) (*Record, error) {
	return s.repo.FindByProduct(ctx, productID)
}

// HasSufficientStock reports whether the product has at least qty units.
// A missing or inactive record counts as insufficient; qty zero is
// satisfied by any existing record.
func (s *Service) HasSufficientStock(ctx context.Context, productID id.ID, qty int) (bool, error) {
	if qty < 0 {
		return false, nil
	}
	r, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}
	return r.Quantity >= qty, nil
}

// Increase adds qty units. Zero or negative qty is a no-op returning
// the current record. Fails with CodeExceedsMaximum when the result
// would pass the configured ceiling.
func (s *Service) Increase(ctx context.Context, productID id.ID, qty int) (*Record, error) {
	if qty <= 0 {
		// Non-positive increase is a no-op on the current record.
		r, err := s.repo.FindByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return nil, apperror.NewNotFound("stock record", productID)
		}
		return r, nil
	}

	r, err := s.repo.IncrementQuantity(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if r == nil {
		// Guard failed: distinguish missing record from ceiling breach.
		current, err := s.repo.FindByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperror.NewNotFound("stock record", productID)
		}
		maximum := 0
		if current.MaxQuantity != nil {
			maximum = *current.MaxQuantity
		}
		return nil, apperror.NewExceedsMaximum(productID.String(), qty, maximum)
	}

	logger.Info(ctx, "stock increased",
		"product_id", productID, "quantity", qty, "new_quantity", r.Quantity)
	return r, nil
}

// Decrease removes qty units. Fails with CodeInsufficientStock when
// fewer than qty units remain.
func (s *Service) Decrease(ctx context.Context, productID id.ID, qty int) (*Record, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity to decrease must be positive")
	}

	r, err := s.repo.DecrementQuantity(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if r == nil {
		current, err := s.repo.FindByProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperror.NewNotFound("stock record", productID)
		}
		return nil, apperror.NewInsufficientStock(productID.String(), qty, current.Quantity)
	}

	logger.Info(ctx, "stock decreased",
		"product_id", productID, "quantity", qty, "new_quantity", r.Quantity)
	if r.IsLow() {
		logger.Warn(ctx, "stock below minimum threshold",
			"product_id", productID, "quantity", r.Quantity, "min_quantity", r.MinQuantity)
	}
	return r, nil
}

// SetQuantity overwrites the quantity after a physical count. It is an
// administrative correction and bypasses the maximum ceiling.
func (s *Service) SetQuantity(ctx context.Context, productID id.ID, qty int) (*Record, error) {
	if qty < 0 {
		return nil, apperror.NewValidation("quantity must not be negative")
	}

	r, err := s.repo.SetQuantity(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NewNotFound("stock record", productID)
	}

	logger.Info(ctx, "stock quantity set", "product_id", productID, "quantity", qty)
	return r, nil
}

// UpdateThresholds changes the min/max settings of a record.
func (s *Service) UpdateThresholds(ctx context.Context, productID id.ID, minQty int, maxQty *int) (*Record, error) {
	if minQty < 0 {
		return nil, apperror.NewValidation("minimum quantity must not be negative")
	}
	if maxQty != nil && *maxQty <= 0 {
		return nil, apperror.NewValidation("maximum quantity must be positive")
	}

	r, err := s.repo.UpdateThresholds(ctx, productID, minQty, maxQty)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperror.NewNotFound("stock record", productID)
	}
	return r, nil
}

// Deactivate soft-deletes the stock record. A record that was never
// created is CodeNotFound; deactivating an already inactive record
// succeeds again.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	existed, err := s.repo.Deactivate(ctx, productID)
	if err != nil {
		return err
	}
	if !existed {
		return apperror.NewNotFound("stock record", productID)
	}
	logger.Info(ctx, "stock record deactivated", "product_id", productID)
	return nil
}

// ListActive returns a page of active stock records.
func (s *Service) ListActive(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[Record], error) {
	filter.Normalize()
	return s.repo.ListActive(ctx, filter)
}

// FindLowStock returns active records at or below their minimum.
func (s *Service) FindLowStock(ctx context.Context) ([]Record, error) {
	return s.repo.FindLowStock(ctx)
}

// Stats returns aggregates over active records.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
