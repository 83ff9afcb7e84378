package purchase

import (
	"context"
	"time"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/tx"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/directory"
	"stockroom/internal/domain/stock"
	"stockroom/pkg/logger"
)

// StockLedger is the slice of the stock service the workflow needs.
type StockLedger interface {
	GetByProduct(ctx context.Context, productID id.ID) (*stock.Record, error)
	HasSufficientStock(ctx context.Context, productID id.ID, qty int) (bool, error)
	Increase(ctx context.Context, productID id.ID, qty int) (*stock.Record, error)
	Decrease(ctx context.Context, productID id.ID, qty int) (*stock.Record, error)
}

// Service implements the purchase workflow and ledger queries.
type Service struct {
	repo      Repository
	stock     StockLedger
	directory directory.Directory
	txManager tx.Manager
}

// NewService creates a purchase service.
func NewService(repo Repository, ledger StockLedger, dir directory.Directory, txManager tx.Manager) *Service {
	return &Service{repo: repo, stock: ledger, directory: dir, txManager: txManager}
}

// Process records a purchase of qty units of a product.
//
// The product and its current price come from the catalog; the price is
// snapshotted into the ledger entry. Stock check, ledger insert and stock
// decrement run in one transaction, so a failed decrement leaves no
// orphaned purchase behind.
func (s *Service) Process(ctx context.Context, productID id.ID, qty int) (*Purchase, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity must be positive")
	}

	// Catalog lookup happens outside the transaction: a slow or dead
	// catalog must not hold database locks.
	product, err := s.directory.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Purchase{
		ID:          id.New(),
		ProductID:   productID,
		Quantity:    qty,
		UnitPrice:   product.UnitPrice,
		TotalPrice:  ComputeTotal(product.UnitPrice, qty),
		Status:      StatusCompleted,
		Notes:       noteProcessed,
		PurchasedAt: now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.stock.HasSufficientStock(ctx, productID, qty)
		if err != nil {
			return err
		}
		if !ok {
			available := 0
			if rec, err := s.stock.GetByProduct(ctx, productID); err == nil && rec != nil {
				available = rec.Quantity
			}
			return apperror.NewInsufficientStock(productID.String(), qty, available)
		}

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		// Conditional decrement re-checks quantity atomically; concurrent
		// purchases racing past the advisory check fail here and roll back.
		if _, err := s.stock.Decrease(ctx, productID, qty); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase processed",
		"purchase_id", p.ID, "product_id", productID,
		"quantity", qty, "total_price", p.TotalPrice)
	return p, nil
}

// Cancel reverses a purchase: restores the decremented stock, then marks
// the purchase CANCELLED. Both steps share a transaction.
func (s *Service) Cancel(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	var cancelled *Purchase

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if p.Status == StatusCancelled {
			return apperror.NewAlreadyCancelled(purchaseID.String())
		}

		// Only completed purchases actually consumed stock.
		if p.Status == StatusCompleted {
			if _, err := s.stock.Increase(ctx, p.ProductID, p.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateStatus(ctx, purchaseID, StatusCancelled, noteCancelled); err != nil {
			return err
		}

		p.Status = StatusCancelled
		p.Notes = noteCancelled
		p.UpdatedAt = time.Now().UTC()
		cancelled = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase cancelled",
		"purchase_id", purchaseID, "product_id", cancelled.ProductID,
		"quantity", cancelled.Quantity)
	return cancelled, nil
}

// CanProcess reports whether a purchase of qty units would currently
// succeed. It is advisory only: any failure along the way, including an
// unreachable catalog, reads as "no" rather than an error.
func (s *Service) CanProcess(ctx context.Context, productID id.ID, qty int) bool {
	if qty <= 0 {
		return false
	}
	if _, err := s.directory.GetProduct(ctx, productID); err != nil {
		logger.Debug(ctx, "purchase feasibility check failed on catalog lookup",
			"product_id", productID, "error", err)
		return false
	}
	ok, err := s.stock.HasSufficientStock(ctx, productID, qty)
	if err != nil {
		logger.Debug(ctx, "purchase feasibility check failed on stock lookup",
			"product_id", productID, "error", err)
		return false
	}
	return ok
}

// GetByID returns a purchase or CodeNotFound.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// List returns a page of purchases, optionally filtered by product and
// status, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (*domain.ListResult[Purchase], error) {
	filter.Normalize()
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperror.NewValidation("invalid purchase status filter")
	}
	return s.repo.List(ctx, filter)
}

// Recent returns the latest purchases up to limit.
func (s *Service) Recent(ctx context.Context, limit int) ([]Purchase, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.Recent(ctx, limit)
}

// Stats returns ledger aggregates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// TotalSalesByProduct sums completed purchase totals for one product.
func (s *Service) TotalSalesByProduct(ctx context.Context, productID id.ID) (types.Money, error) {
	return s.repo.TotalSalesByProduct(ctx, productID)
}
