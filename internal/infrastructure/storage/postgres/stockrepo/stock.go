// Package stockrepo provides the PostgreSQL implementation of the stock
// repository. Quantity mutators are single-statement conditional UPDATEs:
// the row-level lock of the UPDATE serializes concurrent mutations and the
// WHERE clause enforces the quantity bounds atomically.
package stockrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/stock"
	"stockroom/internal/infrastructure/storage/postgres"
)

const stockTable = "stock_records"

var stockCols = []string{
	"id", "product_id", "quantity", "min_quantity", "max_quantity",
	"active", "created_at", "updated_at",
}

// stockRow mirrors the stock_records table.
type stockRow struct {
	ID          id.ID     `db:"id"`
	ProductID   id.ID     `db:"product_id"`
	Quantity    int       `db:"quantity"`
	MinQuantity int       `db:"min_quantity"`
	MaxQuantity *int      `db:"max_quantity"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *stockRow) toDomain() *stock.Record {
	return &stock.Record{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		MinQuantity: r.MinQuantity,
		MaxQuantity: r.MaxQuantity,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Repo implements stock.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ stock.Repository = (*Repo)(nil)

// New creates a stock repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(stockCols...).From(stockTable)
}

// Create inserts a new stock record. A unique violation on product_id
// maps to CodeConflict.
func (r *Repo) Create(ctx context.Context, rec *stock.Record) error {
	q := r.builder.Insert(stockTable).SetMap(map[string]any{
		"id":           rec.ID,
		"product_id":   rec.ProductID,
		"quantity":     rec.Quantity,
		"min_quantity": rec.MinQuantity,
		"max_quantity": rec.MaxQuantity,
		"active":       rec.Active,
		"created_at":   rec.CreatedAt,
		"updated_at":   rec.UpdatedAt,
	})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("product already has a stock record").
				WithDetail("product_id", rec.ProductID.String()).
				WithCause(err)
		}
		return fmt.Errorf("insert stock record: %w", err)
	}
	return nil
}

// FindByProduct returns the active record for the product, nil when absent.
func (r *Repo) FindByProduct(ctx context.Context, productID id.ID) (*stock.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"product_id": productID, "active": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row stockRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find stock record: %w", err)
	}
	return row.toDomain(), nil
}

// ExistsByProduct reports whether any record exists, active or not.
func (r *Repo) ExistsByProduct(ctx context.Context, productID id.ID) (bool, error) {
	q := r.builder.Select("1").From(stockTable).
		Where(squirrel.Eq{"product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stock record exists: %w", err)
	}
	return true, nil
}

const incrementSQL = `
UPDATE stock_records
SET quantity = quantity + $2, updated_at = now()
WHERE product_id = $1
  AND active
  AND (max_quantity IS NULL OR quantity + $2 <= max_quantity)
RETURNING id, product_id, quantity, min_quantity, max_quantity, active, created_at, updated_at`

// IncrementQuantity atomically adds qty within the maximum.
func (r *Repo) IncrementQuantity(ctx context.Context, productID id.ID, qty int) (*stock.Record, error) {
	return r.conditionalUpdate(ctx, incrementSQL, productID, qty)
}

const decrementSQL = `
UPDATE stock_records
SET quantity = quantity - $2, updated_at = now()
WHERE product_id = $1
  AND active
  AND quantity >= $2
RETURNING id, product_id, quantity, min_quantity, max_quantity, active, created_at, updated_at`

// DecrementQuantity atomically subtracts qty while keeping quantity >= 0.
func (r *Repo) DecrementQuantity(ctx context.Context, productID id.ID, qty int) (*stock.Record, error) {
	return r.conditionalUpdate(ctx, decrementSQL, productID, qty)
}

const setQuantitySQL = `
UPDATE stock_records
SET quantity = $2, updated_at = now()
WHERE product_id = $1
  AND active
RETURNING id, product_id, quantity, min_quantity, max_quantity, active, created_at, updated_at`

// SetQuantity overwrites the quantity of an active record.
func (r *Repo) SetQuantity(ctx context.Context, productID id.ID, qty int) (*stock.Record, error) {
	return r.conditionalUpdate(ctx, setQuantitySQL, productID, qty)
}

func (r *Repo) conditionalUpdate(ctx context.Context, sql string, productID id.ID, qty int) (*stock.Record, error) {
	var row stockRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, productID, qty); err != nil {
		if pgxscan.NotFound(err) {
			// Guard failed or record absent; caller decides which.
			return nil, nil
		}
		return nil, fmt.Errorf("update stock quantity: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateThresholds overwrites min/max settings of an active record.
func (r *Repo) UpdateThresholds(ctx context.Context, productID id.ID, minQty int, maxQty *int) (*stock.Record, error) {
	q := r.builder.Update(stockTable).
		SetMap(map[string]any{
			"min_quantity": minQty,
			"max_quantity": maxQty,
			"updated_at":   time.Now().UTC(),
		}).
		Where(squirrel.Eq{"product_id": productID, "active": true}).
		Suffix("RETURNING " + strings.Join(stockCols, ", "))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	var row stockRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update stock thresholds: %w", err)
	}
	return row.toDomain(), nil
}

// Deactivate soft-deletes the record. No active guard: repeated calls
// succeed as long as the record exists.
func (r *Repo) Deactivate(ctx context.Context, productID id.ID) (bool, error) {
	q := r.builder.Update(stockTable).
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("deactivate stock record: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListActive returns a page of active records ordered by creation time.
func (r *Repo) ListActive(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[stock.Record], error) {
	result := &domain.ListResult[stock.Record]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	countQ := r.builder.Select("COUNT(*)").From(stockTable).
		Where(squirrel.Eq{"active": true})
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("count stock records: %w", err)
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"active": true}).
		OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []stockRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}

	result.Items = make([]stock.Record, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, *rows[i].toDomain())
	}
	return result, nil
}

// FindLowStock returns active records at or below their minimum.
func (r *Repo) FindLowStock(ctx context.Context) ([]stock.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Expr("quantity <= min_quantity")).
		OrderBy("quantity ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []stockRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("find low stock: %w", err)
	}

	records := make([]stock.Record, 0, len(rows))
	for i := range rows {
		records = append(records, *rows[i].toDomain())
	}
	return records, nil
}

// Stats returns aggregates over active records.
func (r *Repo) Stats(ctx context.Context) (*stock.Stats, error) {
	q := r.builder.Select(
		"COUNT(*) AS total_records",
		"COALESCE(SUM(quantity), 0) AS total_quantity",
		"COUNT(*) FILTER (WHERE quantity <= min_quantity) AS low_stock_count",
	).From(stockTable).Where(squirrel.Eq{"active": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		TotalRecords  int64 `db:"total_records"`
		TotalQuantity int64 `db:"total_quantity"`
		LowStockCount int64 `db:"low_stock_count"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("stock stats: %w", err)
	}
	return &stock.Stats{
		TotalRecords:  row.TotalRecords,
		TotalQuantity: row.TotalQuantity,
		LowStockCount: row.LowStockCount,
	}, nil
}
