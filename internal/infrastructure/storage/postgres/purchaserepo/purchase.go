// Package purchaserepo provides the PostgreSQL implementation of the
// purchase ledger repository.
package purchaserepo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/purchase"
	"stockroom/internal/infrastructure/storage/postgres"
)

const purchasesTable = "purchases"

var purchaseCols = []string{
	"id", "product_id", "quantity", "unit_price", "total_price",
	"status", "notes", "purchased_at", "updated_at",
}

// purchaseRow mirrors the purchases table.
type purchaseRow struct {
	ID          id.ID       `db:"id"`
	ProductID   id.ID       `db:"product_id"`
	Quantity    int         `db:"quantity"`
	UnitPrice   types.Money `db:"unit_price"`
	TotalPrice  types.Money `db:"total_price"`
	Status      string      `db:"status"`
	Notes       string      `db:"notes"`
	PurchasedAt time.Time   `db:"purchased_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r *purchaseRow) toDomain() *purchase.Purchase {
	return &purchase.Purchase{
		ID:          r.ID,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalPrice:  r.TotalPrice,
		Status:      purchase.Status(r.Status),
		Notes:       r.Notes,
		PurchasedAt: r.PurchasedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Repo implements purchase.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ purchase.Repository = (*Repo)(nil)

// New creates a purchase repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(purchaseCols...).From(purchasesTable)
}

// Create inserts a new purchase.
func (r *Repo) Create(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder.Insert(purchasesTable).SetMap(map[string]any{
		"id":           p.ID,
		"product_id":   p.ProductID,
		"quantity":     p.Quantity,
		"unit_price":   p.UnitPrice,
		"total_price":  p.TotalPrice,
		"status":       string(p.Status),
		"notes":        p.Notes,
		"purchased_at": p.PurchasedAt,
		"updated_at":   p.UpdatedAt,
	})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// GetByID retrieves a purchase by id.
func (r *Repo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": purchaseID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row purchaseRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateStatus sets status and notes on an existing purchase.
func (r *Repo) UpdateStatus(ctx context.Context, purchaseID id.ID, status purchase.Status, notes string) error {
	q := r.builder.Update(purchasesTable).
		SetMap(map[string]any{
			"status":     string(status),
			"notes":      notes,
			"updated_at": time.Now().UTC(),
		}).
		Where(squirrel.Eq{"id": purchaseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	return nil
}

// List returns a page of purchases, newest first.
func (r *Repo) List(ctx context.Context, filter purchase.ListFilter) (*domain.ListResult[purchase.Purchase], error) {
	result := &domain.ListResult[purchase.Purchase]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	conds := squirrel.And{}
	if filter.ProductID != nil {
		conds = append(conds, squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Status != nil {
		conds = append(conds, squirrel.Eq{"status": string(*filter.Status)})
	}

	countQ := r.builder.Select("COUNT(*)").From(purchasesTable)
	q := r.baseSelect()
	if len(conds) > 0 {
		countQ = countQ.Where(conds)
		q = q.Where(conds)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("count purchases: %w", err)
	}

	q = q.OrderBy("purchased_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []purchaseRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	result.Items = make([]purchase.Purchase, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, *rows[i].toDomain())
	}
	return result, nil
}

// Recent returns the latest purchases up to limit.
func (r *Repo) Recent(ctx context.Context, limit int) ([]purchase.Purchase, error) {
	q := r.baseSelect().
		OrderBy("purchased_at DESC").
		Limit(uint64(limit))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []purchaseRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("recent purchases: %w", err)
	}

	purchases := make([]purchase.Purchase, 0, len(rows))
	for i := range rows {
		purchases = append(purchases, *rows[i].toDomain())
	}
	return purchases, nil
}

// Stats returns ledger aggregates. Only completed purchases count
// towards total sales.
func (r *Repo) Stats(ctx context.Context) (*purchase.Stats, error) {
	q := r.builder.Select(
		"COUNT(*) AS total_purchases",
		"COUNT(*) FILTER (WHERE status = 'COMPLETED') AS completed",
		"COUNT(*) FILTER (WHERE status = 'CANCELLED') AS cancelled",
		"COALESCE(SUM(total_price) FILTER (WHERE status = 'COMPLETED'), 0) AS total_sales",
	).From(purchasesTable)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		TotalPurchases int64       `db:"total_purchases"`
		Completed      int64       `db:"completed"`
		Cancelled      int64       `db:"cancelled"`
		TotalSales     types.Money `db:"total_sales"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("purchase stats: %w", err)
	}
	return &purchase.Stats{
		TotalPurchases: row.TotalPurchases,
		Completed:      row.Completed,
		Cancelled:      row.Cancelled,
		TotalSales:     row.TotalSales,
	}, nil
}

// TotalSalesByProduct sums completed purchase totals for one product.
func (r *Repo) TotalSalesByProduct(ctx context.Context, productID id.ID) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(total_price), 0)").
		From(purchasesTable).
		Where(squirrel.Eq{"product_id": productID, "status": string(purchase.StatusCompleted)})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.ZeroMoney(), fmt.Errorf("build query: %w", err)
	}

	var total types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.ZeroMoney(), fmt.Errorf("total sales by product: %w", err)
	}
	return total, nil
}
