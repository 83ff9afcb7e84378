// Package productrepo provides the PostgreSQL implementation of the
// product repository.
package productrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/product"
	"stockroom/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productCols = []string{"id", "name", "description", "price", "created_at", "updated_at"}

// productRow mirrors the products table.
type productRow struct {
	ID          id.ID       `db:"id"`
	Name        string      `db:"name"`
	Description *string     `db:"description"`
	Price       types.Money `db:"price"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r *productRow) toDomain() *product.Product {
	return &product.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Repo implements product.Repository.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ product.Repository = (*Repo)(nil)

// New creates a product repository.
func New(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(productCols...).From(productsTable)
}

// Create inserts a new product. A unique violation on the name index
// maps to CodeConflict.
func (r *Repo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).SetMap(map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict(fmt.Sprintf("product with name %q already exists", p.Name)).WithCause(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by id.
func (r *Repo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": productID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row productRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toDomain(), nil
}

// FindByName retrieves a product by exact name, nil when absent.
func (r *Repo) FindByName(ctx context.Context, name string) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"name": name}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row productRow
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product by name: %w", err)
	}
	return row.toDomain(), nil
}

// List returns a page of products ordered by creation time.
func (r *Repo) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResult[product.Product], error) {
	return r.listWhere(ctx, filter, nil)
}

// SearchByName returns products whose name contains query, case-insensitive.
func (r *Repo) SearchByName(ctx context.Context, query string, filter domain.ListFilter) (*domain.ListResult[product.Product], error) {
	cond := squirrel.ILike{"name": "%" + query + "%"}
	return r.listWhere(ctx, filter, cond)
}

func (r *Repo) listWhere(ctx context.Context, filter domain.ListFilter, cond squirrel.Sqlizer) (*domain.ListResult[product.Product], error) {
	result := &domain.ListResult[product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	countQ := r.builder.Select("COUNT(*)").From(productsTable)
	if cond != nil {
		q = q.Where(cond)
		countQ = countQ.Where(cond)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	q = q.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []productRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result.Items = make([]product.Product, 0, len(rows))
	for i := range rows {
		result.Items = append(result.Items, *rows[i].toDomain())
	}
	return result, nil
}

// Update persists all mutable fields.
func (r *Repo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		SetMap(map[string]any{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"updated_at":  p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict(fmt.Sprintf("product with name %q already exists", p.Name)).WithCause(err)
		}
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID.String())
	}
	return nil
}

// Delete removes a product. A foreign key violation maps to CodeConflict.
func (r *Repo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Delete(productsTable).Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("product is referenced by other records").
				WithDetail("id", productID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

// Exists reports whether a product exists.
func (r *Repo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	q := r.builder.Select("1").From(productsTable).
		Where(squirrel.Eq{"id": productID}).
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
		return false, fmt.Errorf("product exists: %w", err)
	}
	return true, nil
}

// Stats returns catalog aggregates.
func (r *Repo) Stats(ctx context.Context) (*product.Stats, error) {
	q := r.builder.
		Select("COUNT(*) AS total_products", "COALESCE(AVG(price), 0) AS average_price").
		From(productsTable)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row struct {
		TotalProducts int64       `db:"total_products"`
		AveragePrice  types.Money `db:"average_price"`
	}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &row, sql, args...); err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	return &product.Stats{
		TotalProducts: row.TotalProducts,
		AveragePrice:  row.AveragePrice,
	}, nil
}
