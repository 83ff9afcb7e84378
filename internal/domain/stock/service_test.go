package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/directory"
	"stockroom/internal/domain/stock"
)

// fakeStockRepo is an in-memory stock.Repository. The mutex makes the
// conditional mutators atomic, mirroring the single-statement UPDATE
// semantics of the real implementation.
type fakeStockRepo struct {
	mu      sync.Mutex
	records map[id.ID]*stock.Record
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{records: make(map[id.ID]*stock.Record)}
}

func (f *fakeStockRepo) clone(r *stock.Record) *stock.Record {
	c := *r
	if r.MaxQuantity != nil {
		m := *r.MaxQuantity
		c.MaxQuantity = &m
	}
	return &c
}

func (f *fakeStockRepo) Create(_ context.Context, r *stock.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[r.ProductID]; ok {
		return apperror.NewConflict("product already has a stock record")
	}
	f.records[r.ProductID] = f.clone(r)
	return nil
}

func (f *fakeStockRepo) FindByProduct(_ context.Context, productID id.ID) (*stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok || !r.Active {
		return nil, nil
	}
	return f.clone(r), nil
}

func (f *fakeStockRepo) ExistsByProduct(_ context.Context, productID id.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.records[productID]
	return ok, nil
}

func (f *fakeStockRepo) IncrementQuantity(_ context.Context, productID id.ID, qty int) (*stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok || !r.Active {
		return nil, nil
	}
	if r.MaxQuantity != nil && r.Quantity+qty > *r.MaxQuantity {
		return nil, nil
	}
	r.Quantity += qty
	r.UpdatedAt = time.Now().UTC()
	return f.clone(r), nil
}

func (f *fakeStockRepo) DecrementQuantity(_ context.Context, productID id.ID, qty int) (*stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok || !r.Active || r.Quantity < qty {
		return nil, nil
	}
	r.Quantity -= qty
	r.UpdatedAt = time.Now().UTC()
	return f.clone(r), nil
}

func (f *fakeStockRepo) SetQuantity(_ context.Context, productID id.ID, qty int) (*stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok || !r.Active {
		return nil, nil
	}
	r.Quantity = qty
	r.UpdatedAt = time.Now().UTC()
	return f.clone(r), nil
}

func (f *fakeStockRepo) UpdateThresholds(_ context.Context, productID id.ID, minQty int, maxQty *int) (*stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok || !r.Active {
		return nil, nil
	}
	r.MinQuantity = minQty
	r.MaxQuantity = maxQty
	r.UpdatedAt = time.Now().UTC()
	return f.clone(r), nil
}

func (f *fakeStockRepo) Deactivate(_ context.Context, productID id.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[productID]
	if !ok {
		return false, nil
	}
	r.Active = false
	return true, nil
}

func (f *fakeStockRepo) ListActive(_ context.Context, filter domain.ListFilter) (*domain.ListResult[stock.Record], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &domain.ListResult[stock.Record]{Limit: filter.Limit, Offset: filter.Offset}
	for _, r := range f.records {
		if r.Active {
			result.Items = append(result.Items, *f.clone(r))
			result.Total++
		}
	}
	return result, nil
}

func (f *fakeStockRepo) FindLowStock(_ context.Context) ([]stock.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []stock.Record
	for _, r := range f.records {
		if r.Active && r.Quantity <= r.MinQuantity {
			out = append(out, *f.clone(r))
		}
	}
	return out, nil
}

func (f *fakeStockRepo) Stats(_ context.Context) (*stock.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &stock.Stats{}
	for _, r := range f.records {
		if !r.Active {
			continue
		}
		s.TotalRecords++
		s.TotalQuantity += int64(r.Quantity)
		if r.Quantity <= r.MinQuantity {
			s.LowStockCount++
		}
	}
	return s, nil
}

// fakeDirectory is an in-memory directory.Directory.
type fakeDirectory struct {
	mu       sync.Mutex
	products map[id.ID]directory.Product
	err      error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{products: make(map[id.ID]directory.Product)}
}

func (f *fakeDirectory) add(p directory.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeDirectory) GetProduct(_ context.Context, productID id.ID) (*directory.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewProductUnavailable(productID.String()).WithDetail("reason", "not_found")
	}
	return &p, nil
}

func (f *fakeDirectory) Exists(_ context.Context, productID id.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.products[productID]
	return ok, nil
}

// nopTxManager runs the function directly. Rollback behavior is covered
// by operation ordering inside the services.
type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newStockService(t *testing.T) (*stock.Service, *fakeStockRepo, *fakeDirectory) {
	t.Helper()
	repo := newFakeStockRepo()
	dir := newFakeDirectory()
	return stock.NewService(repo, dir, nopTxManager{}), repo, dir
}

func catalogProduct(dir *fakeDirectory) id.ID {
	productID := id.New()
	dir.add(directory.Product{ID: productID, Name: "widget", UnitPrice: types.MustMoney("9.99")})
	return productID
}

func TestStockCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record for known product", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)

		r, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 10, MinQuantity: 2})
		require.NoError(t, err)
		assert.Equal(t, 10, r.Quantity)
		assert.True(t, r.Active)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		svc, _, _ := newStockService(t)

		_, err := svc.Create(ctx, stock.CreateInput{ProductID: id.New(), Quantity: 5})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("rejects duplicate record", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)

		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		_, err = svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("duplicate check covers deactivated records", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)

		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(ctx, productID))

		_, err = svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)

		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: -1})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("rejects quantity above maximum", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		maximum := 5

		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 6, MaxQuantity: &maximum})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestHasSufficientStock(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newStockService(t)
	productID := catalogProduct(dir)

	_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
	require.NoError(t, err)

	cases := []struct {
		name string
		qty  int
		want bool
	}{
		{"zero quantity with record", 0, true},
		{"below available", 3, true},
		{"exactly available", 5, true},
		{"above available", 6, false},
		{"negative quantity", -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.HasSufficientStock(ctx, productID, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("absent record is insufficient even for zero", func(t *testing.T) {
		got, err := svc.HasSufficientStock(ctx, id.New(), 0)
		require.NoError(t, err)
		assert.False(t, got)
	})
}

func TestIncrease(t *testing.T) {
	ctx := context.Background()

	t.Run("adds quantity", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		r, err := svc.Increase(ctx, productID, 3)
		require.NoError(t, err)
		assert.Equal(t, 8, r.Quantity)
	})

	t.Run("non-positive quantity is a no-op", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		r, err := svc.Increase(ctx, productID, 0)
		require.NoError(t, err)
		assert.Equal(t, 5, r.Quantity)

		r, err = svc.Increase(ctx, productID, -4)
		require.NoError(t, err)
		assert.Equal(t, 5, r.Quantity)
	})

	t.Run("exactly reaching maximum succeeds", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		maximum := 10
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5, MaxQuantity: &maximum})
		require.NoError(t, err)

		r, err := svc.Increase(ctx, productID, 5)
		require.NoError(t, err)
		assert.Equal(t, 10, r.Quantity)
	})

	t.Run("exceeding maximum fails and leaves quantity unchanged", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		maximum := 10
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5, MaxQuantity: &maximum})
		require.NoError(t, err)

		_, err = svc.Increase(ctx, productID, 6)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeExceedsMaximum, appErr.Code)
		assert.Equal(t, 10, appErr.Details["maximum"])

		r, err := svc.GetByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 5, r.Quantity)
	})

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newStockService(t)
		_, err := svc.Increase(ctx, id.New(), 1)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDecrease(t *testing.T) {
	ctx := context.Background()

	t.Run("subtracts quantity", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		r, err := svc.Decrease(ctx, productID, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, r.Quantity)
	})

	t.Run("down to exactly zero succeeds", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		r, err := svc.Decrease(ctx, productID, 5)
		require.NoError(t, err)
		assert.Equal(t, 0, r.Quantity)
	})

	t.Run("insufficient stock names the product", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 2})
		require.NoError(t, err)

		_, err = svc.Decrease(ctx, productID, 3)
		require.Error(t, err)
		require.True(t, apperror.IsInsufficientStock(err))
		appErr, _ := apperror.AsAppError(err)
		assert.Contains(t, appErr.Message, productID.String())
		assert.Equal(t, 2, appErr.Details["available"])

		r, err := svc.GetByProduct(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 2, r.Quantity)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		svc, _, dir := newStockService(t)
		productID := catalogProduct(dir)
		_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
		require.NoError(t, err)

		for _, qty := range []int{0, -1} {
			_, err := svc.Decrease(ctx, productID, qty)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newStockService(t)
		_, err := svc.Decrease(ctx, id.New(), 1)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newStockService(t)
	productID := catalogProduct(dir)

	_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, productID))

	// Deactivated records are invisible to stock operations.
	r, err := svc.GetByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Nil(t, r)

	ok, err := svc.HasSufficientStock(ctx, productID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// Repeated deactivation of an existing record succeeds.
	require.NoError(t, svc.Deactivate(ctx, productID))

	// A record that was never created is not found.
	err = svc.Deactivate(ctx, id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSetQuantityBypassesMaximum(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newStockService(t)
	productID := catalogProduct(dir)
	maximum := 10

	_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 5, MaxQuantity: &maximum})
	require.NoError(t, err)

	r, err := svc.SetQuantity(ctx, productID, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, r.Quantity)

	_, err = svc.SetQuantity(ctx, productID, -1)
	require.Error(t, err)
}

func TestConcurrentDecrease(t *testing.T) {
	ctx := context.Background()
	svc, _, dir := newStockService(t)
	productID := catalogProduct(dir)

	_, err := svc.Create(ctx, stock.CreateInput{ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	// Two goroutines race for the last unit; exactly one wins.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decrease(ctx, productID, 1)
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsInsufficientStock(err):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, insufficient)

	r, err := svc.GetByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Quantity)
}
