package product_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain"
	"stockroom/internal/domain/product"
)

// fakeProductRepo is an in-memory product.Repository.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[id.ID]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[id.ID]*product.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.products {
		if existing.Name == p.Name {
			return apperror.NewConflict("product with name already exists")
		}
	}
	c := *p
	f.products[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) FindByName(_ context.Context, name string) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) List(_ context.Context, filter domain.ListFilter) (*domain.ListResult[product.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &domain.ListResult[product.Product]{Limit: filter.Limit, Offset: filter.Offset}
	for _, p := range f.products {
		result.Items = append(result.Items, *p)
		result.Total++
	}
	return result, nil
}

func (f *fakeProductRepo) SearchByName(_ context.Context, query string, filter domain.ListFilter) (*domain.ListResult[product.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := &domain.ListResult[product.Product]{Limit: filter.Limit, Offset: filter.Offset}
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			result.Items = append(result.Items, *p)
			result.Total++
		}
	}
	return result, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *product.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	c := *p
	f.products[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, productID id.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[productID]; !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeProductRepo) Exists(_ context.Context, productID id.ID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.products[productID]
	return ok, nil
}

func (f *fakeProductRepo) Stats(_ context.Context) (*product.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &product.Stats{AveragePrice: types.ZeroMoney()}
	sum := types.ZeroMoney()
	for _, p := range f.products {
		stats.TotalProducts++
		sum = sum.Add(p.Price)
	}
	if stats.TotalProducts > 0 {
		stats.AveragePrice = sum.DivRound(types.NewMoney(float64(stats.TotalProducts)), 2)
	}
	return stats, nil
}

func TestProductCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())

		p, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("999.90")})
		require.NoError(t, err)
		assert.False(t, id.IsNil(p.ID))
		assert.Equal(t, "Laptop", p.Name)
		assert.True(t, p.Price.Equal(types.MustMoney("999.90")))
		assert.False(t, p.CreatedAt.IsZero())
	})

	t.Run("trims the name", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())

		p, err := svc.Create(ctx, product.CreateInput{Name: "  Laptop  ", Price: types.MustMoney("1.00")})
		require.NoError(t, err)
		assert.Equal(t, "Laptop", p.Name)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())

		_, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("1.00")})
		require.NoError(t, err)

		_, err = svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("2.00")})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())

		cases := []product.CreateInput{
			{Name: "", Price: types.MustMoney("1.00")},
			{Name: "   ", Price: types.MustMoney("1.00")},
			{Name: "Laptop", Price: types.MustMoney("0")},
			{Name: "Laptop", Price: types.MustMoney("-1.00")},
			{Name: strings.Repeat("x", 256), Price: types.MustMoney("1.00")},
		}
		for _, in := range cases {
			_, err := svc.Create(ctx, in)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		}
	})
}

func TestProductUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("updates fields selectively", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())
		p, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("100.00")})
		require.NoError(t, err)
		created := p.CreatedAt

		time.Sleep(time.Millisecond)
		newPrice := types.MustMoney("150.00")
		updated, err := svc.Update(ctx, p.ID, product.UpdateInput{Price: &newPrice})
		require.NoError(t, err)
		assert.Equal(t, "Laptop", updated.Name)
		assert.True(t, updated.Price.Equal(newPrice))
		assert.Equal(t, created, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(created))
	})

	t.Run("rejects renaming onto an existing name", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())
		_, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("1.00")})
		require.NoError(t, err)
		p, err := svc.Create(ctx, product.CreateInput{Name: "Mouse", Price: types.MustMoney("1.00")})
		require.NoError(t, err)

		name := "Laptop"
		_, err = svc.Update(ctx, p.ID, product.UpdateInput{Name: &name})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("keeping own name is not a conflict", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())
		p, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("1.00")})
		require.NoError(t, err)

		name := "Laptop"
		_, err = svc.Update(ctx, p.ID, product.UpdateInput{Name: &name})
		require.NoError(t, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc := product.NewService(newFakeProductRepo())
		_, err := svc.Update(ctx, id.New(), product.UpdateInput{})
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestProductDeleteAndExists(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newFakeProductRepo())

	p, err := svc.Create(ctx, product.CreateInput{Name: "Laptop", Price: types.MustMoney("1.00")})
	require.NoError(t, err)

	exists, err := svc.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Delete(ctx, p.ID))

	exists, err = svc.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	err = svc.Delete(ctx, p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestProductSearch(t *testing.T) {
	ctx := context.Background()
	svc := product.NewService(newFakeProductRepo())

	for _, name := range []string{"Gaming Laptop", "Office Laptop", "Mouse"} {
		_, err := svc.Create(ctx, product.CreateInput{Name: name, Price: types.MustMoney("1.00")})
		require.NoError(t, err)
	}

	result, err := svc.SearchByName(ctx, "laptop", domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)

	// Blank query lists everything.
	result, err = svc.SearchByName(ctx, "  ", domain.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
}
