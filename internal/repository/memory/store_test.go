package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProducts() []domain.Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{ID: "cap-a", Name: "Cap A", Category: domain.CategoryCaps, Quantity: 2, Price: decimal.NewFromInt(1500), CreatedAt: base},
		{ID: "ring", Name: "Ring", Category: domain.CategoryJewelries, Quantity: 5, Price: decimal.NewFromInt(300), CreatedAt: base.Add(time.Hour)},
		{ID: "classic-cap", Name: "Classic", Category: domain.CategoryCaps, Quantity: 1, Price: decimal.NewFromInt(10), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "classic-shoe", Name: "Classic", Category: domain.CategoryShoes, Quantity: 1, Price: decimal.NewFromInt(10), CreatedAt: base.Add(3 * time.Hour)},
	}
}

func newOrder(id string) *domain.Order {
	return &domain.Order{ID: id, Status: domain.StatusPending, CreatedAt: time.Now().UTC()}
}

func TestStore_PlaceOrder_AllOrNothing(t *testing.T) {
	s := NewStore(seedProducts()...)

	err := s.PlaceOrder(context.Background(), newOrder("o1"), []domain.Reservation{
		{ProductID: "ring", Name: "Ring", Quantity: 1},
		{ProductID: "cap-a", Name: "Cap A", Quantity: 3},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	oe, ok := domain.AsOrderError(err)
	require.True(t, ok)
	assert.Equal(t, int64(2), oe.Available)
	assert.Equal(t, int64(3), oe.Requested)

	ring, _ := s.Product("ring")
	assert.Equal(t, int64(5), ring.Quantity)
	assert.Equal(t, 0, s.OrderCount())
}

func TestStore_PlaceOrder_NoOverselling(t *testing.T) {
	s := NewStore(seedProducts()...)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.PlaceOrder(context.Background(), newOrder(string(rune('a'+i))), []domain.Reservation{
				{ProductID: "cap-a", Name: "Cap A", Quantity: 1},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 18, rejected)
	p, _ := s.Product("cap-a")
	assert.Equal(t, int64(0), p.Quantity)
	assert.Equal(t, 2, s.OrderCount())
}

func TestStore_PlaceOrder_CancelledContext(t *testing.T) {
	s := NewStore(seedProducts()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.PlaceOrder(ctx, newOrder("o1"), []domain.Reservation{{ProductID: "ring", Name: "Ring", Quantity: 1}})

	assert.True(t, errors.Is(err, domain.ErrStorageUnavailable))
	p, _ := s.Product("ring")
	assert.Equal(t, int64(5), p.Quantity)
}

func TestStore_FindByNames_SpansCategories(t *testing.T) {
	s := NewStore(seedProducts()...)

	products, err := s.FindByNames(context.Background(), []string{"Classic"})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.CategoryCaps, products[0].Category)
	assert.Equal(t, domain.CategoryShoes, products[1].Category)
}

func TestStore_ListProducts(t *testing.T) {
	s := NewStore(seedProducts()...)

	tests := []struct {
		name      string
		filter    domain.ProductFilter
		wantIDs   []string
		wantTotal int64
	}{
		{"newest first", domain.ProductFilter{Page: 1, PageSize: 2}, []string{"classic-shoe", "classic-cap"}, 4},
		{"second page", domain.ProductFilter{Page: 2, PageSize: 3}, []string{"cap-a"}, 4},
		{"by category", domain.ProductFilter{Category: domain.CategoryCaps, PageSize: 10}, []string{"classic-cap", "cap-a"}, 2},
		{"search", domain.ProductFilter{Search: " cap ", PageSize: 10}, []string{"cap-a"}, 1},
		{"past the end", domain.ProductFilter{Page: 9, PageSize: 10}, []string{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := s.ListProducts(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(products))
			for _, p := range products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestStore_UpdateStatus_CompareAndSet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.PlaceOrder(ctx, newOrder("o1"), nil))

	updated, err := s.UpdateStatus(ctx, "o1", domain.StatusPending, domain.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	_, err = s.UpdateStatus(ctx, "o1", domain.StatusPending, domain.StatusCancelled)
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	missing, err := s.UpdateStatus(ctx, "nope", domain.StatusPending, domain.StatusProcessing)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ListOrders_FiltersByEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first := newOrder("o1")
	first.Customer.Email = "ada@example.com"
	first.CreatedAt = time.Now().Add(-time.Hour)
	second := newOrder("o2")
	second.Customer.Email = "ADA@example.com"
	other := newOrder("o3")
	other.Customer.Email = "bob@example.com"
	for _, o := range []*domain.Order{first, second, other} {
		require.NoError(t, s.PlaceOrder(ctx, o, nil))
	}

	orders, total, err := s.ListOrders(ctx, domain.OrderFilter{Email: "ada@example.com", PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID)
}
