package services

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/domain"
	"storefront-service/internal/mocks"
	"storefront-service/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func stockStore() *memory.Store {
	return memory.NewStore(
		CreateMockProduct("cap-a", "Cap A", domain.CategoryCaps, 2, 1500),
		CreateMockProduct("classic-cap", "Classic", domain.CategoryCaps, 4, 10),
		CreateMockProduct("classic-shoe", "Classic", domain.CategoryShoes, 1, 10),
	)
}

func TestStockService_Lookup(t *testing.T) {
	svc := NewStockService(stockStore(), 0)

	tests := []struct {
		name         string
		query        StockQuery
		expected     int64
		expectedKind domain.ErrorKind
	}{
		{"unique name", StockQuery{Name: "Cap A"}, 2, ""},
		{"name is trimmed", StockQuery{Name: "  Cap A "}, 2, ""},
		{"by id", StockQuery{ProductID: "classic-shoe"}, 1, ""},
		{"category narrows an ambiguous name", StockQuery{Name: "Classic", Category: domain.CategoryCaps}, 4, ""},
		{"ambiguous name", StockQuery{Name: "Classic"}, 0, domain.KindAmbiguousProduct},
		{"unknown name", StockQuery{Name: "Nonexistent Item"}, 0, domain.KindProductNotFound},
		{"id outside category", StockQuery{ProductID: "cap-a", Category: domain.CategoryShoes}, 0, domain.KindProductNotFound},
		{"empty query", StockQuery{}, 0, domain.KindValidation},
		{"bad category", StockQuery{Name: "Cap A", Category: "hats"}, 0, domain.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Lookup(context.Background(), tt.query)
			if tt.expectedKind != "" {
				oe, ok := domain.AsOrderError(err)
				require.True(t, ok)
				assert.Equal(t, tt.expectedKind, oe.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStockService_Lookup_IsIdempotent(t *testing.T) {
	store := stockStore()
	svc := NewStockService(store, 0)

	first, err := svc.Lookup(context.Background(), StockQuery{Name: "Cap A"})
	require.NoError(t, err)
	second, err := svc.Lookup(context.Background(), StockQuery{Name: "Cap A"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	p, _ := store.Product("cap-a")
	assert.Equal(t, int64(2), p.Quantity)
}

func TestStockService_Lookup_UsesCache(t *testing.T) {
	catalog := new(mocks.MockCatalogRepository)
	stockCache := new(mocks.MockStockCache)
	svc := NewStockService(catalog, 0)
	svc.SetStockCache(stockCache)

	stockCache.On("Get", mock.Anything, "stock:name:Cap A").Return(int64(0), int64(3), false).Once()
	catalog.On("FindByNames", mock.Anything, []string{"Cap A"}).
		Return([]domain.Product{CreateMockProduct("cap-a", "Cap A", domain.CategoryCaps, 2, 1500)}, nil).Once()
	stockCache.On("Set", mock.Anything, "stock:name:Cap A", int64(3), int64(2)).Return().Once()
	stockCache.On("Get", mock.Anything, "stock:name:Cap A").Return(int64(2), int64(0), true).Once()

	for i := 0; i < 2; i++ {
		got, err := svc.Lookup(context.Background(), StockQuery{Name: "Cap A"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), got)
	}

	catalog.AssertExpectations(t)
	stockCache.AssertExpectations(t)
}

func TestStockService_Lookup_DoesNotCacheFailures(t *testing.T) {
	catalog := new(mocks.MockCatalogRepository)
	stockCache := new(mocks.MockStockCache)
	svc := NewStockService(catalog, 0)
	svc.SetStockCache(stockCache)

	stockCache.On("Get", mock.Anything, mock.Anything).Return(int64(0), int64(0), false)
	catalog.On("FindByNames", mock.Anything, []string{"Ghost"}).Return([]domain.Product{}, nil)
	catalog.On("FindByNames", mock.Anything, []string{"Boom"}).Return(nil, errors.New("connection reset"))

	_, err := svc.Lookup(context.Background(), StockQuery{Name: "Ghost"})
	assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	_, err = svc.Lookup(context.Background(), StockQuery{Name: "Boom"})
	assert.Error(t, err)

	stockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
