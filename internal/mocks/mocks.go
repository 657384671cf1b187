package mocks

import (
	"context"

	"storefront-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockCatalogRepository struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockStockCache struct {
	mock.Mock
}

type MockEventDispatcher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

func (m *MockEventDispatcher) Dispatch(routingKey string, data any) {
	m.Called(routingKey, data)
}

func (m *MockStockCache) Get(ctx context.Context, key string) (int64, int64, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Get(1).(int64), args.Bool(2)
}

func (m *MockStockCache) Set(ctx context.Context, key string, gen, quantity int64) {
	m.Called(ctx, key, gen, quantity)
}

func (m *MockStockCache) Invalidate(ctx context.Context, keys ...string) {
	m.Called(ctx, keys)
}

func (m *MockOrderRepository) PlaceOrder(ctx context.Context, order *domain.Order, reservations []domain.Reservation) error {
	args := m.Called(ctx, order, reservations)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockCatalogRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}
