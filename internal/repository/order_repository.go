package repository

import (
	"context"

	"storefront-service/internal/domain"
)

// OrderRepository persists orders. PlaceOrder applies every reservation and
// inserts the order in one atomic unit: a reservation whose product no longer
// has enough stock aborts the whole unit with domain.InsufficientStock.
type OrderRepository interface {
	PlaceOrder(ctx context.Context, order *domain.Order, reservations []domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	// UpdateStatus sets the status only if the stored status still equals from.
	// It returns (nil, nil) when the order is missing and domain.ErrInvalidTransition
	// when another writer changed the status first.
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error)
}
