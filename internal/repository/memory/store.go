package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"
)

// Store keeps products and orders in process memory. One mutex guards both
// collections, which makes every PlaceOrder linearizable; nothing inside the
// critical section blocks on I/O.
type Store struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orders   map[string]domain.Order
}

var (
	_ repository.CatalogRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
)

func NewStore(seed ...domain.Product) *Store {
	s := &Store{
		products: make(map[string]domain.Product, len(seed)),
		orders:   make(map[string]domain.Order),
	}
	for _, p := range seed {
		s.products[p.ID] = p
	}
	return s
}

// Product returns a copy of the stored product.
func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StorageUnavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StorageUnavailable(err)
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Product, 0, len(names))
	for _, p := range s.products {
		if _, ok := wanted[p.Name]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, domain.StorageUnavailable(err)
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	s.mu.Lock()
	matched := make([]domain.Product, 0)
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

// PlaceOrder checks every reservation before applying any of them.
func (s *Store) PlaceOrder(ctx context.Context, order *domain.Order, reservations []domain.Reservation) error {
	if err := ctx.Err(); err != nil {
		return domain.StorageUnavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range reservations {
		p, ok := s.products[res.ProductID]
		if !ok {
			return domain.ProductNotFound(res.Name)
		}
		if p.Quantity < res.Quantity {
			return domain.InsufficientStock(res.Name, p.Quantity, res.Quantity)
		}
	}

	now := time.Now().UTC()
	for _, res := range reservations {
		p := s.products[res.ProductID]
		p.Quantity -= res.Quantity
		p.UpdatedAt = now
		s.products[res.ProductID] = p
	}
	s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StorageUnavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, domain.StorageUnavailable(err)
	}
	s.mu.Lock()
	matched := make([]domain.Order, 0)
	for _, o := range s.orders {
		if filter.Email != "" && !strings.EqualFold(o.Customer.Email, filter.Email) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return page(matched, filter.Offset(), filter.PageSize), int64(len(matched)), nil
}

func (s *Store) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StorageUnavailable(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	if o.Status != from && o.Status != to {
		return nil, domain.InvalidTransition(o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o

	out := cloneOrder(o)
	return &out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func page[T any](items []T, offset, size int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if size > 0 && offset+size < end {
		end = offset + size
	}
	return items[offset:end]
}
