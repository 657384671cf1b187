package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// totalTolerance absorbs client-side rounding of displayed totals.
var totalTolerance = decimal.New(1, -2)

var validate = validator.New()

type OrderServiceConfig struct {
	StoreTimeout time.Duration
	StrictTotal  bool
}

type PlaceOrderRequest struct {
	Customer    domain.Customer
	Lines       []domain.CartLine
	ClientTotal *decimal.Decimal
}

type OrderService struct {
	catalog repository.CatalogRepository
	orders  repository.OrderRepository
	cache   StockCache
	events  EventDispatcher
	cfg     OrderServiceConfig
	now     func() time.Time
	newID   func() string
}

func NewOrderService(c repository.CatalogRepository, o repository.OrderRepository, cfg OrderServiceConfig) *OrderService {
	return &OrderService{
		catalog: c,
		orders:  o,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

func (s *OrderService) SetStockCache(c StockCache) {
	s.cache = c
}

func (s *OrderService) SetEventDispatcher(d EventDispatcher) {
	s.events = d
}

// PlaceOrder validates the cart, resolves every line to one product, checks
// stock and then reserves stock and records the order in one storage unit.
// Notification happens after the commit and never affects the result.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	customer, lines, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	resolved, err := resolveLines(storeCtx, s.catalog, lines)
	if err != nil {
		return nil, err
	}

	for _, r := range resolved {
		if r.Product.Quantity < r.Quantity {
			return nil, domain.InsufficientStock(r.Label, r.Product.Quantity, r.Quantity)
		}
	}

	items := make([]domain.OrderItem, 0, len(resolved))
	reservations := make([]domain.Reservation, 0, len(resolved))
	for i, r := range resolved {
		items = append(items, domain.OrderItem{
			ProductID:        r.Product.ID,
			ProductName:      r.Product.Name,
			Category:         r.Product.Category,
			Quantity:         r.Quantity,
			UnitPriceAtOrder: r.Product.Price,
		})
		reservations = append(reservations, domain.Reservation{
			ProductID: r.Product.ID,
			Name:      r.Label,
			Quantity:  r.Quantity,
			Line:      i,
		})
	}
	total := domain.ComputeTotal(items)

	if err := s.checkClientTotal(ctx, req.ClientTotal, total); err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:        s.newID(),
		Customer:  customer,
		Items:     items,
		Total:     total,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.PlaceOrder(storeCtx, order, reservations); err != nil {
		err = storageErr(storeCtx, err)
		slog.WarnContext(ctx, "place order rejected", slog.String("order_id", order.ID), slog.Any("err", err))
		return nil, err
	}

	slog.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.Int("lines", len(items)),
		slog.String("total", total.StringFixed(2)))

	s.invalidateStock(ctx, resolved)
	s.publishOrderPlaced(order)
	return order, nil
}

func (s *OrderService) checkClientTotal(ctx context.Context, client *decimal.Decimal, computed decimal.Decimal) error {
	if client == nil {
		return nil
	}
	if client.Sub(computed).Abs().LessThanOrEqual(totalTolerance) {
		return nil
	}
	detail := fmt.Sprintf("client sent %s, items sum to %s", client.StringFixed(2), computed.StringFixed(2))
	slog.WarnContext(ctx, "client total mismatch", slog.String("detail", detail), slog.Bool("strict", s.cfg.StrictTotal))
	if s.cfg.StrictTotal {
		return domain.TotalMismatch(detail)
	}
	return nil
}

func (s *OrderService) invalidateStock(ctx context.Context, resolved []resolvedLine) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(resolved)*3)
	for _, r := range resolved {
		keys = append(keys,
			cache.Key(r.Product.ID, "", ""),
			cache.Key("", r.Product.Name, ""),
			cache.Key("", r.Product.Name, string(r.Product.Category)))
	}
	s.cache.Invalidate(context.WithoutCancel(ctx), keys...)
}

func (s *OrderService) publishOrderPlaced(order *domain.Order) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(domain.EventOrderPlaced, domain.NewOrderPlacedEvent(order))
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	o, err := s.orders.FindByID(storeCtx, id)
	if err != nil {
		return nil, storageErr(storeCtx, err)
	}
	if o == nil {
		return nil, domain.OrderNotFound(id)
	}
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) (Page[domain.Order], error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)
	filter.Email = strings.TrimSpace(filter.Email)

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	orders, total, err := s.orders.ListOrders(storeCtx, filter)
	if err != nil {
		return Page[domain.Order]{}, storageErr(storeCtx, err)
	}
	return Page[domain.Order]{Items: orders, Page: filter.Page, PageSize: filter.PageSize, Total: total}, nil
}

// UpdateStatus applies an admin status change. The write is conditional on the
// status read here, so a concurrent change makes it fail with InvalidTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	current, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return current, nil
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, domain.InvalidTransition(current.Status, to)
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	updated, err := s.orders.UpdateStatus(storeCtx, id, current.Status, to)
	if err != nil {
		return nil, storageErr(storeCtx, err)
	}
	if updated == nil {
		return nil, domain.OrderNotFound(id)
	}
	slog.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("from", string(current.Status)),
		slog.String("to", string(to)))
	return updated, nil
}

func normalizeRequest(req PlaceOrderRequest) (domain.Customer, []domain.CartLine, error) {
	c := domain.Customer{
		Name:    strings.TrimSpace(req.Customer.Name),
		Email:   strings.TrimSpace(req.Customer.Email),
		Address: strings.TrimSpace(req.Customer.Address),
		Phone:   strings.TrimSpace(req.Customer.Phone),
	}
	for _, f := range []struct{ field, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"address", c.Address},
		{"phone", c.Phone},
	} {
		if f.value == "" {
			return c, nil, domain.Validation(f.field, "is required")
		}
	}
	if err := validate.Var(c.Email, "email"); err != nil {
		return c, nil, domain.Validation("email", "is not a valid address")
	}

	if len(req.Lines) == 0 {
		return c, nil, domain.Validation("products", "cart is empty")
	}
	if len(req.Lines) > MaxCartLines {
		return c, nil, domain.Validation("products", fmt.Sprintf("at most %d lines per order", MaxCartLines))
	}

	lines := make([]domain.CartLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		l.Name = normalizeName(l.Name)
		if l.ProductID == "" && l.Name == "" {
			return c, nil, domain.Validation(fmt.Sprintf("products[%d].name", i), "is required")
		}
		if l.Quantity < 1 {
			return c, nil, domain.Validation(fmt.Sprintf("products[%d].qty", i), "must be at least 1")
		}
		lines = append(lines, l)
	}
	return c, lines, nil
}
