package gormdb

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// PlaceOrder decrements stock with conditional updates and inserts the order in a
// single transaction. Products are locked in id order so two carts sharing
// products cannot deadlock on each other. When several decrements fail, the
// one from the earliest cart line is reported.
func (r *orderRepo) PlaceOrder(ctx context.Context, order *domain.Order, reservations []domain.Reservation) error {
	sorted := make([]domain.Reservation, len(reservations))
	copy(sorted, reservations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var failed error
		failedLine := -1
		for _, res := range sorted {
			result := tx.Model(&domain.Product{}).
				Where("id = ? AND quantity >= ?", res.ProductID, res.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", res.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				continue
			}
			ferr := stockFailure(tx, res)
			if _, ok := domain.AsOrderError(ferr); !ok {
				return ferr
			}
			if failed == nil || res.Line < failedLine {
				failed, failedLine = ferr, res.Line
			}
		}
		if failed != nil {
			return failed
		}
		return tx.Create(order).Error
	})
	if err != nil {
		if _, ok := domain.AsOrderError(err); !ok {
			slog.ErrorContext(ctx, "place order transaction failed", slog.String("order_id", order.ID), slog.Any("err", err))
		}
		return classify(err)
	}

	slog.InfoContext(ctx, "order saved", slog.String("order_id", order.ID), slog.Int("items", len(order.Items)))
	return nil
}

// stockFailure explains a conditional decrement that matched no row, using the
// quantity visible inside the transaction.
func stockFailure(tx *gorm.DB, res domain.Reservation) error {
	var current domain.Product
	err := tx.Select("quantity").Where("id = ?", res.ProductID).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ProductNotFound(res.Name)
	}
	if err != nil {
		return err
	}
	return domain.InsufficientStock(res.Name, current.Quantity, res.Quantity)
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "find order failed", slog.String("order_id", id), slog.Any("err", err))
		return nil, classify(err)
	}
	return &o, nil
}

func (r *orderRepo) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{})
	if filter.Email != "" {
		q = q.Where("LOWER(customer_email) = ?", strings.ToLower(filter.Email))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	out := make([]domain.Order, 0)
	if err := q.Order("created_at DESC").Offset(filter.Offset()).Limit(filter.PageSize).Find(&out).Error; err != nil {
		slog.ErrorContext(ctx, "list orders failed", slog.Any("err", err))
		return nil, 0, classify(err)
	}
	return out, total, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		slog.ErrorContext(ctx, "update order status failed", slog.String("order_id", id), slog.Any("err", result.Error))
		return nil, classify(result.Error)
	}

	o, err := r.FindByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	if result.RowsAffected == 0 && o.Status != to {
		return nil, domain.InvalidTransition(o.Status, to)
	}
	return o, nil
}
