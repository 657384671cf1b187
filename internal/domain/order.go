package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// stage orders the operational statuses; Cancelled sits outside the sequence.
var stage = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range OrderStatuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether an admin may move an order from s to next.
// Operational stages only move forward, Cancelled is reachable before shipping,
// and terminal statuses never change. Re-applying the current status is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return s == StatusPending || s == StatusProcessing
	}
	from, ok := stage[s]
	if !ok {
		return false
	}
	to, ok := stage[next]
	return ok && to > from
}

type Customer struct {
	Name    string `json:"name" gorm:"size:191;not null"`
	Email   string `json:"email" gorm:"size:191;not null;index"`
	Address string `json:"address" gorm:"size:512;not null"`
	Phone   string `json:"phone" gorm:"size:64;not null"`
}

// OrderItem is a snapshot of a product at order time.
type OrderItem struct {
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	Category         Category        `json:"category"`
	Quantity         int64           `json:"quantity"`
	UnitPriceAtOrder decimal.Decimal `json:"unitPriceAtOrder"`
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPriceAtOrder.Mul(decimal.NewFromInt(i.Quantity))
}

type Order struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	Customer  Customer        `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`
	Items     []OrderItem     `json:"items" gorm:"serializer:json;type:json;not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `json:"status" gorm:"size:16;not null;index"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ComputeTotal sums the snapshot line prices.
func ComputeTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

type OrderFilter struct {
	Email    string
	Status   OrderStatus
	Page     int
	PageSize int
}

func (f OrderFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
