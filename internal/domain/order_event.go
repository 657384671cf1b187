package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

type OrderPlacedEvent struct {
	OrderID   string          `json:"orderId"`
	Customer  Customer        `json:"customer"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:   o.ID,
		Customer:  o.Customer,
		Items:     o.Items,
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
}
