package services

import (
	"time"

	"storefront-service/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockProduct(id, name string, category domain.Category, qty int64, price int64) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Category:  category,
		Quantity:  qty,
		Price:     decimal.NewFromInt(price),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func CreateMockOrder(id string, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:        id,
		Customer:  TestCustomer,
		Items:     items,
		Total:     domain.ComputeTotal(items),
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

var TestCustomer = domain.Customer{
	Name:    "Ada Obi",
	Email:   "ada@example.com",
	Address: "12 Marina Road, Lagos",
	Phone:   "+2348000000000",
}

const (
	TestProductID    = "3f9a6f0e-cap-a"
	TestOrderID      = "0b7c1d52-order"
	TestProductName  = "Cap A"
	TestProductPrice = int64(1500)
	TestProductQty   = int64(2)
)
