package http

import (
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/services"

	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Qty  int64  `json:"qty" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Name     string             `json:"name" binding:"required"`
	Email    string             `json:"email" binding:"required,email"`
	Address  string             `json:"address" binding:"required"`
	Phone    string             `json:"phone" binding:"required"`
	Products []OrderLineRequest `json:"products" binding:"required,min=1,max=50,dive"`
	Total    *decimal.Decimal   `json:"total" swaggertype:"number"`
}

func (r PlaceOrderRequest) toServiceRequest() services.PlaceOrderRequest {
	lines := make([]domain.CartLine, 0, len(r.Products))
	for _, p := range r.Products {
		lines = append(lines, domain.CartLine{ProductID: p.ID, Name: p.Name, Quantity: p.Qty})
	}
	return services.PlaceOrderRequest{
		Customer: domain.Customer{
			Name:    r.Name,
			Email:   r.Email,
			Address: r.Address,
			Phone:   r.Phone,
		},
		Lines:       lines,
		ClientTotal: r.Total,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PlaceOrderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type ErrorResponse struct {
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Error      string   `json:"error,omitempty"`
	Field      string   `json:"field,omitempty"`
	Product    string   `json:"product,omitempty"`
	Available  *int64   `json:"available,omitempty"`
	Requested  *int64   `json:"requested,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type StockResponse struct {
	Quantity int64  `json:"quantity"`
	Message  string `json:"message,omitempty"`
}

type ProductPageResponse struct {
	Products   []domain.Product `json:"products"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Total      int64            `json:"total"`
	TotalPages int              `json:"totalPages"`
}

type CategoryProductsResponse struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

type OrderPageResponse struct {
	Orders     []domain.Order `json:"orders"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"totalPages"`
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func toProductPage(p services.Page[domain.Product]) ProductPageResponse {
	return ProductPageResponse{
		Products:   p.Items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
	}
}

func toOrderPage(p services.Page[domain.Order]) OrderPageResponse {
	return OrderPageResponse{
		Orders:     p.Items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
	}
}
