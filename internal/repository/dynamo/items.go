package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/domain"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

const (
	defaultProductsTable = "products"
	defaultOrdersTable   = "orders"
	productsNameIndex    = "name-index"
	ordersEmailIndex     = "email-index"
)

// API is the subset of *dynamodb.Client used by the stores.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

type productItem struct {
	ID        string `dynamodbav:"id"`
	Name      string `dynamodbav:"name"`
	NameLower string `dynamodbav:"name_lower"`
	Category  string `dynamodbav:"category"`
	Quantity  int64  `dynamodbav:"quantity"`
	Price     string `dynamodbav:"price"`
	ImageURL  string `dynamodbav:"image_url,omitempty"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

type orderLineItem struct {
	ProductID   string `dynamodbav:"product_id"`
	ProductName string `dynamodbav:"product_name"`
	Category    string `dynamodbav:"category"`
	Quantity    int64  `dynamodbav:"quantity"`
	UnitPrice   string `dynamodbav:"unit_price"`
}

// Table requirements:
//   - products: PK id (string), GSI name-index (PK name)
//   - orders: PK id (string), GSI email-index (PK email_key)
type orderItem struct {
	ID              string          `dynamodbav:"id"`
	CustomerName    string          `dynamodbav:"customer_name"`
	CustomerEmail   string          `dynamodbav:"customer_email"`
	EmailKey        string          `dynamodbav:"email_key"`
	CustomerAddress string          `dynamodbav:"customer_address"`
	CustomerPhone   string          `dynamodbav:"customer_phone"`
	Items           []orderLineItem `dynamodbav:"items"`
	Total           string          `dynamodbav:"total"`
	Status          string          `dynamodbav:"status"`
	CreatedAt       string          `dynamodbav:"created_at"`
	UpdatedAt       string          `dynamodbav:"updated_at"`
}

func toProductItem(p domain.Product) productItem {
	return productItem{
		ID:        p.ID,
		Name:      p.Name,
		NameLower: strings.ToLower(p.Name),
		Category:  string(p.Category),
		Quantity:  p.Quantity,
		Price:     p.Price.String(),
		ImageURL:  p.ImageURL,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func fromProductItem(it productItem) (domain.Product, error) {
	price, err := decimal.NewFromString(it.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s: bad price %q: %w", it.ID, it.Price, err)
	}
	return domain.Product{
		ID:        it.ID,
		Name:      it.Name,
		Category:  domain.Category(it.Category),
		Quantity:  it.Quantity,
		Price:     price,
		ImageURL:  it.ImageURL,
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}, nil
}

func toOrderItem(o *domain.Order) orderItem {
	lines := make([]orderLineItem, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, orderLineItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Category:    string(it.Category),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPriceAtOrder.String(),
		})
	}
	return orderItem{
		ID:              o.ID,
		CustomerName:    o.Customer.Name,
		CustomerEmail:   o.Customer.Email,
		EmailKey:        toEmailKey(o.Customer.Email),
		CustomerAddress: o.Customer.Address,
		CustomerPhone:   o.Customer.Phone,
		Items:           lines,
		Total:           o.Total.String(),
		Status:          string(o.Status),
		CreatedAt:       formatTime(o.CreatedAt),
		UpdatedAt:       formatTime(o.UpdatedAt),
	}
}

func fromOrderItem(it orderItem) (domain.Order, error) {
	total, err := decimal.NewFromString(it.Total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: bad total %q: %w", it.ID, it.Total, err)
	}
	items := make([]domain.OrderItem, 0, len(it.Items))
	for _, l := range it.Items {
		price, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order %s: bad unit price %q: %w", it.ID, l.UnitPrice, err)
		}
		items = append(items, domain.OrderItem{
			ProductID:        l.ProductID,
			ProductName:      l.ProductName,
			Category:         domain.Category(l.Category),
			Quantity:         l.Quantity,
			UnitPriceAtOrder: price,
		})
	}
	return domain.Order{
		ID: it.ID,
		Customer: domain.Customer{
			Name:    it.CustomerName,
			Email:   it.CustomerEmail,
			Address: it.CustomerAddress,
			Phone:   it.CustomerPhone,
		},
		Items:     items,
		Total:     total,
		Status:    domain.OrderStatus(it.Status),
		CreatedAt: parseTime(it.CreatedAt),
		UpdatedAt: parseTime(it.UpdatedAt),
	}, nil
}

func toEmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func queryAll(ctx context.Context, api API, in *dynamodb.QueryInput) ([]map[string]types.AttributeValue, error) {
	var out []map[string]types.AttributeValue
	pager := dynamodb.NewQueryPaginator(api, in)
	for pager.HasMorePages() {
		res, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
	}
	return out, nil
}

func scanAll(ctx context.Context, api API, in *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	var out []map[string]types.AttributeValue
	pager := dynamodb.NewScanPaginator(api, in)
	for pager.HasMorePages() {
		res, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
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
