package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCaps           Category = "caps"
	CategoryTrousers       Category = "trousers"
	CategoryJewelries      Category = "jewelries"
	CategoryShoes          Category = "shoes"
	CategoryShirtsAndPolos Category = "shirts_and_polos"
)

// Categories is the fixed category set in storefront display order.
var Categories = []Category{
	CategoryShirtsAndPolos,
	CategoryTrousers,
	CategoryCaps,
	CategoryJewelries,
	CategoryShoes,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID        string          `json:"id" gorm:"primaryKey;size:36"`
	Name      string          `json:"name" gorm:"size:191;not null;index;uniqueIndex:idx_products_category_name,priority:2"`
	Category  Category        `json:"category" gorm:"size:32;not null;uniqueIndex:idx_products_category_name,priority:1"`
	Quantity  int64           `json:"quantity" gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	ImageURL  string          `json:"imageUrl,omitempty" gorm:"size:512"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

type ProductFilter struct {
	Category Category
	Search   string
	Page     int
	PageSize int
}

// Offset returns the row offset of the filter's page, pages start at 1.
func (f ProductFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// CartLine is one entry of a client cart. ProductID wins over Name when both are set.
type CartLine struct {
	ProductID string
	Name      string
	Quantity  int64
}

// Label names the line in error messages.
func (l CartLine) Label() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ProductID
}

// Reservation is a conditional stock decrement applied while placing an order.
// Line is the position of the cart line it came from; stores that reorder
// reservations report the failure with the lowest Line.
type Reservation struct {
	ProductID string
	Name      string
	Quantity  int64
	Line      int
}
