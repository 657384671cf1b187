package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, true},
		{StatusShipped, StatusShipped, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus(" shipped ")
	assert.True(t, ok)
	assert.Equal(t, StatusShipped, st)

	_, ok = ParseOrderStatus("lost")
	assert.False(t, ok)
}

func TestComputeTotal(t *testing.T) {
	items := []OrderItem{
		{ProductName: "Cap A", Quantity: 2, UnitPriceAtOrder: decimal.RequireFromString("1500.50")},
		{ProductName: "Ring", Quantity: 1, UnitPriceAtOrder: decimal.RequireFromString("99.99")},
	}

	assert.True(t, decimal.RequireFromString("3100.99").Equal(ComputeTotal(items)))
	assert.True(t, decimal.Zero.Equal(ComputeTotal(nil)))
}

func TestCategory_Valid(t *testing.T) {
	assert.True(t, CategoryShirtsAndPolos.Valid())
	assert.False(t, Category("hats").Valid())
}

func TestOrderError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("place order: %w", InsufficientStock("Cap A", 0, 1))

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrProductNotFound))

	oe, ok := AsOrderError(err)
	assert.True(t, ok)
	assert.Equal(t, "Cap A", oe.Product)
	assert.Equal(t, int64(0), oe.Available)
	assert.Equal(t, int64(1), oe.Requested)
}

func TestOrderError_Messages(t *testing.T) {
	assert.Equal(t, "Product not found: Nonexistent Item", ProductNotFound("Nonexistent Item").Error())
	assert.Equal(t, `Product "Cap A" is out of stock: available 0, requested 1`, InsufficientStock("Cap A", 0, 1).Error())
	assert.Equal(t, "Product name is ambiguous: Classic (found in caps, shoes)",
		AmbiguousProduct("Classic", []Category{CategoryCaps, CategoryShoes}).Error())
	assert.Equal(t, "invalid email: is required", Validation("email", "is required").Error())

	cause := errors.New("i/o timeout")
	su := StorageUnavailable(cause)
	assert.True(t, su.Retryable())
	assert.ErrorIs(t, su, cause)
}
