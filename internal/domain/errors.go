package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindValidation         ErrorKind = "Validation"
	KindProductNotFound    ErrorKind = "ProductNotFound"
	KindAmbiguousProduct   ErrorKind = "AmbiguousProduct"
	KindInsufficientStock  ErrorKind = "InsufficientStock"
	KindTotalMismatch      ErrorKind = "TotalMismatch"
	KindStorageUnavailable ErrorKind = "StorageUnavailable"
	KindOrderNotFound      ErrorKind = "OrderNotFound"
	KindInvalidTransition  ErrorKind = "InvalidTransition"
)

// OrderError is the tagged failure returned by the order and stock operations.
// Only the fields relevant to Kind are set.
type OrderError struct {
	Kind       ErrorKind
	Product    string
	Available  int64
	Requested  int64
	Categories []Category
	Field      string
	Detail     string
	Err        error
}

// Sentinels for errors.Is; matching compares Kind only.
var (
	ErrValidation         = &OrderError{Kind: KindValidation}
	ErrProductNotFound    = &OrderError{Kind: KindProductNotFound}
	ErrAmbiguousProduct   = &OrderError{Kind: KindAmbiguousProduct}
	ErrInsufficientStock  = &OrderError{Kind: KindInsufficientStock}
	ErrTotalMismatch      = &OrderError{Kind: KindTotalMismatch}
	ErrStorageUnavailable = &OrderError{Kind: KindStorageUnavailable}
	ErrOrderNotFound      = &OrderError{Kind: KindOrderNotFound}
	ErrInvalidTransition  = &OrderError{Kind: KindInvalidTransition}
)

func (e *OrderError) Error() string {
	switch e.Kind {
	case KindValidation:
		if e.Field != "" {
			return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
		}
		return e.Detail
	case KindProductNotFound:
		return "Product not found: " + e.Product
	case KindAmbiguousProduct:
		cats := make([]string, 0, len(e.Categories))
		for _, c := range e.Categories {
			cats = append(cats, string(c))
		}
		return fmt.Sprintf("Product name is ambiguous: %s (found in %s)", e.Product, strings.Join(cats, ", "))
	case KindInsufficientStock:
		return fmt.Sprintf("Product %q is out of stock: available %d, requested %d", e.Product, e.Available, e.Requested)
	case KindTotalMismatch:
		return "order total does not match item prices: " + e.Detail
	case KindStorageUnavailable:
		if e.Err != nil {
			return "storage unavailable: " + e.Err.Error()
		}
		return "storage unavailable"
	case KindOrderNotFound:
		return "order not found: " + e.Detail
	case KindInvalidTransition:
		return "invalid status transition: " + e.Detail
	}
	return string(e.Kind)
}

func (e *OrderError) Unwrap() error { return e.Err }

func (e *OrderError) Is(target error) bool {
	t, ok := target.(*OrderError)
	return ok && t.Kind == e.Kind
}

// Retryable reports whether the caller may resubmit the same request unchanged.
func (e *OrderError) Retryable() bool { return e.Kind == KindStorageUnavailable }

func Validation(field, detail string) *OrderError {
	return &OrderError{Kind: KindValidation, Field: field, Detail: detail}
}

func ProductNotFound(name string) *OrderError {
	return &OrderError{Kind: KindProductNotFound, Product: name}
}

func AmbiguousProduct(name string, categories []Category) *OrderError {
	return &OrderError{Kind: KindAmbiguousProduct, Product: name, Categories: categories}
}

func InsufficientStock(name string, available, requested int64) *OrderError {
	return &OrderError{Kind: KindInsufficientStock, Product: name, Available: available, Requested: requested}
}

func TotalMismatch(detail string) *OrderError {
	return &OrderError{Kind: KindTotalMismatch, Detail: detail}
}

func StorageUnavailable(err error) *OrderError {
	return &OrderError{Kind: KindStorageUnavailable, Err: err}
}

func OrderNotFound(id string) *OrderError {
	return &OrderError{Kind: KindOrderNotFound, Detail: id}
}

func InvalidTransition(from, to OrderStatus) *OrderError {
	return &OrderError{Kind: KindInvalidTransition, Detail: fmt.Sprintf("%s -> %s", from, to)}
}

// AsOrderError unwraps err into an *OrderError when it carries one.
func AsOrderError(err error) (*OrderError, bool) {
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}
