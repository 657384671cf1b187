package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/internal/domain"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	MaxCartLines    = 50
)

// StockCache is the best-effort stock hint store. Implementations swallow
// their own failures. Get reports the key's generation on a miss; Set only
// fills when no Invalidate has bumped it since.
type StockCache interface {
	Get(ctx context.Context, key string) (quantity, gen int64, ok bool)
	Set(ctx context.Context, key string, gen, quantity int64)
	Invalidate(ctx context.Context, keys ...string)
}

type EventDispatcher interface {
	Dispatch(routingKey string, data any)
}

// Page is one page of a listing.
type Page[T any] struct {
	Items    []T
	Page     int
	PageSize int
	Total    int64
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PageSize) - 1) / int64(p.PageSize))
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// withStoreTimeout bounds a storage round trip. A zero timeout leaves ctx as is.
func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// storageErr keeps domain errors and turns an expired or cancelled context
// into StorageUnavailable, whatever the driver reported.
func storageErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsOrderError(err); ok {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.StorageUnavailable(fmt.Errorf("%w: %v", ctxErr, err))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.StorageUnavailable(err)
	}
	return err
}
