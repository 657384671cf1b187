package repository

import (
	"context"

	"storefront-service/internal/domain"
)

// CatalogRepository reads the products collection. Lookups by name return every
// product carrying one of the names, across all categories, so callers can detect
// ambiguity. Missing ids are omitted rather than reported.
type CatalogRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	FindByNames(ctx context.Context, names []string) ([]domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
}
