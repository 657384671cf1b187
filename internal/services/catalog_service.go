package services

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

const DefaultLatestPerCategory = 2

// CategoryProducts is the newest products of one category.
type CategoryProducts struct {
	Category domain.Category
	Products []domain.Product
}

type CatalogService struct {
	catalog      repository.CatalogRepository
	storeTimeout time.Duration
}

func NewCatalogService(c repository.CatalogRepository, storeTimeout time.Duration) *CatalogService {
	return &CatalogService{catalog: c, storeTimeout: storeTimeout}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) (Page[domain.Product], error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return Page[domain.Product]{}, domain.Validation("category", "unknown category "+string(filter.Category))
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize)

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	products, total, err := s.catalog.ListProducts(storeCtx, filter)
	if err != nil {
		return Page[domain.Product]{}, storageErr(storeCtx, err)
	}
	return Page[domain.Product]{Items: products, Page: filter.Page, PageSize: filter.PageSize, Total: total}, nil
}

// Latest returns the newest perCategory products of every category, in
// storefront display order. Categories are read concurrently.
func (s *CatalogService) Latest(ctx context.Context, perCategory int) ([]CategoryProducts, error) {
	if perCategory < 1 {
		perCategory = DefaultLatestPerCategory
	}
	if perCategory > MaxPageSize {
		perCategory = MaxPageSize
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	out := make([]CategoryProducts, len(domain.Categories))
	g, gctx := errgroup.WithContext(storeCtx)
	for i, cat := range domain.Categories {
		i, cat := i, cat
		g.Go(func() error {
			products, _, err := s.catalog.ListProducts(gctx, domain.ProductFilter{Category: cat, Page: 1, PageSize: perCategory})
			if err != nil {
				return err
			}
			out[i] = CategoryProducts{Category: cat, Products: products}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storageErr(storeCtx, err)
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	found, err := s.catalog.FindByIDs(storeCtx, []string{id})
	if err != nil {
		return nil, storageErr(storeCtx, err)
	}
	if len(found) == 0 {
		return nil, domain.ProductNotFound(id)
	}
	return &found[0], nil
}
