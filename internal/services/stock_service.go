package services

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/domain"
	"storefront-service/internal/infra/cache"
	"storefront-service/internal/repository"
)

// StockQuery names one product. ProductID wins over Name; Category narrows a
// name lookup to one category.
type StockQuery struct {
	ProductID string
	Name      string
	Category  domain.Category
}

// StockService answers advisory stock questions. Results may be stale as soon
// as they are returned and never reserve anything.
type StockService struct {
	catalog      repository.CatalogRepository
	cache        StockCache
	storeTimeout time.Duration
}

func NewStockService(c repository.CatalogRepository, storeTimeout time.Duration) *StockService {
	return &StockService{catalog: c, storeTimeout: storeTimeout}
}

func (s *StockService) SetStockCache(c StockCache) {
	s.cache = c
}

func (s *StockService) Lookup(ctx context.Context, q StockQuery) (int64, error) {
	q.ProductID = strings.TrimSpace(q.ProductID)
	q.Name = normalizeName(q.Name)
	if q.ProductID == "" && q.Name == "" {
		return 0, domain.Validation("name", "is required")
	}
	if q.Category != "" && !q.Category.Valid() {
		return 0, domain.Validation("category", "unknown category "+string(q.Category))
	}

	key := cache.Key(q.ProductID, q.Name, string(q.Category))
	var gen int64
	if s.cache != nil {
		n, g, ok := s.cache.Get(ctx, key)
		if ok {
			return n, nil
		}
		gen = g
	}

	storeCtx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.resolve(storeCtx, q)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, gen, p.Quantity)
	}
	return p.Quantity, nil
}

func (s *StockService) resolve(ctx context.Context, q StockQuery) (domain.Product, error) {
	if q.ProductID != "" {
		found, err := s.catalog.FindByIDs(ctx, []string{q.ProductID})
		if err != nil {
			return domain.Product{}, storageErr(ctx, err)
		}
		if len(found) == 0 || (q.Category != "" && found[0].Category != q.Category) {
			return domain.Product{}, domain.ProductNotFound(q.ProductID)
		}
		return found[0], nil
	}

	found, err := s.catalog.FindByNames(ctx, []string{q.Name})
	if err != nil {
		return domain.Product{}, storageErr(ctx, err)
	}
	return pickByName(q.Name, found, q.Category)
}
