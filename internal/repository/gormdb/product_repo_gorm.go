package gormdb

import (
	"context"
	"log/slog"

	"storefront-service/internal/domain"
	"storefront-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &productRepo{db: db}
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		slog.ErrorContext(ctx, "find products by id failed", slog.Any("err", err))
		return nil, classify(err)
	}
	return out, nil
}

func (r *productRepo) FindByNames(ctx context.Context, names []string) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(names))
	if len(names) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Order("category").Find(&out).Error; err != nil {
		slog.ErrorContext(ctx, "find products by name failed", slog.Any("err", err))
		return nil, classify(err)
	}
	return out, nil
}

func (r *productRepo) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+escapeLike(filter.Search)+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	out := make([]domain.Product, 0, filter.PageSize)
	if err := q.Order("created_at DESC").Order("id").Offset(filter.Offset()).Limit(filter.PageSize).Find(&out).Error; err != nil {
		slog.ErrorContext(ctx, "list products failed", slog.Any("err", err))
		return nil, 0, classify(err)
	}
	return out, total, nil
}
