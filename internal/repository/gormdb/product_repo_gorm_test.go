package gormdb

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{"id", "name", "category", "quantity", "price", "image_url", "created_at", "updated_at"}

func TestProductRepo_FindByNames_ReturnsEveryCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT \\* FROM `products` WHERE name IN \\(\\?,\\?\\) ORDER BY category").
		WithArgs("Classic", "Ring").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("p1", "Classic", "caps", 4, "1500.00", "", now, now).
			AddRow("p2", "Classic", "shoes", 1, "9000.00", "", now, now))

	products, err := repo.FindByNames(context.Background(), []string{"Classic", "Ring"})

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.CategoryCaps, products[0].Category)
	assert.Equal(t, int64(4), products[0].Quantity)
	assert.Equal(t, "1500", products[0].Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_FindByNames_EmptyInputSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	products, err := repo.FindByNames(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_FindByIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT \\* FROM `products` WHERE id IN \\(\\?\\)").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow("p1", "Cap A", "caps", 2, "20.00", "", now, now))

	products, err := repo.FindByIDs(context.Background(), []string{"p1"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cap A", products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_ListProducts_FiltersAndPages(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `products` WHERE category = \\? AND LOWER\\(name\\) LIKE \\?").
		WithArgs("caps", "%50\\%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))
	mock.ExpectQuery("SELECT \\* FROM `products` WHERE .* ORDER BY created_at DESC,id LIMIT \\? OFFSET \\?").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow("p13", "50% Cap", "caps", 1, "10.00", "", now, now))

	products, total, err := repo.ListProducts(context.Background(), domain.ProductFilter{
		Category: domain.CategoryCaps,
		Search:   " 50% ",
		Page:     2,
		PageSize: 12,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, escapeLike(` 100%_OFF\ `))
}
