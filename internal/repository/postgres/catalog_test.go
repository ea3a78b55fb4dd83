package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/searchfeed/pkg/database"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func intPtr(n int) *int { return &n }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var productColumns = []string{
	"id", "parent_id", "name", "product_number", "ean", "manufacturer_number",
	"attributes", "created_at", "updated_at",
}

func sampleProduct(id string) domain.Product {
	return domain.Product{
		ID:                 id,
		Name:               "Widget " + id,
		ProductNumber:      "SW-" + id,
		EAN:                "4006381333931",
		ManufacturerNumber: "MF-" + id,
		Attributes:         map[string]string{"color": "blue"},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func productRow(p domain.Product) []any {
	attrsJSON, _ := json.Marshal(p.Attributes)
	return []any{
		p.ID, p.ParentID, p.Name, p.ProductNumber, p.EAN, p.ManufacturerNumber,
		attrsJSON, p.CreatedAt, p.UpdatedAt,
	}
}

func TestCatalogRepository_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("page query with associations", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		p1 := sampleProduct("p1")
		p2 := sampleProduct("p2")

		mock.ExpectQuery(`SELECT p.id, p.parent_id, p.name, p.product_number`).
			WithArgs("channel-1", 20, 0).
			WillReturnRows(pgxmock.NewRows(productColumns).
				AddRow(productRow(p1)...).
				AddRow(productRow(p2)...))

		mock.ExpectQuery(`FROM product_prices`).
			WithArgs([]string{"p1", "p2"}).
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "customer_group_id", "gross", "currency"}).
				AddRow("p1", "", int64(1999), "EUR").
				AddRow("p2", "vip", int64(1499), "EUR"))

		mock.ExpectQuery(`FROM product_categories pc`).
			WithArgs([]string{"p1", "p2"}).
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "id", "parent_id", "name"}).
				AddRow("p1", "cat-1", nil, "Widgets"))

		mock.ExpectQuery(`FROM seo_urls`).
			WithArgs("product", []string{"p1", "p2"}).
			WillReturnRows(pgxmock.NewRows([]string{"entity_id", "id", "language_id", "sales_channel_id", "path", "is_canonical", "is_deleted"}).
				AddRow("p1", "seo-1", "lang-en", "channel-1", "Widget-P1/", true, false))

		products, err := repo.Search(ctx, repository.Criteria{
			ExcludeChildren:     true,
			VisibilityChannelID: "channel-1",
			Limit:               intPtr(20),
			Offset:              intPtr(0),
			Associations: []repository.Association{
				repository.AssociationPrices,
				repository.AssociationCategories,
				repository.AssociationSeoURLs,
				repository.AssociationMedia,
			},
		})

		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "p1", products[0].ID)
		assert.Equal(t, map[string]string{"color": "blue"}, products[0].Attributes)
		require.Len(t, products[0].Prices, 1)
		assert.Equal(t, int64(1999), products[0].Prices[0].Gross)
		require.Len(t, products[0].Categories, 1)
		assert.Equal(t, "cat-1", products[0].Categories[0].ID)
		require.Len(t, products[0].SeoURLs, 1)
		assert.True(t, products[0].SeoURLs[0].IsCanonical)

		require.Len(t, products[1].Prices, 1)
		assert.Equal(t, "vip", products[1].Prices[0].CustomerGroupID)
		assert.Empty(t, products[1].Categories)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("identifier term with uuid match", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		id := "01902f3e-4b7a-7c33-aa45-9f2e1d6b8c01"
		mock.ExpectQuery(`SELECT p.id, p.parent_id, p.name, p.product_number`).
			WithArgs(id, id).
			WillReturnRows(pgxmock.NewRows(productColumns))

		products, err := repo.Search(ctx, repository.Criteria{
			ExcludeChildren: true,
			IdentifierTerm:  id,
			IdentifierID:    id,
		})

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty page skips association loads", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		mock.ExpectQuery(`SELECT p.id, p.parent_id, p.name, p.product_number`).
			WillReturnRows(pgxmock.NewRows(productColumns))

		products, err := repo.Search(ctx, repository.Criteria{
			ExcludeChildren: true,
			Associations:    []repository.Association{repository.AssociationPrices},
		})

		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error propagates", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		mock.ExpectQuery(`SELECT p.id, p.parent_id, p.name, p.product_number`).
			WillReturnError(assert.AnError)

		_, err := repo.Search(ctx, repository.Criteria{ExcludeChildren: true})
		assert.Error(t, err)
	})
}

func TestCatalogRepository_SearchIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("ids with total count", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		mock.ExpectQuery(`count\(\*\) OVER\(\) AS total_count`).
			WithArgs("channel-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "total_count"}).
				AddRow("p1", 42).
				AddRow("p2", 42))

		result, err := repo.SearchIDs(ctx, repository.Criteria{
			ExcludeChildren:     true,
			VisibilityChannelID: "channel-1",
		})

		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, result.IDs)
		assert.Equal(t, 42, result.Total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matches", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		mock.ExpectQuery(`count\(\*\) OVER\(\) AS total_count`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "total_count"}))

		result, err := repo.SearchIDs(ctx, repository.Criteria{ExcludeChildren: true})

		require.NoError(t, err)
		assert.Empty(t, result.IDs)
		assert.Zero(t, result.Total)
	})
}

func TestCatalogRepository_GetCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("category with seo urls", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		parentID := "root-cat"
		mock.ExpectQuery(`FROM categories`).
			WithArgs("cat-1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "parent_id", "name"}).
				AddRow("cat-1", &parentID, "Widgets"))

		mock.ExpectQuery(`FROM seo_urls`).
			WithArgs("category", []string{"cat-1"}).
			WillReturnRows(pgxmock.NewRows([]string{"entity_id", "id", "language_id", "sales_channel_id", "path", "is_canonical", "is_deleted"}).
				AddRow("cat-1", "seo-1", "lang-en", "channel-1", "Widgets/", false, false))

		cat, err := repo.GetCategory(ctx, "cat-1")

		require.NoError(t, err)
		assert.Equal(t, "cat-1", cat.ID)
		require.NotNil(t, cat.ParentID)
		assert.Equal(t, "root-cat", *cat.ParentID)
		require.Len(t, cat.SeoURLs, 1)
		assert.Equal(t, "Widgets/", cat.SeoURLs[0].Path)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing category fails", func(t *testing.T) {
		mock := newMock(t)
		defer mock.Close()
		repo := NewCatalogRepository(mock)

		mock.ExpectQuery(`FROM categories`).
			WithArgs("missing").
			WillReturnError(assert.AnError)

		_, err := repo.GetCategory(ctx, "missing")
		assert.Error(t, err)
	})
}
