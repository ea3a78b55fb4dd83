package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/utafrali/searchfeed/pkg/database"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/repository"
)

// visibilitySearch is the minimum visibility level at which a product appears
// in search results (link = 10, search = 20, all = 30).
const visibilitySearch = 20

// CatalogRepository implements repository.CatalogRepository using PostgreSQL.
type CatalogRepository struct {
	db database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(db database.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// buildConditions translates criteria filters into SQL predicates. The
// returned args line up with $1..$n placeholders.
func buildConditions(c repository.Criteria) ([]string, []any) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if c.ExcludeChildren {
		conditions = append(conditions, "p.parent_id IS NULL")
	}

	if c.VisibilityChannelID != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_visibilities v WHERE v.product_id = p.id AND v.sales_channel_id = $%d AND v.visibility >= %d)",
			argIndex, visibilitySearch,
		))
		args = append(args, c.VisibilityChannelID)
		argIndex++
	}

	if c.IdentifierTerm != "" {
		fields := []string{
			fmt.Sprintf("p.product_number = $%d", argIndex),
			fmt.Sprintf("p.ean = $%d", argIndex),
			fmt.Sprintf("p.manufacturer_number = $%d", argIndex),
		}
		args = append(args, c.IdentifierTerm)
		argIndex++

		if c.IdentifierID != "" {
			fields = append(fields, fmt.Sprintf("p.id = $%d", argIndex))
			args = append(args, c.IdentifierID)
			argIndex++
		}

		conditions = append(conditions, "("+strings.Join(fields, " OR ")+")")
	}

	return conditions, args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

// Search returns the ordered page of products matching the criteria with the
// requested associations loaded in batch follow-up queries.
func (r *CatalogRepository) Search(ctx context.Context, c repository.Criteria) ([]domain.Product, error) {
	conditions, args := buildConditions(c)

	query := fmt.Sprintf(`
		SELECT p.id, p.parent_id, p.name, p.product_number, p.ean, p.manufacturer_number, p.attributes, p.created_at, p.updated_at
		FROM products p
		%s
		ORDER BY p.created_at, p.id`,
		whereClause(conditions),
	)

	argIndex := len(args) + 1
	if c.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *c.Limit)
		argIndex++
	}
	if c.Offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *c.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p         domain.Product
			attrsJSON []byte
		)
		if err := rows.Scan(&p.ID, &p.ParentID, &p.Name, &p.ProductNumber, &p.EAN, &p.ManufacturerNumber, &attrsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &p.Attributes); err != nil {
				return nil, fmt.Errorf("unmarshal product attributes: %w", err)
			}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	if err := r.loadAssociations(ctx, products, c.Associations); err != nil {
		return nil, err
	}

	return products, nil
}

// SearchIDs returns matching product IDs plus the total match count in a
// single query, without loading full rows.
func (r *CatalogRepository) SearchIDs(ctx context.Context, c repository.Criteria) (*repository.IDResult, error) {
	conditions, args := buildConditions(c)

	query := fmt.Sprintf(`
		SELECT p.id, count(*) OVER() AS total_count
		FROM products p
		%s
		ORDER BY p.created_at, p.id`,
		whereClause(conditions),
	)

	argIndex := len(args) + 1
	if c.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *c.Limit)
		argIndex++
	}
	if c.Offset != nil {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, *c.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search product ids: %w", err)
	}
	defer rows.Close()

	result := &repository.IDResult{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &result.Total); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		result.IDs = append(result.IDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}

	return result, nil
}

// GetCategory retrieves a single category with its SEO URL candidates.
func (r *CatalogRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	query := `
		SELECT id, parent_id, name
		FROM categories
		WHERE id = $1`

	var cat domain.Category
	if err := r.db.QueryRow(ctx, query, id).Scan(&cat.ID, &cat.ParentID, &cat.Name); err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}

	seoURLs, err := r.loadSeoURLs(ctx, "category", []string{cat.ID})
	if err != nil {
		return nil, err
	}
	cat.SeoURLs = seoURLs[cat.ID]

	return &cat, nil
}

// loadAssociations batch-loads the requested associations for a page of
// products.
func (r *CatalogRepository) loadAssociations(ctx context.Context, products []domain.Product, assocs []repository.Association) error {
	ids := make([]string, len(products))
	index := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	for _, assoc := range assocs {
		switch assoc {
		case repository.AssociationPrices:
			if err := r.loadPrices(ctx, ids, index); err != nil {
				return err
			}
		case repository.AssociationCategories:
			if err := r.loadCategories(ctx, ids, index); err != nil {
				return err
			}
		case repository.AssociationSeoURLs:
			seoURLs, err := r.loadSeoURLs(ctx, "product", ids)
			if err != nil {
				return err
			}
			for id, urls := range seoURLs {
				index[id].SeoURLs = urls
			}
		case repository.AssociationMedia:
			// Media is requested for forward compatibility of the feed; the
			// catalog schema carries no media tables yet.
		}
	}

	return nil
}

func (r *CatalogRepository) loadPrices(ctx context.Context, ids []string, index map[string]*domain.Product) error {
	query := `
		SELECT product_id, customer_group_id, gross, currency
		FROM product_prices
		WHERE product_id = ANY($1)
		ORDER BY product_id, customer_group_id`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			price     domain.Price
		)
		if err := rows.Scan(&productID, &price.CustomerGroupID, &price.Gross, &price.Currency); err != nil {
			return fmt.Errorf("scan price: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Prices = append(p.Prices, price)
		}
	}
	return rows.Err()
}

func (r *CatalogRepository) loadCategories(ctx context.Context, ids []string, index map[string]*domain.Product) error {
	query := `
		SELECT pc.product_id, c.id, c.parent_id, c.name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY pc.product_id, c.id`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID string
			cat       domain.Category
		)
		if err := rows.Scan(&productID, &cat.ID, &cat.ParentID, &cat.Name); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		if p, ok := index[productID]; ok {
			p.Categories = append(p.Categories, cat)
		}
	}
	return rows.Err()
}

func (r *CatalogRepository) loadSeoURLs(ctx context.Context, entityType string, ids []string) (map[string][]domain.SeoURL, error) {
	query := `
		SELECT entity_id, id, language_id, sales_channel_id, path, is_canonical, is_deleted
		FROM seo_urls
		WHERE entity_type = $1 AND entity_id = ANY($2)
		ORDER BY entity_id, id`

	rows, err := r.db.Query(ctx, query, entityType, ids)
	if err != nil {
		return nil, fmt.Errorf("load seo urls: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.SeoURL)
	for rows.Next() {
		var (
			entityID string
			u        domain.SeoURL
		)
		if err := rows.Scan(&entityID, &u.ID, &u.LanguageID, &u.SalesChannelID, &u.Path, &u.IsCanonical, &u.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan seo url: %w", err)
		}
		out[entityID] = append(out[entityID], u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
