package repository

import (
	"context"

	"github.com/utafrali/searchfeed/internal/domain"
)

// Association names the related data a catalog query should load alongside
// the product rows.
type Association string

// Associations the export pipeline depends on. The repository loads them in
// the same call; callers never re-query for missing associations.
const (
	AssociationPrices     Association = "prices"
	AssociationCategories Association = "categories"
	AssociationSeoURLs    Association = "seo_urls"
	AssociationMedia      Association = "media"
)

// Criteria describes one catalog query: filter predicates, the pagination
// window, and requested associations. A Criteria is built fresh per request
// and treated as immutable once handed to the repository.
type Criteria struct {
	// ExcludeChildren filters out variant products (rows with a parent).
	ExcludeChildren bool

	// VisibilityChannelID, when non-empty, restricts results to products
	// visible for search in the given sales channel.
	VisibilityChannelID string

	// IdentifierTerm matches product number, EAN, and manufacturer number,
	// joined by OR. IdentifierID additionally matches the primary key and is
	// only set when the term is a syntactically valid UUID; the store rejects
	// malformed ids on equality filters.
	IdentifierTerm string
	IdentifierID   string

	// Offset and Limit bound the result window. Nil means the store default
	// (unbounded for single-item fetches).
	Offset *int
	Limit  *int

	Associations []Association
}

// IDResult is the outcome of an ID-only search: the IDs of the requested
// window plus the total match count.
type IDResult struct {
	IDs   []string
	Total int
}

// CatalogRepository provides read access to the persistent catalog.
type CatalogRepository interface {
	// Search returns the ordered page of products matching the criteria,
	// with the requested associations loaded.
	Search(ctx context.Context, c Criteria) ([]domain.Product, error)

	// SearchIDs returns matching product IDs and the total match count
	// without loading full rows.
	SearchIDs(ctx context.Context, c Criteria) (*IDResult, error)

	// GetCategory retrieves a single category with its SEO URL candidates.
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
}

// ChannelRepository provides read access to sales channel configuration.
type ChannelRepository interface {
	// GetByID retrieves a sales channel with its domains.
	GetByID(ctx context.Context, id string) (*domain.SalesChannel, error)

	// GetDefault retrieves the storefront's ambient sales channel.
	GetDefault(ctx context.Context) (*domain.SalesChannel, error)
}

// SettingsStore is the plugin configuration source: per-channel key/value
// settings plus the shopkey binding table. The binding table is read-only
// during an export.
type SettingsStore interface {
	// Get returns the value for key scoped to the given channel, or an empty
	// string if the key is unset.
	Get(ctx context.Context, key, channelID string) (string, error)

	// Set stores a value for key scoped to the given channel.
	Set(ctx context.Context, key, value, channelID string) error

	// ShopkeyBindings returns all configured shopkey to channel bindings.
	ShopkeyBindings(ctx context.Context) ([]domain.ShopkeyBinding, error)

	// BindShopkey maps a shopkey to a channel. A nil channelID binds the
	// shopkey to the ambient channel.
	BindShopkey(ctx context.Context, shopkey string, channelID *string) error
}
