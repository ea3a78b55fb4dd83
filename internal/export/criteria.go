package export

import (
	"github.com/google/uuid"

	"github.com/utafrali/searchfeed/internal/repository"
)

// CriteriaOptions holds the export parameters a catalog query is built from.
type CriteriaOptions struct {
	// Offset and Limit bound the page. Nil leaves the window unset.
	Offset *int
	Limit  *int

	// ProductID, when non-empty, narrows the query to a single product
	// identified by UUID, EAN, manufacturer number, or product number.
	ProductID string

	// ChannelID scopes the visibility filter when RequireVisibility is set.
	ChannelID string

	// RequireVisibility restricts results to products visible for search in
	// the channel.
	RequireVisibility bool
}

// exportAssociations is the fixed association set every export query loads.
var exportAssociations = []repository.Association{
	repository.AssociationPrices,
	repository.AssociationCategories,
	repository.AssociationSeoURLs,
	repository.AssociationMedia,
}

// BuildCriteria constructs the catalog query for one export call. Variant
// products are always excluded. The identifier term is matched across product
// number, EAN, and manufacturer number; an exact-id match is added only for
// syntactically valid UUIDs, since the store rejects malformed ids.
func BuildCriteria(opts CriteriaOptions) repository.Criteria {
	c := repository.Criteria{
		ExcludeChildren: true,
		Offset:          opts.Offset,
		Limit:           opts.Limit,
		Associations:    exportAssociations,
	}

	if opts.RequireVisibility {
		c.VisibilityChannelID = opts.ChannelID
	}

	if opts.ProductID != "" {
		c.IdentifierTerm = opts.ProductID
		if _, err := uuid.Parse(opts.ProductID); err == nil {
			c.IdentifierID = opts.ProductID
		}
	}

	return c
}
