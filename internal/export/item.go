package export

import (
	"context"
	"log/slog"
	"sort"

	"github.com/utafrali/searchfeed/internal/domain"
)

// ItemBuilder converts catalog products into export items.
type ItemBuilder struct {
	urls       *URLResolver
	linearizer *Linearizer
	logger     *slog.Logger
}

// NewItemBuilder creates an item builder.
func NewItemBuilder(urls *URLResolver, linearizer *Linearizer, logger *slog.Logger) *ItemBuilder {
	return &ItemBuilder{
		urls:       urls,
		linearizer: linearizer,
		logger:     logger,
	}
}

// Build converts one product into an export item. It fails with an *ItemError
// when required data is absent; each failure is independent per product and
// never aborts the surrounding batch. Build does not mutate its inputs.
func (b *ItemBuilder) Build(ctx context.Context, p *domain.Product, sc *domain.StorefrontContext) (*domain.ExportItem, error) {
	if p.ID == "" {
		return nil, newMissingPropertyError(p.ID, "id")
	}
	if len(p.Attributes) == 0 {
		return nil, newItemError(p.ID, KindMissingAttributes)
	}
	if p.Name == "" {
		return nil, newItemError(p.ID, KindMissingName)
	}

	prices := b.groupPrices(p, sc)
	if len(prices) == 0 {
		return nil, newItemError(p.ID, KindMissingPrices)
	}

	if len(p.Categories) == 0 {
		return nil, newItemError(p.ID, KindMissingCategories)
	}

	item := &domain.ExportItem{
		ID:           p.ID,
		Name:         p.Name,
		URL:          b.urls.ProductURL(p, sc),
		CategoryURLs: b.categoryURLs(ctx, p, sc),
		Prices:       prices,
		Attributes:   exportAttributes(p.Attributes),
	}

	return item, nil
}

// groupPrices collects the product's prices for the channel's customer
// groups. An empty group list falls back to the default group.
func (b *ItemBuilder) groupPrices(p *domain.Product, sc *domain.StorefrontContext) []domain.ItemPrice {
	groups := sc.Channel.CustomerGroupIDs
	if len(groups) == 0 {
		groups = []string{""}
	}

	var prices []domain.ItemPrice
	for _, group := range groups {
		price, ok := p.PriceForGroup(group)
		if !ok {
			continue
		}
		prices = append(prices, domain.ItemPrice{
			CustomerGroup: group,
			Gross:         price.Gross,
			Currency:      price.Currency,
		})
	}
	return prices
}

// categoryURLs resolves the URL path list for every category the product is
// assigned to, including ancestors up to the navigation root. A failed
// ancestor walk degrades to the path collected so far.
func (b *ItemBuilder) categoryURLs(ctx context.Context, p *domain.Product, sc *domain.StorefrontContext) []string {
	rootID := sc.Channel.NavigationCategoryID

	var urls []string
	seen := make(map[string]bool)

	appendURLs := func(cat *domain.Category) {
		for _, u := range b.urls.CategoryURLs(cat, sc) {
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}

	for i := range p.Categories {
		cat := &p.Categories[i]
		appendURLs(cat)

		ancestors, err := b.linearizer.Ancestors(ctx, cat, rootID)
		if err != nil {
			b.logger.WarnContext(ctx, "category ancestor walk truncated",
				slog.String("product_id", p.ID),
				slog.String("category_id", cat.ID),
				slog.String("error", err.Error()),
			)
		}
		for j := range ancestors {
			appendURLs(&ancestors[j])
		}
	}

	return urls
}

// exportAttributes converts the attribute map into a deterministically
// ordered attribute list.
func exportAttributes(attrs map[string]string) []domain.ItemAttribute {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.ItemAttribute, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.ItemAttribute{Key: k, Value: attrs[k]})
	}
	return out
}
