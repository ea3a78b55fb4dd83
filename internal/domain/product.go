package domain

import (
	"time"
)

// Product represents a catalog product as loaded from the store, including
// the associations the export pipeline needs (prices, categories, SEO URLs).
// The export pipeline treats products as read-only.
type Product struct {
	ID                 string            `json:"id"`
	ParentID           *string           `json:"parent_id,omitempty"`
	Name               string            `json:"name"`
	ProductNumber      string            `json:"product_number"`
	EAN                string            `json:"ean"`
	ManufacturerNumber string            `json:"manufacturer_number"`
	Attributes         map[string]string `json:"attributes,omitempty"`
	SeoURLs            []SeoURL          `json:"seo_urls,omitempty"`
	Prices             []Price           `json:"prices,omitempty"`
	Categories         []Category        `json:"categories,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// SeoURL is one human-readable URL candidate for an entity, scoped to a
// language and a sales channel. Among several candidates for the same scope,
// at most one should carry the canonical flag; the store does not enforce this.
type SeoURL struct {
	ID             string `json:"id"`
	LanguageID     string `json:"language_id"`
	SalesChannelID string `json:"sales_channel_id"`
	Path           string `json:"path"`
	IsCanonical    bool   `json:"is_canonical"`
	IsDeleted      bool   `json:"is_deleted"`
}

// Price is a product price for one customer group. An empty CustomerGroupID
// means the price applies to the default group.
type Price struct {
	CustomerGroupID string `json:"customer_group_id"`
	Gross           int64  `json:"gross"`
	Currency        string `json:"currency"`
}

// PriceForGroup returns the product price for the given customer group, or
// false if none is set.
func (p *Product) PriceForGroup(groupID string) (Price, bool) {
	for _, price := range p.Prices {
		if price.CustomerGroupID == groupID {
			return price, true
		}
	}
	return Price{}, false
}
