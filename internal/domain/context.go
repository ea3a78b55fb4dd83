package domain

// SalesChannel is a storefront's sales context: the language it serves, the
// domains it is reachable under, and the top of its browsing hierarchy.
type SalesChannel struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	LanguageID           string   `json:"language_id"`
	NavigationCategoryID string   `json:"navigation_category_id"`
	CustomerGroupIDs     []string `json:"customer_group_ids"`
	Domains              []Domain `json:"domains"`
	IsDefault            bool     `json:"is_default"`
}

// Domain is one public address of a sales channel, bound to a language.
type Domain struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	LanguageID string `json:"language_id"`
}

// ShopkeyBinding maps a tenant shopkey to a sales channel. A nil ChannelID
// binds the shopkey to the ambient (default) channel.
type ShopkeyBinding struct {
	Shopkey   string  `json:"shopkey"`
	ChannelID *string `json:"channel_id,omitempty"`
}

// StorefrontContext is the resolved tenant context for a single export call.
// It is built fresh per invocation and never shared between calls.
type StorefrontContext struct {
	Shopkey    string
	Channel    *SalesChannel
	LanguageID string
}

// DomainForLanguage returns the channel domain matching the context's active
// language, or false if the channel has no domain configured for it.
func (c *StorefrontContext) DomainForLanguage() (Domain, bool) {
	for _, d := range c.Channel.Domains {
		if d.LanguageID == c.LanguageID {
			return d, true
		}
	}
	return Domain{}, false
}
