package domain

// Category represents a node in the catalog's browsing hierarchy.
type Category struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parent_id,omitempty"`
	Name     string   `json:"name"`
	SeoURLs  []SeoURL `json:"seo_urls,omitempty"`
}

// IsRootOf reports whether the category's parent chain ends here relative to
// the given navigation root: true when the category has no parent or its
// parent is the root itself.
func (c *Category) IsRootOf(rootID string) bool {
	return c.ParentID == nil || *c.ParentID == rootID
}
