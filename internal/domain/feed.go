package domain

import (
	"encoding/xml"
)

// Export request defaults.
const (
	DefaultExportStart = 0
	DefaultExportCount = 20
)

// ExportRequest carries the parameters of one export call.
type ExportRequest struct {
	Shopkey   string `json:"shopkey"`
	Start     int    `json:"start"`
	Count     int    `json:"count"`
	ProductID string `json:"product_id,omitempty"`
}

// ExportItem is the feed representation of one product. Items are immutable
// once built.
type ExportItem struct {
	XMLName      xml.Name        `xml:"item" json:"-"`
	ID           string          `xml:"id,attr" json:"id"`
	Name         string          `xml:"name" json:"name"`
	URL          string          `xml:"url" json:"url"`
	CategoryURLs []string        `xml:"categoryUrls>url" json:"category_urls"`
	Prices       []ItemPrice     `xml:"prices>price" json:"prices"`
	Attributes   []ItemAttribute `xml:"attributes>attribute" json:"attributes"`
}

// ItemPrice is one exported price, tagged by customer group.
type ItemPrice struct {
	CustomerGroup string `xml:"group,attr" json:"customer_group"`
	Gross         int64  `xml:"value,attr" json:"gross"`
	Currency      string `xml:"currency,attr" json:"currency"`
}

// ItemAttribute is one exported product attribute.
type ItemAttribute struct {
	Key   string `xml:"key,attr" json:"key"`
	Value string `xml:"value,attr" json:"value"`
}

// ExportFeed is the paginated export payload. Item order matches the order
// returned by the catalog repository; the pipeline never re-sorts it.
type ExportFeed struct {
	XMLName    xml.Name     `xml:"feed" json:"-"`
	Start      int          `xml:"start,attr" json:"start"`
	PageCount  int          `xml:"count,attr" json:"page_count"`
	TotalCount int          `xml:"total,attr" json:"total_count"`
	Items      []ExportItem `xml:"items>item" json:"items"`
}

// NewExportFeed builds a feed envelope for the given page. PageCount is
// always derived from the item slice, never passed in.
func NewExportFeed(start, total int, items []ExportItem) *ExportFeed {
	if items == nil {
		items = []ExportItem{}
	}
	return &ExportFeed{
		Start:      start,
		PageCount:  len(items),
		TotalCount: total,
		Items:      items,
	}
}
