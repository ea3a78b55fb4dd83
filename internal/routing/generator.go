package routing

import (
	"strings"

	"github.com/utafrali/searchfeed/internal/export"
)

// Generator builds storefront URLs for the routes the export pipeline needs.
// It stands in for the storefront's routing layer, addressing entities by ID.
type Generator struct {
	baseURL string
}

// NewGenerator creates a route generator rooted at the given storefront base URL.
func NewGenerator(baseURL string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/")}
}

// GenerateAbsoluteURL returns a fully qualified URL for the route.
func (g *Generator) GenerateAbsoluteURL(route string, params map[string]string) string {
	return g.baseURL + g.GenerateAbsolutePath(route, params)
}

// GenerateAbsolutePath returns the path component for the route, with a
// leading slash and no host.
func (g *Generator) GenerateAbsolutePath(route string, params map[string]string) string {
	switch route {
	case export.RouteProductDetail:
		return "/detail/" + params["productId"]
	case export.RouteNavigation:
		return "/navigation/" + params["navigationId"]
	default:
		return "/"
	}
}
