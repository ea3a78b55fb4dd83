package export

import (
	"net/url"
	"strings"

	"github.com/utafrali/searchfeed/internal/domain"
)

// Storefront route names used for non-SEO fallback links.
const (
	RouteProductDetail = "frontend.detail.page"
	RouteNavigation    = "frontend.navigation.page"
)

// RouteGenerator builds storefront URLs for named routes. It stands in for
// the host's routing layer.
type RouteGenerator interface {
	// GenerateAbsoluteURL returns a fully qualified URL for the route.
	GenerateAbsoluteURL(route string, params map[string]string) string

	// GenerateAbsolutePath returns the path component for the route, with a
	// leading slash and no host.
	GenerateAbsolutePath(route string, params map[string]string) string
}

// URLResolver computes the public URLs exported for products and categories.
type URLResolver struct {
	routes RouteGenerator
}

// NewURLResolver creates a URL resolver backed by the given route generator.
func NewURLResolver(routes RouteGenerator) *URLResolver {
	return &URLResolver{routes: routes}
}

// ProductURL returns the single public URL to export for a product. It never
// fails: if no SEO candidate survives the locale/channel filters, or the
// channel has no domain for the active language, it falls back to the
// generated detail route addressed by product ID.
func (r *URLResolver) ProductURL(p *domain.Product, sc *domain.StorefrontContext) string {
	seo := pickSeoURL(p.SeoURLs, sc)
	if seo == nil {
		return r.routes.GenerateAbsoluteURL(RouteProductDetail, map[string]string{"productId": p.ID})
	}

	dom, ok := sc.DomainForLanguage()
	if !ok {
		return r.routes.GenerateAbsoluteURL(RouteProductDetail, map[string]string{"productId": p.ID})
	}

	return joinURL(dom.URL, seo.Path)
}

// CategoryURLs returns the exported URL paths for a single category: the
// non-SEO navigation path (always present) followed by every SEO path scoped
// to the active language and channel. Each path is prefixed with the path
// component of the channel domain, if any. It never fails; a category with no
// SEO candidates still contributes its navigation path.
func (r *URLResolver) CategoryURLs(c *domain.Category, sc *domain.StorefrontContext) []string {
	prefix := channelPathPrefix(sc)

	urls := []string{
		prefix + r.routes.GenerateAbsolutePath(RouteNavigation, map[string]string{"navigationId": c.ID}),
	}

	for _, seo := range c.SeoURLs {
		if seo.LanguageID != sc.LanguageID || seo.IsDeleted {
			continue
		}
		if seo.SalesChannelID != "" && seo.SalesChannelID != sc.Channel.ID {
			continue
		}
		urls = append(urls, prefix+"/"+strings.TrimLeft(seo.Path, "/"))
	}

	return urls
}

// pickSeoURL applies the fallback chain over a product's SEO candidates:
// keep language matches, then channel matches that are not soft-deleted,
// then prefer the canonical flag, else the first remaining. When several
// candidates are flagged canonical the first by collection order wins; the
// store does not define a secondary sort key for that case.
func pickSeoURL(candidates []domain.SeoURL, sc *domain.StorefrontContext) *domain.SeoURL {
	var remaining []domain.SeoURL
	for _, u := range candidates {
		if u.LanguageID != sc.LanguageID {
			continue
		}
		if u.SalesChannelID != sc.Channel.ID || u.IsDeleted {
			continue
		}
		remaining = append(remaining, u)
	}

	if len(remaining) == 0 {
		return nil
	}

	for i := range remaining {
		if remaining[i].IsCanonical {
			return &remaining[i]
		}
	}
	return &remaining[0]
}

// joinURL composes domain + "/" + path with no double slash and no leading
// slash on the path component.
func joinURL(domainURL, path string) string {
	return strings.TrimRight(domainURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// channelPathPrefix extracts the path component of the channel domain for the
// active language, e.g. "/de" for "https://shop.example.com/de". Returns an
// empty string when the domain has no path or none is configured.
func channelPathPrefix(sc *domain.StorefrontContext) string {
	dom, ok := sc.DomainForLanguage()
	if !ok {
		return ""
	}

	parsed, err := url.Parse(dom.URL)
	if err != nil {
		return ""
	}

	return strings.TrimRight(parsed.Path, "/")
}
