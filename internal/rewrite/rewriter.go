package rewrite

import (
	"context"
	"log/slog"

	"github.com/utafrali/searchfeed/internal/upstream"
)

// SearchClient is the slice of the upstream client the rewriter depends on.
type SearchClient interface {
	Send(ctx context.Context, req *upstream.Request) (*upstream.Response, error)
}

// ResultSet is an ordered storefront search or navigation result.
type ResultSet struct {
	ProductIDs []string `json:"product_ids"`
	Total      int      `json:"total"`
}

// Rewriter replaces a storefront result set with the external search
// service's ranked answer for the same query.
type Rewriter struct {
	client SearchClient
	logger *slog.Logger
}

// NewRewriter creates a result-set rewriter.
func NewRewriter(client SearchClient, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		client: client,
		logger: logger,
	}
}

// Rewrite sends the query upstream and returns a result set ordered by the
// service's ranking. Any upstream failure leaves the original result set in
// place: a storefront answering with its own ranking beats one answering
// with an error.
func (r *Rewriter) Rewrite(ctx context.Context, shopkey, query string, original ResultSet, start, count int) ResultSet {
	resp, err := r.client.Send(ctx, &upstream.Request{
		Shopkey: shopkey,
		Query:   query,
		Start:   start,
		Count:   count,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "search service unavailable, keeping original results",
			slog.String("shopkey", shopkey),
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return original
	}

	ids := make([]string, 0, len(resp.Products))
	for _, p := range resp.Products {
		ids = append(ids, p.ID)
	}

	return ResultSet{ProductIDs: ids, Total: resp.Total}
}
