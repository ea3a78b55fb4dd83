package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/utafrali/searchfeed/pkg/errors"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/repository"
)

// User-facing messages for targeted exports that yield no feed item.
const (
	MsgProductNotFound  = "No product could be found for the given id."
	msgProductNotSearch = "Product with id %q exists but is not available for search."
)

// Result is the outcome of one export call: either a feed or a list of
// user-facing error strings, never both.
type Result struct {
	Feed   *domain.ExportFeed
	Errors []string
}

// Failed reports whether the export produced an error payload instead of a
// feed.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// Exporter drives the export pipeline: shopkey resolution, total count, page
// fetch, item building, and the serialization decision.
type Exporter struct {
	catalog  repository.CatalogRepository
	channels repository.ChannelRepository
	settings repository.SettingsStore
	items    *ItemBuilder
	logger   *slog.Logger
}

// NewExporter creates an export orchestrator.
func NewExporter(
	catalog repository.CatalogRepository,
	channels repository.ChannelRepository,
	settings repository.SettingsStore,
	items *ItemBuilder,
	logger *slog.Logger,
) *Exporter {
	return &Exporter{
		catalog:  catalog,
		channels: channels,
		settings: settings,
		items:    items,
		logger:   logger,
	}
}

// Export runs one export call. The returned error is terminal (unknown
// shopkey, storage failure) and means no partial output was produced;
// recovered per-item failures surface through Result.Errors instead.
func (e *Exporter) Export(ctx context.Context, req *domain.ExportRequest) (*Result, error) {
	start := time.Now()

	result, err := e.export(ctx, req)
	exportDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		exportsTotal.WithLabelValues("error").Inc()
	case result.Failed():
		exportsTotal.WithLabelValues("rejected").Inc()
	default:
		exportsTotal.WithLabelValues("ok").Inc()
		exportItemsTotal.Add(float64(result.Feed.PageCount))
	}

	return result, err
}

func (e *Exporter) export(ctx context.Context, req *domain.ExportRequest) (*Result, error) {
	sc, err := e.ResolveContext(ctx, req.Shopkey)
	if err != nil {
		return nil, err
	}

	total, err := e.countProducts(ctx, sc, req.ProductID)
	if err != nil {
		return nil, err
	}

	products, userErrors, err := e.fetchPage(ctx, sc, req)
	if err != nil {
		return nil, err
	}

	items, itemErrors := e.buildItems(ctx, products, sc, req.ProductID != "")
	userErrors = append(userErrors, itemErrors...)

	if len(userErrors) > 0 {
		return &Result{Errors: userErrors}, nil
	}

	e.logger.InfoContext(ctx, "feed exported",
		slog.String("shopkey", req.Shopkey),
		slog.Int("start", req.Start),
		slog.Int("page_count", len(items)),
		slog.Int("total_count", total),
	)

	return &Result{Feed: domain.NewExportFeed(req.Start, total, items)}, nil
}

// ResolveContext maps a shopkey to a storefront context by scanning the
// configured bindings; the first matching binding wins. A binding without a
// channel resolves to the ambient (default) channel. No match is terminal.
func (e *Exporter) ResolveContext(ctx context.Context, shopkey string) (*domain.StorefrontContext, error) {
	bindings, err := e.settings.ShopkeyBindings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shopkey bindings: %w", err)
	}

	for _, b := range bindings {
		if b.Shopkey != shopkey {
			continue
		}

		var channel *domain.SalesChannel
		if b.ChannelID == nil {
			channel, err = e.channels.GetDefault(ctx)
		} else {
			channel, err = e.channels.GetByID(ctx, *b.ChannelID)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve channel for shopkey: %w", err)
		}

		return &domain.StorefrontContext{
			Shopkey:    shopkey,
			Channel:    channel,
			LanguageID: channel.LanguageID,
		}, nil
	}

	return nil, apperrors.UnknownShopkey(shopkey)
}

// countProducts asks the repository for the total match count only, without
// loading rows and without a pagination window.
func (e *Exporter) countProducts(ctx context.Context, sc *domain.StorefrontContext, productID string) (int, error) {
	criteria := BuildCriteria(CriteriaOptions{
		ProductID:         productID,
		ChannelID:         sc.Channel.ID,
		RequireVisibility: true,
	})

	ids, err := e.catalog.SearchIDs(ctx, criteria)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return ids.Total, nil
}

// fetchPage loads the requested page. For a targeted product that yields an
// empty page, it retries once without the visibility filter to distinguish
// "exists but filtered out" from "does not exist"; either way the outcome is
// a recorded user error, not a hard failure.
func (e *Exporter) fetchPage(ctx context.Context, sc *domain.StorefrontContext, req *domain.ExportRequest) ([]domain.Product, []string, error) {
	criteria := BuildCriteria(CriteriaOptions{
		Offset:            &req.Start,
		Limit:             &req.Count,
		ProductID:         req.ProductID,
		ChannelID:         sc.Channel.ID,
		RequireVisibility: true,
	})

	products, err := e.catalog.Search(ctx, criteria)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product page: %w", err)
	}

	if len(products) > 0 || req.ProductID == "" {
		return products, nil, nil
	}

	// Targeted product missing from the visible set: check whether it exists
	// at all.
	relaxed := BuildCriteria(CriteriaOptions{
		Offset:    &req.Start,
		Limit:     &req.Count,
		ProductID: req.ProductID,
		ChannelID: sc.Channel.ID,
	})

	hidden, err := e.catalog.Search(ctx, relaxed)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch product page without visibility: %w", err)
	}

	if len(hidden) > 0 {
		return nil, []string{fmt.Sprintf(msgProductNotSearch, req.ProductID)}, nil
	}
	return nil, []string{MsgProductNotFound}, nil
}

// buildItems invokes the item builder per product, de-duplicating by product
// ID while preserving repository order. A validation failure is logged and
// skipped; it becomes a user error only when the export targeted a specific
// product or when every product on the page failed.
func (e *Exporter) buildItems(ctx context.Context, products []domain.Product, sc *domain.StorefrontContext, targeted bool) ([]domain.ExportItem, []string) {
	var (
		items    []domain.ExportItem
		failures []string
	)

	seen := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		item, err := e.items.Build(ctx, p, sc)
		if err != nil {
			itemErr, ok := AsItemError(err)
			if !ok {
				itemErr = newMissingPropertyError(p.ID, "unknown")
			}
			exportItemErrorsTotal.WithLabelValues(string(itemErr.Kind)).Inc()

			e.logger.WarnContext(ctx, "product excluded from feed",
				slog.String("product_id", p.ID),
				slog.String("kind", string(itemErr.Kind)),
				slog.String("error", itemErr.Message),
			)

			failures = append(failures, itemErr.Error())
			continue
		}

		items = append(items, *item)
	}

	if targeted && len(failures) > 0 {
		return nil, failures
	}

	// A page where every product failed validation is surfaced to the caller
	// rather than silently serialized as an empty feed.
	if len(products) > 0 && len(items) == 0 {
		return nil, failures
	}

	return items, nil
}
