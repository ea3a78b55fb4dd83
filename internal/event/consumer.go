package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/utafrali/searchfeed/pkg/kafka"

	"github.com/utafrali/searchfeed/internal/domain"
	"github.com/utafrali/searchfeed/internal/export"
	"github.com/utafrali/searchfeed/internal/repository"
)

// Kafka topics carrying catalog change events.
const (
	TopicProductUpdated = "catalog.product.updated"
	TopicProductDeleted = "catalog.product.deleted"
)

// productEventData is the payload shape shared by catalog product events.
type productEventData struct {
	ID string `json:"id"`
}

// Pusher uploads single-product changes to the external search service.
type Pusher interface {
	PushUpdate(ctx context.Context, shopkey string, item *domain.ExportItem) error
	PushDelete(ctx context.Context, shopkey, productID string) error
}

// Consumer reacts to catalog change events by re-exporting the affected
// product and pushing the result to the search service for every bound
// shopkey. Push failures are logged and never fail the event: the next full
// feed export will reconcile.
type Consumer struct {
	exporter *export.Exporter
	settings repository.SettingsStore
	pusher   Pusher
	logger   *slog.Logger
}

// NewConsumer creates a catalog change event consumer.
func NewConsumer(exporter *export.Exporter, settings repository.SettingsStore, pusher Pusher, logger *slog.Logger) *Consumer {
	return &Consumer{
		exporter: exporter,
		settings: settings,
		pusher:   pusher,
		logger:   logger,
	}
}

// Handle dispatches one catalog event to the matching push operation.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	var data productEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product event: %w", err)
	}
	if data.ID == "" {
		return fmt.Errorf("product event %s has no product id", event.EventID)
	}

	bindings, err := c.settings.ShopkeyBindings(ctx)
	if err != nil {
		return fmt.Errorf("load shopkey bindings: %w", err)
	}

	for _, b := range bindings {
		switch event.EventType {
		case TopicProductDeleted:
			c.pushDelete(ctx, b.Shopkey, data.ID)
		default:
			c.pushUpdate(ctx, b.Shopkey, data.ID)
		}
	}

	return nil
}

// pushUpdate re-exports one product under the given shopkey and uploads the
// item. A product that no longer passes export validation is removed from the
// index instead.
func (c *Consumer) pushUpdate(ctx context.Context, shopkey, productID string) {
	result, err := c.exporter.Export(ctx, &domain.ExportRequest{
		Shopkey:   shopkey,
		Start:     domain.DefaultExportStart,
		Count:     1,
		ProductID: productID,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "single-product export failed",
			slog.String("shopkey", shopkey),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return
	}

	if result.Failed() {
		c.logger.InfoContext(ctx, "product no longer exportable, removing from index",
			slog.String("shopkey", shopkey),
			slog.String("product_id", productID),
		)
		c.pushDelete(ctx, shopkey, productID)
		return
	}

	for i := range result.Feed.Items {
		if err := c.pusher.PushUpdate(ctx, shopkey, &result.Feed.Items[i]); err != nil {
			c.logger.WarnContext(ctx, "push update failed",
				slog.String("shopkey", shopkey),
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (c *Consumer) pushDelete(ctx context.Context, shopkey, productID string) {
	if err := c.pusher.PushDelete(ctx, shopkey, productID); err != nil {
		c.logger.WarnContext(ctx, "push delete failed",
			slog.String("shopkey", shopkey),
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
