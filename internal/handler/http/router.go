package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/searchfeed/pkg/health"
	"github.com/utafrali/searchfeed/pkg/middleware"

	"github.com/utafrali/searchfeed/internal/export"
	"github.com/utafrali/searchfeed/internal/repository"
	"github.com/utafrali/searchfeed/internal/rewrite"
)

// NewRouter creates a chi router with all service routes registered.
func NewRouter(
	exporter *export.Exporter,
	catalog repository.CatalogRepository,
	settings repository.SettingsStore,
	rewriter *rewrite.Rewriter,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("searchfeed"))

	// Health check and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Feed export endpoint, consumed by the external search service.
	exportHandler := NewExportHandler(exporter, logger)
	r.Get("/export", exportHandler.Export)

	// Storefront search with upstream result rewriting.
	searchHandler := NewSearchHandler(exporter, catalog, rewriter, logger)
	r.Get("/api/v1/search", searchHandler.Search)

	// Plugin settings and shopkey bindings.
	settingsHandler := NewSettingsHandler(settings, logger)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/settings/{channelId}/{key}", settingsHandler.GetSetting)
		r.Put("/settings/{channelId}/{key}", settingsHandler.SetSetting)
		r.Post("/shopkeys", settingsHandler.BindShopkey)
	})

	return r
}
