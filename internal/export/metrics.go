package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_exports_total",
			Help: "Total number of export calls",
		},
		[]string{"status"},
	)

	exportItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_export_items_total",
			Help: "Total number of items written to feeds",
		},
	)

	exportItemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_export_item_errors_total",
			Help: "Total number of per-item validation failures",
		},
		[]string{"kind"},
	)

	exportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_export_duration_seconds",
			Help:    "Export call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
