package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDatasetMetrics() {
	r.DatasetFetchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigvis_dataset_fetches_total",
			Help: "Total number of upstream table fetches",
		},
		[]string{"provider", "status"},
	)

	r.DatasetFetchDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sigvis_dataset_fetch_duration_seconds",
			Help:    "Upstream fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	r.DatasetRowsFetched = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sigvis_dataset_rows",
			Help: "Rows in the most recently fetched tables",
		},
		[]string{"table"},
	)

	r.DatasetSnapshotsServed = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sigvis_dataset_snapshots_served_total",
			Help: "Times the on-disk snapshot stood in for the upstream",
		},
	)

	r.DatasetStale = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sigvis_dataset_stale",
			Help: "Whether the served tables came from a fallback (1) or a live fetch (0)",
		},
	)
}
