package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.RenderPlotsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigvis_render_plots_total",
			Help: "Total number of diagram plots",
		},
		[]string{"format", "status"},
	)

	r.RenderPlotDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sigvis_render_plot_duration_seconds",
			Help:    "Diagram plot latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	r.RenderArtifactBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sigvis_render_artifact_bytes",
			Help:    "Rendered artifact size in bytes",
			Buckets: []float64{1000, 10000, 100000, 1000000},
		},
		[]string{"format"},
	)
}
