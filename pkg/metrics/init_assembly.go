package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAssemblyMetrics() {
	r.AssemblyBuildsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sigvis_assembly_builds_total",
			Help: "Total number of graph builds",
		},
		[]string{"trigger", "status"},
	)

	r.AssemblyBuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sigvis_assembly_build_duration_seconds",
			Help:    "Graph build latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.AssemblyVerticesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sigvis_assembly_vertices",
			Help: "Vertices in the current graph",
		},
	)

	r.AssemblyEdgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sigvis_assembly_edges",
			Help: "Edges in the current graph",
		},
	)

	r.AssemblyWarningsTotal = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sigvis_assembly_warnings",
			Help: "Data-quality warnings from the last build by kind",
		},
		[]string{"kind"},
	)

	r.AssemblyLastBuildTimestamp = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "sigvis_assembly_last_build_timestamp_seconds",
			Help: "Unix time of the last successful build",
		},
	)
}
