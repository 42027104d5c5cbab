package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Dataset Metrics
	DatasetFetchesTotal    *prometheus.CounterVec
	DatasetFetchDuration   *prometheus.HistogramVec
	DatasetRowsFetched     *prometheus.GaugeVec
	DatasetSnapshotsServed prometheus.Counter
	DatasetStale           prometheus.Gauge

	// Assembly Metrics
	AssemblyBuildsTotal        *prometheus.CounterVec
	AssemblyBuildDuration      prometheus.Histogram
	AssemblyVerticesTotal      prometheus.Gauge
	AssemblyEdgesTotal         prometheus.Gauge
	AssemblyWarningsTotal      *prometheus.GaugeVec
	AssemblyLastBuildTimestamp prometheus.Gauge

	// Render Metrics
	RenderPlotsTotal    *prometheus.CounterVec
	RenderPlotDuration  *prometheus.HistogramVec
	RenderArtifactBytes *prometheus.HistogramVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initHTTPMetrics()
	r.initDatasetMetrics()
	r.initAssemblyMetrics()
	r.initRenderMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
