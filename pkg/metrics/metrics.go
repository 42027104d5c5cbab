// Package metrics exposes the application's Prometheus registry with
// counters and gauges for the fetch, assemble, and plot stages.
package metrics

import (
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
)

// Build triggers reported by RecordAssemblyBuild.
const (
	TriggerConstruct = "construct"
	TriggerRefresh   = "refresh"
	TriggerReload    = "reload"
	TriggerSetMode   = "set_mode"
)

// Statuses reported by the Record helpers.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDatasetFetch records one upstream fetch of the table pair
func (r *Registry) RecordDatasetFetch(provider, status string, duration time.Duration) {
	r.DatasetFetchesTotal.WithLabelValues(provider, status).Inc()
	r.DatasetFetchDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// UpdateDatasetRows records the row counts of the fetched tables
func (r *Registry) UpdateDatasetRows(edgeRows, nodeRows int) {
	r.DatasetRowsFetched.WithLabelValues("edges").Set(float64(edgeRows))
	r.DatasetRowsFetched.WithLabelValues("nodes").Set(float64(nodeRows))
}

// RecordSnapshotServed counts a snapshot standing in for the upstream
func (r *Registry) RecordSnapshotServed() {
	r.DatasetSnapshotsServed.Inc()
}

// SetDatasetStale flags whether the served tables came from a fallback
func (r *Registry) SetDatasetStale(stale bool) {
	if stale {
		r.DatasetStale.Set(1)
	} else {
		r.DatasetStale.Set(0)
	}
}

// RecordAssemblyBuild records one graph build
func (r *Registry) RecordAssemblyBuild(trigger, status string, duration time.Duration) {
	r.AssemblyBuildsTotal.WithLabelValues(trigger, status).Inc()
	r.AssemblyBuildDuration.Observe(duration.Seconds())
}

// UpdateGraphMetrics captures the shape of the current graph and its
// warning counts. Absent warning kinds reset to zero so a clean build
// clears the previous build's findings.
func (r *Registry) UpdateGraphMetrics(vertices, edges int, warnings []assembly.Warning, builtAt time.Time) {
	r.AssemblyVerticesTotal.Set(float64(vertices))
	r.AssemblyEdgesTotal.Set(float64(edges))
	if !builtAt.IsZero() {
		r.AssemblyLastBuildTimestamp.Set(float64(builtAt.Unix()))
	}

	counts := assembly.CountByKind(warnings)
	kinds := []assembly.WarningKind{
		assembly.WarnEmptyInput,
		assembly.WarnNullValue,
		assembly.WarnDuplicateKey,
		assembly.WarnUnresolvedReference,
	}
	for _, kind := range kinds {
		r.AssemblyWarningsTotal.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}

// RecordRenderPlot records one diagram plot
func (r *Registry) RecordRenderPlot(format, status string, duration time.Duration, artifactBytes int) {
	r.RenderPlotsTotal.WithLabelValues(format, status).Inc()
	r.RenderPlotDuration.WithLabelValues(format).Observe(duration.Seconds())
	if artifactBytes > 0 {
		r.RenderArtifactBytes.WithLabelValues(format).Observe(float64(artifactBytes))
	}
}
