package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/softloud/sig-vis/pkg/assembly"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.DatasetFetchesTotal == nil {
		t.Error("DatasetFetchesTotal not initialized")
	}
	if r.AssemblyBuildsTotal == nil {
		t.Error("AssemblyBuildsTotal not initialized")
	}
	if r.RenderPlotsTotal == nil {
		t.Error("RenderPlotsTotal not initialized")
	}
	if r.UptimeSeconds == nil {
		t.Error("UptimeSeconds not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	// Record some requests
	r.RecordHTTPRequest("GET", "/api/graph", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/refresh", "200", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/graph", "500", 50*time.Millisecond)

	// Verify counter was incremented
	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/graph", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1 {
		t.Errorf("Counter value = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordDatasetFetch(t *testing.T) {
	r := NewRegistry()

	r.RecordDatasetFetch("sheet", StatusSuccess, 80*time.Millisecond)
	r.RecordDatasetFetch("sheet", StatusSuccess, 120*time.Millisecond)
	r.RecordDatasetFetch("sheet", StatusError, 30*time.Millisecond)

	successCounter, err := r.DatasetFetchesTotal.GetMetricWithLabelValues("sheet", StatusSuccess)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := successCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Success counter = %v, want 2", metric.Counter.GetValue())
	}

	errorCounter, err := r.DatasetFetchesTotal.GetMetricWithLabelValues("sheet", StatusError)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := errorCounter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Error counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordAssemblyBuild(t *testing.T) {
	r := NewRegistry()

	r.RecordAssemblyBuild(TriggerConstruct, StatusSuccess, 5*time.Millisecond)
	r.RecordAssemblyBuild(TriggerRefresh, StatusSuccess, 3*time.Millisecond)

	counter, err := r.AssemblyBuildsTotal.GetMetricWithLabelValues(TriggerConstruct, StatusSuccess)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Build counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestUpdateGraphMetrics(t *testing.T) {
	r := NewRegistry()

	warnings := []assembly.Warning{
		{Kind: assembly.WarnNullValue, Table: assembly.TableEdges, Row: 3},
		{Kind: assembly.WarnNullValue, Table: assembly.TableEdges, Row: 5},
		{Kind: assembly.WarnDuplicateKey, Table: assembly.TableNodes, Row: 2},
	}
	builtAt := time.Unix(1700000000, 0)
	r.UpdateGraphMetrics(7, 9, warnings, builtAt)

	var metric dto.Metric
	if err := r.AssemblyVerticesTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 7 {
		t.Errorf("Vertices gauge = %v, want 7", metric.Gauge.GetValue())
	}

	if err := r.AssemblyLastBuildTimestamp.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 1700000000 {
		t.Errorf("Last build gauge = %v, want 1700000000", metric.Gauge.GetValue())
	}

	if err := r.AssemblyEdgesTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 9 {
		t.Errorf("Edges gauge = %v, want 9", metric.Gauge.GetValue())
	}

	nullGauge, err := r.AssemblyWarningsTotal.GetMetricWithLabelValues(string(assembly.WarnNullValue))
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := nullGauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 2 {
		t.Errorf("Null value warnings gauge = %v, want 2", metric.Gauge.GetValue())
	}

	// A clean build resets the kinds that no longer fire
	r.UpdateGraphMetrics(7, 9, nil, builtAt)
	if err := nullGauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 0 {
		t.Errorf("After clean build, null value warnings gauge = %v, want 0", metric.Gauge.GetValue())
	}
}

func TestRecordRenderPlot(t *testing.T) {
	r := NewRegistry()

	r.RecordRenderPlot("svg", StatusSuccess, 12*time.Millisecond, 4096)
	r.RecordRenderPlot("svg", StatusSuccess, 15*time.Millisecond, 4200)
	r.RecordRenderPlot("dot", StatusError, 1*time.Millisecond, 0)

	counter, err := r.RenderPlotsTotal.GetMetricWithLabelValues("svg", StatusSuccess)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Plot counter = %v, want 2", metric.Counter.GetValue())
	}
}

func TestSetDatasetStale(t *testing.T) {
	r := NewRegistry()

	r.SetDatasetStale(true)

	var metric dto.Metric
	if err := r.DatasetStale.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("Stale gauge = %v, want 1", metric.Gauge.GetValue())
	}

	r.SetDatasetStale(false)
	if err := r.DatasetStale.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 0 {
		t.Errorf("Stale gauge = %v, want 0", metric.Gauge.GetValue())
	}
}
