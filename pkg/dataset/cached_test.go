package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/softloud/sig-vis/pkg/metrics"
	"github.com/softloud/sig-vis/pkg/tabular"
)

// flakySource counts fetches and fails on demand.
type flakySource struct {
	edges   *tabular.Table
	nodes   *tabular.Table
	fetches int
	fail    bool
}

var errUpstreamDown = errors.New("upstream down")

func newFlakySource(t *testing.T) *flakySource {
	t.Helper()
	edges, nodes := fixtureTables(t)
	return &flakySource{edges: edges, nodes: nodes}
}

func (f *flakySource) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	f.fetches++
	if f.fail {
		return nil, errUpstreamDown
	}
	return f.edges.Clone(), nil
}

func (f *flakySource) NodeTable(ctx context.Context) (*tabular.Table, error) {
	if f.fail {
		return nil, errUpstreamDown
	}
	return f.nodes.Clone(), nil
}

// TestCachedSourceMemoizes tests that a fresh pair is fetched once per TTL window
func TestCachedSourceMemoizes(t *testing.T) {
	upstream := newFlakySource(t)
	cached := NewCachedSource(upstream, "", WithTTL(time.Hour))
	ctx := context.Background()

	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	if _, err := cached.NodeTable(ctx); err != nil {
		t.Fatalf("NodeTable failed: %v", err)
	}
	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("Second EdgeTable failed: %v", err)
	}

	if upstream.fetches != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", upstream.fetches)
	}
	if cached.Stale() {
		t.Error("Expected fresh pair, got stale")
	}
}

// TestCachedSourceServesHeldOnFailure tests the in-memory fallback
func TestCachedSourceServesHeldOnFailure(t *testing.T) {
	upstream := newFlakySource(t)
	cached := NewCachedSource(upstream, "", WithTTL(time.Nanosecond))
	ctx := context.Background()

	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("Initial fetch failed: %v", err)
	}

	upstream.fail = true
	time.Sleep(time.Millisecond)

	edges, err := cached.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("Expected held tables despite upstream failure, got: %v", err)
	}
	if edges.RowCount() == 0 {
		t.Error("Held edge table is empty")
	}
	if !cached.Stale() {
		t.Error("Expected stale flag after serving held tables")
	}

	// recovery clears the flag
	upstream.fail = false
	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("Fetch after recovery failed: %v", err)
	}
	if cached.Stale() {
		t.Error("Expected fresh pair after upstream recovered")
	}
}

// TestCachedSourceRecordsFetches tests that an attached registry sees
// fetch outcomes and the stale flag
func TestCachedSourceRecordsFetches(t *testing.T) {
	upstream := newFlakySource(t)
	cached := NewCachedSource(upstream, "", WithTTL(time.Nanosecond))
	reg := metrics.NewRegistry()
	cached.SetMetrics(reg, "file")
	ctx := context.Background()

	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}

	upstream.fail = true
	time.Sleep(time.Millisecond)
	if _, err := cached.EdgeTable(ctx); err != nil {
		t.Fatalf("EdgeTable with held fallback failed: %v", err)
	}

	var metric dto.Metric
	success, err := reg.DatasetFetchesTotal.GetMetricWithLabelValues("file", metrics.StatusSuccess)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := success.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Success fetches = %v, want 1", metric.Counter.GetValue())
	}

	failed, err := reg.DatasetFetchesTotal.GetMetricWithLabelValues("file", metrics.StatusError)
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := failed.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Failed fetches = %v, want 1", metric.Counter.GetValue())
	}

	if err := reg.DatasetStale.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("Stale gauge = %v, want 1", metric.Gauge.GetValue())
	}
}

// TestCachedSourceSnapshotFallback tests a cold start against a dead upstream
func TestCachedSourceSnapshotFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.snap")
	ctx := context.Background()

	// warm cache writes the snapshot
	warmUpstream := newFlakySource(t)
	warm := NewCachedSource(warmUpstream, path)
	if _, err := warm.EdgeTable(ctx); err != nil {
		t.Fatalf("Warm fetch failed: %v", err)
	}

	// cold cache, upstream down
	coldUpstream := newFlakySource(t)
	coldUpstream.fail = true
	cold := NewCachedSource(coldUpstream, path)

	edges, err := cold.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("Expected snapshot fallback, got: %v", err)
	}
	if edges.RowCount() != warmUpstream.edges.RowCount() {
		t.Errorf("Expected %d rows from snapshot, got %d",
			warmUpstream.edges.RowCount(), edges.RowCount())
	}
	if !cold.Stale() {
		t.Error("Expected stale flag when serving from snapshot")
	}
}

// TestCachedSourceColdFailurePropagates tests that nothing masks a total outage
func TestCachedSourceColdFailurePropagates(t *testing.T) {
	upstream := newFlakySource(t)
	upstream.fail = true
	cached := NewCachedSource(upstream, filepath.Join(t.TempDir(), "absent.snap"))

	_, err := cached.EdgeTable(context.Background())
	if err == nil {
		t.Fatal("Expected error with no fallback available, got none")
	}
	if !errors.Is(err, errUpstreamDown) {
		t.Errorf("Expected upstream error, got: %v", err)
	}
}

// TestCachedSourceClonesTables tests that callers cannot poison the memo
func TestCachedSourceClonesTables(t *testing.T) {
	upstream := newFlakySource(t)
	cached := NewCachedSource(upstream, "", WithTTL(time.Hour))
	ctx := context.Background()

	first, err := cached.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("EdgeTable failed: %v", err)
	}
	first.Rows[0][0] = "mutated"

	second, err := cached.EdgeTable(ctx)
	if err != nil {
		t.Fatalf("Second EdgeTable failed: %v", err)
	}
	if second.Rows[0][0] == "mutated" {
		t.Error("Cache leaked internal state through its edge table")
	}
}
