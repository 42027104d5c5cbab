package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/dataset"
	"github.com/softloud/sig-vis/pkg/livereload"
	"github.com/softloud/sig-vis/pkg/metrics"
	"github.com/softloud/sig-vis/pkg/serve"
)

// TestCompleteVisualisationWorkflow walks the full user journey: fetch
// the graph, render a diagram, aggregate by category, refresh, and
// check the operational endpoints along the way.
func TestCompleteVisualisationWorkflow(t *testing.T) {
	server, bus := startTestServer(t, "research-pipeline")
	defer server.Close()

	baseURL := server.URL

	t.Log("Step 1: Read assembly stats...")
	stats := getJSON(t, baseURL+"/api/stats")
	assert.EqualValues(t, 7, stats["vertex_count"], "Pipeline has seven distinct endpoints")
	assert.EqualValues(t, 7, stats["edge_count"], "Pipeline has seven edge rows")
	assert.Equal(t, "none", stats["mode"])
	assert.EqualValues(t, 0, stats["warnings"], "Template data is clean")
	t.Log("  ✓ Stats report the assembled pipeline")

	t.Log("Step 2: Fetch the full graph...")
	graph := getJSON(t, baseURL+"/api/graph")
	vertices, ok := graph["vertices"].([]any)
	require.True(t, ok, "Graph response carries a vertex list")
	require.Len(t, vertices, 7)
	first, ok := vertices[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", first["name"], "Vertices keep first-reference order")
	assert.Equal(t, "humans", first["class"])
	t.Log("  ✓ Graph lists vertices in first-reference order")

	t.Log("Step 3: Render an SVG diagram...")
	resp, err := http.Get(baseURL + "/diagram.svg?seed=42")
	require.NoError(t, err, "Failed to fetch diagram")
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Artifact-ID"), "Artifacts are addressable")
	assert.True(t, strings.HasPrefix(string(body), `<?xml`), "Body should be an SVG document")
	assert.Contains(t, string(body), "<svg xmlns=", "Body should carry the svg root element")
	t.Logf("  ✓ Rendered %d bytes of SVG", len(body))

	t.Log("Step 4: Aggregate by category...")
	agg := postJSON(t, baseURL+"/api/aggregation", map[string]any{"mode": "by-category"})
	aggStats, ok := agg["stats"].(map[string]any)
	require.True(t, ok, "Aggregation response carries stats")
	assert.EqualValues(t, 4, aggStats["vertex_count"], "Four categories in the pipeline")
	assert.EqualValues(t, 7, aggStats["edge_count"], "Edges survive aggregation")
	t.Log("  ✓ Graph collapsed to the category level")

	t.Log("Step 5: Render the aggregated graph as JSON...")
	resp, err = http.Get(baseURL + "/diagram.json")
	require.NoError(t, err)
	var plot map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plot))
	resp.Body.Close()
	plotVertices, ok := plot["vertices"].([]any)
	require.True(t, ok)
	assert.Len(t, plotVertices, 4, "Plot reflects the aggregated graph")
	for _, v := range plotVertices {
		vm := v.(map[string]any)
		_, hasX := vm["x"]
		_, hasY := vm["y"]
		assert.True(t, hasX && hasY, "Every vertex is positioned")
	}
	t.Log("  ✓ Positioned plot matches the aggregated graph")

	t.Log("Step 6: Refresh from the source...")
	sub, err := bus.Subscribe(context.Background(), livereload.TopicGraph)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	refreshed := postJSON(t, baseURL+"/api/refresh", nil)
	refreshedStats, ok := refreshed["stats"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 4, refreshedStats["vertex_count"], "Refresh reapplies the current mode")

	select {
	case ev := <-sub.Channel():
		assert.Equal(t, livereload.KindGraphRebuilt, ev.Kind, "Refresh broadcasts a rebuild event")
	default:
		t.Fatal("Expected a rebuild event on the bus")
	}
	t.Log("  ✓ Refresh rebuilt the graph and broadcast the event")

	t.Log("Step 7: Check operational endpoints...")
	for _, path := range []string{"/healthz", "/readyz", "/livez"} {
		resp, err := http.Get(baseURL + path)
		require.NoError(t, err, "Failed to fetch %s", path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "%s should be healthy", path)
		resp.Body.Close()
	}

	resp, err = http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	metricsBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), "sigvis_http_requests_total",
		"Request counters are exported")
	t.Log("  ✓ Health and metrics endpoints are live")
}

// TestWarningSurfacing checks that data-quality problems flow from the
// source tables all the way to the API without aborting assembly.
func TestWarningSurfacing(t *testing.T) {
	server, _ := startTestServer(t, "messy-pipeline")
	defer server.Close()

	stats := getJSON(t, server.URL+"/api/stats")
	assert.EqualValues(t, 4, stats["vertex_count"])
	assert.EqualValues(t, 3, stats["edge_count"], "The null-endpoint row is skipped")
	assert.EqualValues(t, 2, stats["warnings"])

	warnings := getJSON(t, server.URL+"/api/warnings")
	assert.EqualValues(t, 2, warnings["count"])

	list, ok := warnings["warnings"].([]any)
	require.True(t, ok)
	kinds := make([]string, 0, len(list))
	for _, w := range list {
		kinds = append(kinds, w.(map[string]any)["kind"].(string))
	}
	assert.Contains(t, kinds, "null_value")
	assert.Contains(t, kinds, "duplicate_key")

	graph := getJSON(t, server.URL+"/api/graph")
	for _, v := range graph["vertices"].([]any) {
		vm := v.(map[string]any)
		if vm["name"] == "scratch-db" {
			assert.Nil(t, vm["category"], "Unknown vertices carry a null category")
			assert.Equal(t, "not human", vm["class"])
		}
	}
}

// TestAPIRejections exercises the failure paths a client can hit.
func TestAPIRejections(t *testing.T) {
	server, _ := startTestServer(t, "research-pipeline")
	defer server.Close()

	baseURL := server.URL

	resp, err := http.Post(baseURL+"/api/aggregation", "application/json",
		bytes.NewBufferString(`{"mode":"by-owner"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Unknown modes are rejected")
	resp.Body.Close()

	resp, err = http.Post(baseURL+"/api/aggregation", "application/json",
		bytes.NewBufferString(`{broken`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Malformed JSON is rejected")
	resp.Body.Close()

	resp, err = http.Get(baseURL + "/diagram.svg?width=50&height=50")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Undersized canvas is rejected")
	resp.Body.Close()

	resp, err = http.Get(baseURL + "/diagram.svg?layout=spiral")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "Unknown layout is rejected")
	resp.Body.Close()

	resp, err = http.Get(baseURL + "/api/refresh")
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "Refresh requires POST")
	resp.Body.Close()

	resp, err = http.Get(baseURL + "/no-such-page")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// startTestServer wires a template source through the assembler into a
// full HTTP server, middleware included.
func startTestServer(t *testing.T, template string) (*httptest.Server, *livereload.Bus) {
	t.Helper()

	src, err := dataset.Template(template)
	require.NoError(t, err, "Failed to load template %s", template)

	asm, err := assembly.New(context.Background(), src)
	require.NoError(t, err, "Failed to assemble graph")

	bus := livereload.NewBus()
	t.Cleanup(bus.Shutdown)

	srv := serve.NewServer(asm, src, serve.Options{
		Version:  "e2e",
		Registry: metrics.NewRegistry(),
		Bus:      bus,
	})

	return httptest.NewServer(srv.Handler()), bus
}

func getJSON(t *testing.T, url string) map[string]any {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err, "GET %s failed", url)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "GET %s", url)

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result), "Failed to decode %s", url)
	return result
}

func postJSON(t *testing.T, url string, payload any) map[string]any {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	}

	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err, "POST %s failed", url)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode,
		fmt.Sprintf("POST %s: %s", url, respBody))

	var result map[string]any
	require.NoError(t, json.Unmarshal(respBody, &result), "Failed to decode %s", url)
	return result
}
