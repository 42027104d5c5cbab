package serve

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/livereload"
	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/metrics"
	"github.com/softloud/sig-vis/pkg/render"
	"github.com/softloud/sig-vis/pkg/validation"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>sig-vis</title></head>
<body>
<h1>sig-vis %s</h1>
<p>
<a href="/api/graph">graph</a> &middot; <a href="/api/stats">stats</a> &middot;
<a href="/api/warnings">warnings</a> &middot; <a href="/metrics">metrics</a>
</p>
<img id="diagram" src="/diagram.svg" alt="pipeline diagram">
<p><button onclick="refresh()">Refresh data</button></p>
<script>
function refresh() {
  fetch('/api/refresh', {method: 'POST'}).then(function () {
    document.getElementById('diagram').src = '/diagram.svg?' + Date.now();
  });
}
</script>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexHTML, s.version)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	g := s.assembler.Graph()
	if g == nil {
		s.respondError(w, http.StatusServiceUnavailable, "No graph assembled")
		return
	}

	response := GraphResponse{
		Vertices: make([]VertexResponse, 0, g.VertexCount()),
		Edges:    make([]EdgeResponse, 0, g.EdgeCount()),
		Stats:    s.statsResponse(),
	}
	for _, v := range g.Vertices {
		response.Vertices = append(response.Vertices, vertexToResponse(v))
	}
	for _, e := range g.Edges {
		response.Edges = append(response.Edges, edgeToResponse(e))
	}

	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.respondJSON(w, http.StatusOK, s.statsResponse())
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	warnings := s.assembler.Warnings()
	response := WarningsResponse{
		Warnings: make([]WarningResponse, 0, len(warnings)),
		Count:    len(warnings),
	}
	for _, warning := range warnings {
		response.Warnings = append(response.Warnings, warningToResponse(warning))
	}

	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	start := time.Now()
	if err := s.reload(r.Context()); err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Refresh failed: %v", err))
		return
	}

	response := RefreshResponse{
		Stats: s.statsResponse(),
		Time:  time.Since(start).String(),
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleAggregation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req validation.AggregationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.ValidateAggregationRequest(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := assembly.ParseMode(req.Mode)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	err = s.assembler.SetMode(mode)
	s.recordBuild(metrics.TriggerSetMode, start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Aggregation failed: %v", err))
		return
	}
	s.publish(livereload.ModeChanged(s.assembler.Stats()))

	response := AggregationResponse{
		Mode:  mode.String(),
		Stats: s.statsResponse(),
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	// Check if GraphQL handler is initialized
	if s.gqlHandler == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}

	// Delegate to GraphQL handler
	s.gqlHandler.ServeHTTP(w, r)
}

func (s *Server) handleDiagramSVG(w http.ResponseWriter, r *http.Request) {
	s.servePlot(w, r, render.FormatSVG)
}

func (s *Server) handleDiagramDOT(w http.ResponseWriter, r *http.Request) {
	s.servePlot(w, r, render.FormatDOT)
}

func (s *Server) handleDiagramJSON(w http.ResponseWriter, r *http.Request) {
	s.servePlot(w, r, render.FormatJSON)
}

// servePlot renders the current graph and writes the artifact.
func (s *Server) servePlot(w http.ResponseWriter, r *http.Request, format render.Format) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := plotRequestFromQuery(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidatePlotRequest(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	renderer, err := render.New(s.assembler, s.plotOptions(req)...)
	if err != nil {
		s.registry.RecordRenderPlot(format.String(), metrics.StatusError, time.Since(start), 0)
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	artifact, err := renderer.Plot(r.Context(), format)
	if err != nil {
		s.registry.RecordRenderPlot(format.String(), metrics.StatusError, time.Since(start), 0)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.registry.RecordRenderPlot(format.String(), metrics.StatusSuccess, time.Since(start), len(artifact.Data))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Artifact-ID", artifact.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.logger.Error("failed to write artifact", logging.Error(err))
	}
}

// plotOptions merges the server's plot defaults with per-request overrides.
func (s *Server) plotOptions(req *validation.PlotRequest) []render.Option {
	opts := []render.Option{render.WithLogger(s.logger)}

	layout := s.layout
	if req.Layout != "" {
		layout = req.Layout
	}
	opts = append(opts, render.WithLayout(layout))

	width, height := s.width, s.height
	if req.Width != 0 {
		width, height = req.Width, req.Height
	}
	if width > 0 && height > 0 {
		opts = append(opts, render.WithCanvas(float64(width), float64(height)))
	}

	seed := s.seed
	if req.Seed != 0 {
		seed = req.Seed
	}
	if seed != 0 {
		opts = append(opts, render.WithSeed(seed))
	}

	title := s.title
	if req.Title != "" {
		title = req.Title
	}
	if title != "" {
		opts = append(opts, render.WithTitle(title))
	}

	return opts
}

func plotRequestFromQuery(r *http.Request) (*validation.PlotRequest, error) {
	q := r.URL.Query()
	req := &validation.PlotRequest{
		Format: q.Get("format"),
		Layout: q.Get("layout"),
		Title:  q.Get("title"),
	}

	var err error
	if req.Width, err = intParam(q, "width"); err != nil {
		return nil, err
	}
	if req.Height, err = intParam(q, "height"); err != nil {
		return nil, err
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", raw)
		}
		req.Seed = seed
	}

	return req, nil
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
