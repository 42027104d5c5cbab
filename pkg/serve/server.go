// Package serve exposes the assembled graph over HTTP: JSON endpoints
// for the graph, stats and warnings, diagram endpoints for rendered
// artifacts, a GraphQL endpoint, and the usual health and metrics
// plumbing.
package serve

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/dataset"
	"github.com/softloud/sig-vis/pkg/gql"
	"github.com/softloud/sig-vis/pkg/health"
	"github.com/softloud/sig-vis/pkg/livereload"
	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP API server
type Server struct {
	assembler  *assembly.Assembler
	source     dataset.Source
	checker    *health.Checker
	registry   *metrics.Registry
	bus        *livereload.Bus
	gqlHandler *gql.Handler
	logger     logging.Logger
	startTime  time.Time
	version    string

	// Plot defaults, overridable per request via query parameters
	layout string
	width  int
	height int
	seed   int64
	title  string
}

// Options configures a Server. Zero values fall back to sane defaults.
type Options struct {
	Layout   string
	Width    int
	Height   int
	Seed     int64
	Title    string
	Version  string
	Provider string
	Logger   logging.Logger
	Registry *metrics.Registry
	Bus      *livereload.Bus
}

// NewServer creates a new API server over an assembled graph.
func NewServer(asm *assembly.Assembler, src dataset.Source, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	registry := opts.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	layout := opts.Layout
	if layout == "" {
		layout = "force"
	}

	s := &Server{
		assembler: asm,
		source:    src,
		checker:   health.NewChecker(),
		registry:  registry,
		bus:       opts.Bus,
		logger:    logger.With(logging.Component("serve")),
		startTime: time.Now(),
		version:   version,
		layout:    layout,
		width:     opts.Width,
		height:    opts.Height,
		seed:      opts.Seed,
		title:     opts.Title,
	}

	schema, err := gql.GenerateSchemaWithMutations(gqlService{server: s})
	if err != nil {
		s.logger.Warn("failed to generate GraphQL schema", logging.Error(err))
	} else {
		s.gqlHandler = gql.NewHandler(schema)
	}

	if c, ok := src.(*dataset.CachedSource); ok {
		c.SetMetrics(registry, opts.Provider)
	}

	s.registerChecks()
	return s
}

// Checker returns the health checker so callers can register extra checks.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// registerChecks wires the standard liveness and readiness probes.
func (s *Server) registerChecks() {
	s.checker.RegisterLivenessCheck("memory", health.MemoryCheck(func() (alloc, sys uint64) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return m.Alloc, m.Sys
	}))

	s.checker.RegisterReadinessCheck("graph", health.GraphCheck(func() (vertices, edges, warnings int, builtAt time.Time) {
		st := s.assembler.Stats()
		return st.VertexCount, st.EdgeCount, st.Warnings, st.LastBuild
	}))

	if p, ok := s.source.(interface{ Ping(context.Context) error }); ok {
		s.checker.RegisterReadinessCheck("source", health.SourceCheck(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return p.Ping(ctx)
		}))
	}

	if c, ok := s.source.(*dataset.CachedSource); ok {
		s.checker.RegisterCheck("freshness", health.FreshnessCheck(c.Stale))
	}
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Landing page and diagrams
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/diagram.svg", s.handleDiagramSVG)
	mux.HandleFunc("/diagram.dot", s.handleDiagramDOT)
	mux.HandleFunc("/diagram.json", s.handleDiagramJSON)

	// Graph endpoints
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/warnings", s.handleWarnings)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/aggregation", s.handleAggregation)

	// GraphQL endpoint
	mux.HandleFunc("/graphql", s.handleGraphQL)

	// Health and metrics
	mux.HandleFunc("/healthz", s.checker.HTTPHandler())
	mux.HandleFunc("/readyz", s.checker.ReadinessHandler())
	mux.HandleFunc("/livez", s.checker.LivenessHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.registry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	return s.panicRecoveryMiddleware(
		s.loggingMiddleware(
			s.corsMiddleware(
				s.metricsMiddleware(mux))))
}

// Start serves until the listener fails or a shutdown signal arrives.
func (s *Server) Start(addr string, timeouts Timeouts) error {
	gs := NewGracefulServer(addr, s.Handler(), s.logger, timeouts)
	gs.SetReloadFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.reload(ctx)
	})

	go s.updateMetricsPeriodically(gs.ShutdownChannel())

	s.logger.Info("server starting",
		logging.String("addr", addr),
		logging.String("version", s.version),
	)
	return gs.Start()
}

// reload refetches the tables and rebuilds the graph, announcing the
// result on the bus.
func (s *Server) reload(ctx context.Context) error {
	start := time.Now()
	err := s.assembler.Reload(ctx)
	s.recordBuild(metrics.TriggerReload, start, err)
	if err != nil {
		return err
	}
	s.publish(livereload.Rebuilt(s.assembler.Stats()))
	return nil
}

func (s *Server) publish(ev livereload.Event) {
	if s.bus != nil {
		s.bus.Publish(livereload.TopicGraph, ev)
	}
}

// recordBuild records one graph build attempt.
func (s *Server) recordBuild(trigger string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	s.registry.RecordAssemblyBuild(trigger, status, time.Since(start))
}

// gqlService adapts the assembler for the GraphQL schema so mutations
// are recorded and announced the same way the REST handlers are.
type gqlService struct {
	server *Server
}

func (g gqlService) Graph() *assembly.Graph       { return g.server.assembler.Graph() }
func (g gqlService) Stats() assembly.Stats        { return g.server.assembler.Stats() }
func (g gqlService) Warnings() []assembly.Warning { return g.server.assembler.Warnings() }

func (g gqlService) Refresh() error {
	start := time.Now()
	err := g.server.assembler.Refresh()
	g.server.recordBuild(metrics.TriggerRefresh, start, err)
	if err != nil {
		return err
	}
	g.server.publish(livereload.Rebuilt(g.server.assembler.Stats()))
	return nil
}

func (g gqlService) SetMode(mode assembly.Mode) error {
	start := time.Now()
	err := g.server.assembler.SetMode(mode)
	g.server.recordBuild(metrics.TriggerSetMode, start, err)
	if err != nil {
		return err
	}
	g.server.publish(livereload.ModeChanged(g.server.assembler.Stats()))
	return nil
}

// Helper methods

func (s *Server) statsResponse() StatsResponse {
	st := s.assembler.Stats()
	resp := StatsResponse{
		VertexCount: st.VertexCount,
		EdgeCount:   st.EdgeCount,
		Mode:        st.Mode.String(),
		Warnings:    st.Warnings,
		Uptime:      time.Since(s.startTime).String(),
	}
	if !st.LastBuild.IsZero() {
		resp.LastBuild = st.LastBuild.UTC().Format(time.RFC3339)
	}
	return resp
}

func vertexToResponse(v assembly.Vertex) VertexResponse {
	resp := VertexResponse{
		Name:  v.Name,
		Class: v.Class,
	}
	if v.HasCategory() {
		category := v.Category
		resp.Category = &category
	}
	return resp
}

func edgeToResponse(e assembly.Edge) EdgeResponse {
	resp := EdgeResponse{
		From: e.From,
		To:   e.To,
	}
	if v := e.Attr(assembly.AttrDescription); v != "" {
		resp.Description = &v
	}
	if v := e.Attr(assembly.AttrResponsible); v != "" {
		resp.Responsible = &v
	}
	if v := e.Attr(assembly.AttrStatus); v != "" {
		resp.Status = &v
	}
	return resp
}

func warningToResponse(w assembly.Warning) WarningResponse {
	return WarningResponse{
		Kind:    string(w.Kind),
		Table:   w.Table,
		Column:  w.Column,
		Row:     w.Row,
		Value:   w.Value,
		Message: w.Message,
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}
