// Package render turns an assembled graph into diagram artifacts.
// Layouts position vertices on a canvas; exporters encode the result
// as SVG, Graphviz dot, or layout JSON. The renderer itself only
// needs something that can hand it the current graph.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/softloud/sig-vis/pkg/assembly"
	"github.com/softloud/sig-vis/pkg/logging"
)

// Common sentinel errors
var (
	ErrNilHolder     = errors.New("graph holder cannot be nil")
	ErrNilGraph      = errors.New("graph holder has no graph")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrUnknownFormat = errors.New("unknown format")
)

// GraphHolder supplies the current assembled graph. The assembler
// satisfies it; tests hand in stubs.
type GraphHolder interface {
	Graph() *assembly.Graph
}

// Format identifies an artifact encoding.
type Format string

// Supported artifact formats.
const (
	FormatSVG  Format = "svg"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Validate checks that the format is one Plot can produce.
func (f Format) Validate() error {
	switch f {
	case FormatSVG, FormatDOT, FormatJSON:
		return nil
	default:
		return fmt.Errorf("format %q: %w", string(f), ErrUnknownFormat)
	}
}

// ContentType returns the MIME type artifacts of this format carry.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat converts user input into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// Artifact is one rendered diagram.
type Artifact struct {
	ID        string    `json:"id"`
	Format    Format    `json:"format"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Renderer lays out and encodes the holder's current graph.
type Renderer struct {
	holder GraphHolder
	layout string
	config LayoutConfig
	title  string
	logger logging.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLayout selects the layout algorithm (force, circular,
// hierarchical).
func WithLayout(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.layout = name
		}
	}
}

// WithCanvas sets the canvas size in pixels.
func WithCanvas(width, height float64) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.config.Width = width
		}
		if height > 0 {
			r.config.Height = height
		}
	}
}

// WithSeed fixes the placement seed for randomized layouts.
func WithSeed(seed int64) Option {
	return func(r *Renderer) {
		r.config.Seed = seed
	}
}

// WithTitle sets the diagram title.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = title
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New wires a renderer to a graph holder. Construction fails when the
// holder is nil or holds no graph, so a misassembled pipeline surfaces
// here rather than at the first plot.
func New(holder GraphHolder, opts ...Option) (*Renderer, error) {
	if holder == nil {
		return nil, ErrNilHolder
	}

	r := &Renderer{
		holder: holder,
		layout: LayoutForce,
		config: DefaultLayoutConfig(),
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	cfg := r.config
	if _, err := NewLayout(r.layout, &cfg); err != nil {
		return nil, err
	}
	if holder.Graph() == nil {
		return nil, ErrNilGraph
	}
	return r, nil
}

// Graph returns the holder's current graph.
func (r *Renderer) Graph() *assembly.Graph {
	return r.holder.Graph()
}

// Layout returns the configured layout algorithm name.
func (r *Renderer) Layout() string {
	return r.layout
}

// Plot lays out the current graph and encodes it in the requested
// format. Every call re-reads the holder, so a refreshed assembly
// shows up in the next artifact.
func (r *Renderer) Plot(ctx context.Context, format Format) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := format.Validate(); err != nil {
		return nil, err
	}

	g := r.holder.Graph()
	if g == nil {
		return nil, ErrNilGraph
	}

	timer := logging.StartTimer(r.logger, "diagram plotted",
		logging.Format(string(format)),
		logging.Vertices(g.VertexCount()),
		logging.Edges(g.EdgeCount()),
	)

	cfg := r.config
	layout, err := NewLayout(r.layout, &cfg)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	diagram := &Diagram{
		Graph:     g,
		Positions: positions,
		Width:     cfg.Width,
		Height:    cfg.Height,
	}

	var data []byte
	switch format {
	case FormatSVG:
		data, err = diagram.ExportSVG(r.title)
	case FormatDOT:
		data, err = diagram.ExportDOT(r.title)
	case FormatJSON:
		data, err = diagram.ExportJSON()
	}
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	artifact := &Artifact{
		ID:        uuid.New().String(),
		Format:    format,
		Data:      data,
		CreatedAt: time.Now(),
	}

	timer.End()
	return artifact, nil
}
