package assembly

import (
	"fmt"
	"sync"
	"time"

	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/tabular"
)

// Mode selects how endpoints are grouped when the graph is built.
type Mode string

const (
	// ModeNone assembles the graph exactly as the tables describe it.
	ModeNone Mode = "none"
	// ModeByCategory replaces endpoints with their categories and
	// collapses the node table to the distinct category set.
	ModeByCategory Mode = "by-category"
)

// String returns the mode's wire value.
func (m Mode) String() string {
	return string(m)
}

// Validate rejects unknown modes.
func (m Mode) Validate() error {
	switch m {
	case ModeNone, ModeByCategory:
		return nil
	}
	return NewError("aggregate").
		Context(fmt.Sprintf("unknown mode %q", string(m))).
		Cause(ErrInvalidArgument).
		Err()
}

// ParseMode converts a wire value to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// Assembler turns the two input tables into an annotated graph. It
// holds the tables it fetched at construction, rebuilds the graph
// wholesale on demand, and collects data-quality warnings per build.
// Safe for concurrent readers; all writes go through its own methods.
type Assembler struct {
	mu     sync.RWMutex
	src    Source
	schema Schema
	logger logging.Logger

	edges *tabular.Table
	nodes *tabular.Table

	mode     Mode
	graph    *Graph
	warnings []Warning
	builtAt  time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSchema overrides the column names expected in the input tables.
// Blank fields keep their defaults.
func WithSchema(s Schema) Option {
	return func(a *Assembler) {
		a.schema = s.normalized()
	}
}

// WithLogger sets the logger used for build summaries and warnings.
func WithLogger(l logging.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMode sets the initial aggregation mode.
func WithMode(m Mode) Option {
	return func(a *Assembler) {
		a.mode = m
	}
}

// Stats is a point-in-time summary of the assembler's state.
type Stats struct {
	VertexCount int       `json:"vertex_count"`
	EdgeCount   int       `json:"edge_count"`
	Mode        Mode      `json:"mode"`
	Warnings    int       `json:"warnings"`
	LastBuild   time.Time `json:"last_build"`
}
