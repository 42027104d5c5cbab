// Package assembly builds an annotated directed graph from an edge
// list table and a node attribute table. Structural problems in the
// tables are fatal errors; data-quality problems are collected as
// warnings and never abort a build.
package assembly

import (
	"context"
	"time"

	"github.com/softloud/sig-vis/pkg/logging"
	"github.com/softloud/sig-vis/pkg/tabular"
)

// New fetches both tables from the source, validates them, and builds
// the first graph. A nil source or a structural table problem fails
// construction outright.
func New(ctx context.Context, src Source, opts ...Option) (*Assembler, error) {
	if src == nil {
		return nil, NewError("new").
			Context("nil data source").
			Cause(ErrUnresolvedDependency).
			Err()
	}

	a := &Assembler{
		src:    src,
		schema: DefaultSchema(),
		logger: logging.NewNopLogger(),
		mode:   ModeNone,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.mode.Validate(); err != nil {
		return nil, err
	}

	if err := a.fetchLocked(ctx); err != nil {
		return nil, err
	}
	if err := validateTables(a.edges, a.nodes, a.schema); err != nil {
		return nil, err
	}
	var seed []Warning
	if a.mode == ModeByCategory {
		a.nodes, seed = aggregateTables(a.edges, a.nodes, a.schema)
	}
	if err := a.rebuildLocked(seed); err != nil {
		return nil, err
	}
	return a, nil
}

// Graph returns the current graph. Built graphs are never mutated, so
// the returned pointer stays valid across later rebuilds.
func (a *Assembler) Graph() *Graph {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph
}

// Mode returns the current aggregation mode.
func (a *Assembler) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Source returns the data source Reload refetches from.
func (a *Assembler) Source() Source {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.src
}

// Warnings returns the data-quality findings collected by the last
// build.
func (a *Assembler) Warnings() []Warning {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Warning, len(a.warnings))
	copy(out, a.warnings)
	return out
}

// VertexCount returns the number of distinct endpoints referenced by
// the edge list.
func (a *Assembler) VertexCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph.VertexCount()
}

// EdgeCount returns the number of assembled edges.
func (a *Assembler) EdgeCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph.EdgeCount()
}

// LastBuild returns when the current graph was built.
func (a *Assembler) LastBuild() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.builtAt
}

// Stats returns a point-in-time summary.
func (a *Assembler) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Stats{
		VertexCount: a.graph.VertexCount(),
		EdgeCount:   a.graph.EdgeCount(),
		Mode:        a.mode,
		Warnings:    len(a.warnings),
		LastBuild:   a.builtAt,
	}
}

// Refresh rebuilds the graph wholesale from the currently held tables.
func (a *Assembler) Refresh() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rebuildLocked(nil)
}

// Reload refetches both tables from the source and rebuilds, applying
// the current aggregation mode to the fresh tables. This is the
// supported way back to the per-node view after aggregation: set
// ModeNone first, then Reload. A failed fetch or validation leaves
// the held tables and graph untouched.
func (a *Assembler) Reload(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	edges, nodes, err := fetchTables(ctx, a.src)
	if err != nil {
		return err
	}
	if err := validateTables(edges, nodes, a.schema); err != nil {
		return err
	}
	var seed []Warning
	if a.mode == ModeByCategory {
		nodes, seed = aggregateTables(edges, nodes, a.schema)
	}
	a.edges = edges
	a.nodes = nodes
	return a.rebuildLocked(seed)
}

// SetMode validates the mode and rebuilds with it. ModeByCategory
// transforms the held tables destructively: endpoints become
// categories and the node table collapses to the distinct category
// set mapped to itself. The transform is idempotent. Switching back
// to ModeNone does not restore the per-node tables.
func (a *Assembler) SetMode(mode Mode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	var seed []Warning
	if mode == ModeByCategory {
		a.nodes, seed = aggregateTables(a.edges, a.nodes, a.schema)
	}
	a.mode = mode
	return a.rebuildLocked(seed)
}

func (a *Assembler) fetchLocked(ctx context.Context) error {
	edges, nodes, err := fetchTables(ctx, a.src)
	if err != nil {
		return err
	}
	a.edges = edges
	a.nodes = nodes
	return nil
}

func fetchTables(ctx context.Context, src Source) (*tabular.Table, *tabular.Table, error) {
	edges, err := src.EdgeTable(ctx)
	if err != nil {
		return nil, nil, NewError("fetch").Table(TableEdges).Cause(err).Err()
	}
	nodes, err := src.NodeTable(ctx)
	if err != nil {
		return nil, nil, NewError("fetch").Table(TableNodes).Cause(err).Err()
	}
	return edges, nodes, nil
}

// rebuildLocked assembles a fresh graph from the held tables and
// swaps it in only on success, so a failed rebuild leaves the last
// good graph in place.
func (a *Assembler) rebuildLocked(seed []Warning) error {
	start := time.Now()
	g, warnings, err := assemble(a.edges, a.nodes, a.schema, seed)
	if err != nil {
		a.logger.Error("assembly failed", logging.Error(err))
		return err
	}

	a.graph = g
	a.warnings = warnings
	a.builtAt = time.Now()

	for _, w := range warnings {
		a.logger.Warn("data quality finding",
			logging.String("kind", string(w.Kind)),
			logging.TableName(w.Table),
			logging.String("detail", w.Message),
		)
	}
	a.logger.Info("graph assembled",
		logging.String("mode", string(a.mode)),
		logging.Vertices(g.VertexCount()),
		logging.Edges(g.EdgeCount()),
		logging.Warnings(len(warnings)),
		logging.Latency(time.Since(start)),
	)
	return nil
}

// validateTables enforces the structural contract: both tables
// present, required columns present, node ids non-null. Everything it
// rejects is fatal; data-quality issues are left to assemble.
func validateTables(edges, nodes *tabular.Table, schema Schema) error {
	if edges == nil {
		return NewError("assemble").
			Table(TableEdges).
			Context("table is nil").
			Cause(ErrInvalidArgument).
			Err()
	}
	if nodes == nil {
		return NewError("assemble").
			Table(TableNodes).
			Context("table is nil").
			Cause(ErrInvalidArgument).
			Err()
	}
	for _, col := range []string{schema.EdgeFrom, schema.EdgeTo} {
		if !edges.HasColumn(col) {
			return MissingColumnError("assemble", TableEdges, col)
		}
	}
	for _, col := range []string{schema.NodeID, schema.NodeCategory} {
		if !nodes.HasColumn(col) {
			return MissingColumnError("assemble", TableNodes, col)
		}
	}

	idIdx, _ := nodes.ColumnIndex(schema.NodeID)
	for i, row := range nodes.Rows {
		if idIdx >= len(row) || tabular.IsNull(row[idIdx]) {
			return NullValueError("assemble", TableNodes, schema.NodeID, i+1)
		}
	}
	return nil
}

// assemble derives a graph from the two tables. The vertex set is the
// distinct union of edge endpoints in order of first reference;
// categories are left-joined from the node table; edge rows with a
// null endpoint are skipped with a warning.
func assemble(edges, nodes *tabular.Table, schema Schema, seed []Warning) (*Graph, []Warning, error) {
	if err := validateTables(edges, nodes, schema); err != nil {
		return nil, nil, err
	}

	idIdx, _ := nodes.ColumnIndex(schema.NodeID)

	warnings := make([]Warning, 0, len(seed))
	warnings = append(warnings, seed...)

	if edges.IsEmpty() {
		warnings = append(warnings, warnEmptyInput(TableEdges))
	}
	if nodes.IsEmpty() {
		warnings = append(warnings, warnEmptyInput(TableNodes))
	}

	seenID := make(map[string]struct{}, nodes.RowCount())
	for i, row := range nodes.Rows {
		id := row[idIdx]
		if _, dup := seenID[id]; dup {
			warnings = append(warnings, warnDuplicateKey(schema.NodeID, i+1, id))
			continue
		}
		seenID[id] = struct{}{}
	}

	fromIdx, _ := edges.ColumnIndex(schema.EdgeFrom)
	toIdx, _ := edges.ColumnIndex(schema.EdgeTo)

	g := &Graph{
		Vertices: make([]Vertex, 0),
		Edges:    make([]Edge, 0, edges.RowCount()),
	}
	var order []string
	seenV := make(map[string]struct{})
	addVertex := func(name string) {
		if _, ok := seenV[name]; ok {
			return
		}
		seenV[name] = struct{}{}
		order = append(order, name)
	}

	for i, row := range edges.Rows {
		from := cellAt(row, fromIdx)
		to := cellAt(row, toIdx)
		if tabular.IsNull(from) {
			warnings = append(warnings, warnNullEndpoint(schema.EdgeFrom, i+1))
			continue
		}
		if tabular.IsNull(to) {
			warnings = append(warnings, warnNullEndpoint(schema.EdgeTo, i+1))
			continue
		}

		var attrs map[string]string
		for c, col := range edges.Columns {
			if c == fromIdx || c == toIdx {
				continue
			}
			if attrs == nil {
				attrs = make(map[string]string)
			}
			attrs[col] = cellAt(row, c)
		}

		g.Edges = append(g.Edges, Edge{From: from, To: to, Attrs: attrs})
		addVertex(from)
		addVertex(to)
	}

	for _, name := range order {
		cat := joinCategory(nodes, schema, name)
		g.Vertices = append(g.Vertices, Vertex{
			Name:     name,
			Category: cat,
			Class:    DeriveClass(cat),
		})
	}

	return g, warnings, nil
}

// aggregateTables rewrites edge endpoints to their categories in
// place and returns the replacement node table (the distinct category
// set mapped to itself) plus the unresolved-reference warnings.
// Endpoints that resolve nowhere become null cells, which the next
// assemble pass then skips with a null-value warning.
func aggregateTables(edges, nodes *tabular.Table, schema Schema) (*tabular.Table, []Warning) {
	if edges == nil || nodes == nil {
		return nodes, nil
	}
	var warnings []Warning
	for _, col := range []string{schema.EdgeFrom, schema.EdgeTo} {
		idx, ok := edges.ColumnIndex(col)
		if !ok {
			continue
		}
		for i, row := range edges.Rows {
			if idx >= len(row) || tabular.IsNull(row[idx]) {
				continue
			}
			id := row[idx]
			cat, ok := CategoryOf(nodes, schema, id)
			if !ok {
				row[idx] = ""
				warnings = append(warnings, warnUnresolvedReference(col, i+1, id))
				continue
			}
			row[idx] = cat
		}
	}

	aggregated := tabular.New(schema.NodeID, schema.NodeCategory)
	for _, cat := range nodes.Distinct(schema.NodeCategory) {
		aggregated.AppendRow(cat, cat)
	}
	return aggregated, warnings
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
