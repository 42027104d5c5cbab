package dataset

import (
	"context"
	"fmt"
	"sort"

	"github.com/softloud/sig-vis/pkg/tabular"
)

// Fixture is an in-memory source built from literal tables. Accessors
// hand out deep copies, so a caller transforming its tables never
// contaminates later constructions.
type Fixture struct {
	name  string
	edges *tabular.Table
	nodes *tabular.Table
}

// NewFixture wraps a pair of tables as a source.
func NewFixture(name string, edges, nodes *tabular.Table) *Fixture {
	return &Fixture{name: name, edges: edges, nodes: nodes}
}

// Name identifies the fixture in logs and the CLI.
func (f *Fixture) Name() string {
	return f.name
}

// EdgeTable returns a fresh copy of the edge list.
func (f *Fixture) EdgeTable(ctx context.Context) (*tabular.Table, error) {
	return f.edges.Clone(), nil
}

// NodeTable returns a fresh copy of the node attribute list.
func (f *Fixture) NodeTable(ctx context.Context) (*tabular.Table, error) {
	return f.nodes.Clone(), nil
}

// ResearchPipeline is the flagship demo dataset: a small observatory
// data pipeline with the people who keep it running.
func ResearchPipeline() *Fixture {
	edges := tabular.New("from", "to", "description", "responsible", "status")
	edges.AppendRow("alice", "ingest", "nightly raw observation drops", "alice", "operational")
	edges.AppendRow("ingest", "catalogue", "deduplicated observation frames", "alice", "operational")
	edges.AppendRow("catalogue", "model", "calibrated source catalogue", "bob", "buggy")
	edges.AppendRow("bob", "model", "priors and tuning decisions", "bob", "operational")
	edges.AppendRow("model", "report", "posterior summaries", "bob", "not developed")
	edges.AppendRow("report", "carol", "weekly status digest", "carol", "operational")
	edges.AppendRow("carol", "ingest", "schedule overrides", "carol", "buggy")

	nodes := tabular.New("name", "category")
	nodes.AppendRow("alice", "humans")
	nodes.AppendRow("bob", "humans")
	nodes.AppendRow("carol", "humans")
	nodes.AppendRow("ingest", "tools")
	nodes.AppendRow("catalogue", "data")
	nodes.AppendRow("model", "tools")
	nodes.AppendRow("report", "artefacts")

	return NewFixture("research-pipeline", edges, nodes)
}

// MessyPipeline exercises the warning paths: a duplicate node id, an
// endpoint nobody catalogued, and an edge missing its target.
func MessyPipeline() *Fixture {
	edges := tabular.New("from", "to", "description", "responsible", "status")
	edges.AppendRow("alice", "ingest", "raw drops", "alice", "operational")
	edges.AppendRow("ingest", "scratch-db", "intermediate dumps", "", "buggy")
	edges.AppendRow("scratch-db", "", "unfiled outputs", "", "not developed")
	edges.AppendRow("alice", "report", "manual summaries", "alice", "operational")

	nodes := tabular.New("name", "category")
	nodes.AppendRow("alice", "humans")
	nodes.AppendRow("ingest", "tools")
	nodes.AppendRow("ingest", "data")
	nodes.AppendRow("report", "artefacts")

	return NewFixture("messy-pipeline", edges, nodes)
}

var templates = map[string]func() *Fixture{
	"research-pipeline": ResearchPipeline,
	"messy-pipeline":    MessyPipeline,
}

// Template returns a named built-in fixture, freshly constructed.
func Template(name string) (*Fixture, error) {
	ctor, ok := templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q: %w", name, ErrUnknownTemplate)
	}
	return ctor(), nil
}

// TemplateNames lists the built-in fixtures in stable order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
