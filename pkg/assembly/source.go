package assembly

import (
	"context"

	"github.com/softloud/sig-vis/pkg/tabular"
)

// Source supplies the two input tables. Implementations live in
// pkg/dataset; the assembler only ever calls these two accessors and
// takes ownership of the returned tables.
type Source interface {
	// EdgeTable returns the edge list table.
	EdgeTable(ctx context.Context) (*tabular.Table, error)
	// NodeTable returns the node attribute table.
	NodeTable(ctx context.Context) (*tabular.Table, error)
}
