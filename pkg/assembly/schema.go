package assembly

import (
	"github.com/softloud/sig-vis/pkg/tabular"
)

// Schema names the required columns of the two input tables. Any edge
// column not named here rides along as an edge attribute.
type Schema struct {
	EdgeFrom     string `json:"edge_from" yaml:"edge_from"`
	EdgeTo       string `json:"edge_to" yaml:"edge_to"`
	NodeID       string `json:"node_id" yaml:"node_id"`
	NodeCategory string `json:"node_category" yaml:"node_category"`
}

// DefaultSchema returns the column names the bundled datasets use.
func DefaultSchema() Schema {
	return Schema{
		EdgeFrom:     "from",
		EdgeTo:       "to",
		NodeID:       "name",
		NodeCategory: "category",
	}
}

// normalized fills blank schema fields from the defaults.
func (s Schema) normalized() Schema {
	def := DefaultSchema()
	if s.EdgeFrom == "" {
		s.EdgeFrom = def.EdgeFrom
	}
	if s.EdgeTo == "" {
		s.EdgeTo = def.EdgeTo
	}
	if s.NodeID == "" {
		s.NodeID = def.NodeID
	}
	if s.NodeCategory == "" {
		s.NodeCategory = def.NodeCategory
	}
	return s
}

// CategoryOf resolves the category an id aggregates into. Resolution
// order: a node row with that id and a non-null category wins; failing
// that, an id that is itself a category name maps to itself, which
// keeps repeated aggregation stable. The second return is false when
// nothing resolves.
func CategoryOf(nodes *tabular.Table, schema Schema, id string) (string, bool) {
	if nodes == nil || tabular.IsNull(id) {
		return "", false
	}
	schema = schema.normalized()
	idIdx, ok := nodes.ColumnIndex(schema.NodeID)
	if !ok {
		return "", false
	}
	catIdx, ok := nodes.ColumnIndex(schema.NodeCategory)
	if !ok {
		return "", false
	}

	for _, row := range nodes.Rows {
		if idIdx >= len(row) || row[idIdx] != id {
			continue
		}
		if catIdx < len(row) && !tabular.IsNull(row[catIdx]) {
			return row[catIdx], true
		}
		// first occurrence wins; a null category falls through to the
		// self-mapping check
		break
	}

	for _, row := range nodes.Rows {
		if catIdx < len(row) && row[catIdx] == id {
			return id, true
		}
	}

	return "", false
}

// joinCategory is the plain left join used when annotating vertices:
// exact id match, first occurrence wins, null when absent. Unlike
// CategoryOf it never applies the self-mapping heuristic.
func joinCategory(nodes *tabular.Table, schema Schema, id string) string {
	if nodes == nil {
		return ""
	}
	idIdx, ok := nodes.ColumnIndex(schema.NodeID)
	if !ok {
		return ""
	}
	catIdx, ok := nodes.ColumnIndex(schema.NodeCategory)
	if !ok {
		return ""
	}
	for _, row := range nodes.Rows {
		if idIdx < len(row) && row[idIdx] == id {
			if catIdx < len(row) && !tabular.IsNull(row[catIdx]) {
				return row[catIdx]
			}
			return ""
		}
	}
	return ""
}
