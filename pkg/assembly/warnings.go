package assembly

import "fmt"

// WarningKind classifies a data-quality finding. Warnings never abort
// a build; they are collected and surfaced alongside the graph.
type WarningKind string

const (
	// WarnEmptyInput flags a table with no data rows.
	WarnEmptyInput WarningKind = "empty_input"
	// WarnNullValue flags a null edge endpoint; the row is skipped.
	WarnNullValue WarningKind = "null_value"
	// WarnDuplicateKey flags a repeated node id; the first occurrence wins.
	WarnDuplicateKey WarningKind = "duplicate_key"
	// WarnUnresolvedReference flags an endpoint with no category match
	// during aggregation.
	WarnUnresolvedReference WarningKind = "unresolved_reference"
)

// Warning is a single data-quality finding from a build.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Table   string      `json:"table,omitempty"`
	Column  string      `json:"column,omitempty"`
	Row     int         `json:"row,omitempty"` // 1-based data row
	Value   string      `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	loc := w.Table
	if w.Column != "" {
		loc = fmt.Sprintf("%s[%s]", loc, w.Column)
	}
	if w.Row > 0 {
		loc = fmt.Sprintf("%s row %d", loc, w.Row)
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Kind, loc, w.Message)
}

func warnEmptyInput(table string) Warning {
	return Warning{
		Kind:    WarnEmptyInput,
		Table:   table,
		Message: "table has no data rows",
	}
}

func warnNullEndpoint(column string, row int) Warning {
	return Warning{
		Kind:    WarnNullValue,
		Table:   TableEdges,
		Column:  column,
		Row:     row,
		Message: "null endpoint, edge skipped",
	}
}

func warnDuplicateKey(column string, row int, value string) Warning {
	return Warning{
		Kind:    WarnDuplicateKey,
		Table:   TableNodes,
		Column:  column,
		Row:     row,
		Value:   value,
		Message: fmt.Sprintf("duplicate id %q, first occurrence wins", value),
	}
}

func warnUnresolvedReference(column string, row int, value string) Warning {
	return Warning{
		Kind:    WarnUnresolvedReference,
		Table:   TableEdges,
		Column:  column,
		Row:     row,
		Value:   value,
		Message: fmt.Sprintf("no category for endpoint %q", value),
	}
}

// CountByKind tallies warnings per kind.
func CountByKind(warnings []Warning) map[WarningKind]int {
	counts := make(map[WarningKind]int)
	for _, w := range warnings {
		counts[w.Kind]++
	}
	return counts
}
