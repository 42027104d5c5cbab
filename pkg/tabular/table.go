// Package tabular provides the flat string-celled table model that
// dataset sources produce and the graph assembler consumes.
package tabular

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns over string cells. A cell
// holding an empty or whitespace-only string is treated as null.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: make([][]string, 0)}
}

// FromRecords builds a table from raw records where the first record
// is the header row. Short data rows are padded with null cells, long
// ones are truncated to the header width.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("tabular: no header record")
	}
	t := New(records[0]...)
	for _, rec := range records[1:] {
		t.AppendRow(rec...)
	}
	return t, nil
}

// ColumnIndex returns the position of a column by name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// AppendRow adds a row, padding or truncating to the column width.
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Cell returns the value at (row, column). Out-of-range coordinates
// and unknown columns yield a null cell.
func (t *Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	i, ok := t.ColumnIndex(column)
	if !ok || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no data rows.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// Distinct returns the non-null values of a column in order of first
// appearance.
func (t *Table) Distinct(column string) []string {
	i, ok := t.ColumnIndex(column)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(t.Rows))
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if i >= len(row) {
			continue
		}
		v := row[i]
		if IsNull(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	clone := &Table{
		Columns: make([]string, len(t.Columns)),
		Rows:    make([][]string, len(t.Rows)),
	}
	copy(clone.Columns, t.Columns)
	for i, row := range t.Rows {
		clone.Rows[i] = make([]string, len(row))
		copy(clone.Rows[i], row)
	}
	return clone
}

// IsNull reports whether a cell value counts as null.
func IsNull(cell string) bool {
	return strings.TrimSpace(cell) == ""
}
