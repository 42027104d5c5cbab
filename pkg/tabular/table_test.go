package tabular

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewAndAppendRow(t *testing.T) {
	tbl := New("from", "to", "status")

	if len(tbl.Columns) != 3 {
		t.Fatalf("Columns = %d, want 3", len(tbl.Columns))
	}
	if !tbl.IsEmpty() {
		t.Error("new table should be empty")
	}

	tbl.AppendRow("a", "b", "operational")
	tbl.AppendRow("b", "c") // short row pads with null

	if tbl.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", tbl.RowCount())
	}
	if got := tbl.Cell(0, "status"); got != "operational" {
		t.Errorf("Cell(0, status) = %q, want operational", got)
	}
	if got := tbl.Cell(1, "status"); got != "" {
		t.Errorf("Cell(1, status) = %q, want null", got)
	}
}

func TestAppendRowTruncatesLongRows(t *testing.T) {
	tbl := New("a", "b")
	tbl.AppendRow("1", "2", "3", "4")

	if len(tbl.Rows[0]) != 2 {
		t.Errorf("row width = %d, want 2", len(tbl.Rows[0]))
	}
}

func TestColumnIndex(t *testing.T) {
	tbl := New("name", "category")

	i, ok := tbl.ColumnIndex("category")
	if !ok || i != 1 {
		t.Errorf("ColumnIndex(category) = %d, %v, want 1, true", i, ok)
	}
	if _, ok := tbl.ColumnIndex("missing"); ok {
		t.Error("ColumnIndex(missing) should not be found")
	}
	if tbl.HasColumn("missing") {
		t.Error("HasColumn(missing) = true, want false")
	}
}

func TestCellOutOfRange(t *testing.T) {
	tbl := New("a")
	tbl.AppendRow("x")

	if got := tbl.Cell(-1, "a"); got != "" {
		t.Errorf("Cell(-1, a) = %q, want null", got)
	}
	if got := tbl.Cell(5, "a"); got != "" {
		t.Errorf("Cell(5, a) = %q, want null", got)
	}
	if got := tbl.Cell(0, "nope"); got != "" {
		t.Errorf("Cell(0, nope) = %q, want null", got)
	}
}

func TestDistinct(t *testing.T) {
	tbl := New("name", "category")
	tbl.AppendRow("A", "tools")
	tbl.AppendRow("B", "humans")
	tbl.AppendRow("C", "tools")
	tbl.AppendRow("D", "  ") // whitespace counts as null
	tbl.AppendRow("E", "data")

	got := tbl.Distinct("category")
	want := []string{"tools", "humans", "data"}
	if len(got) != len(want) {
		t.Fatalf("Distinct = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Distinct[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClone(t *testing.T) {
	tbl := New("from", "to")
	tbl.AppendRow("a", "b")

	clone := tbl.Clone()
	clone.Rows[0][0] = "mutated"
	clone.Columns[0] = "renamed"

	if tbl.Rows[0][0] != "a" {
		t.Error("clone mutation leaked into original rows")
	}
	if tbl.Columns[0] != "from" {
		t.Error("clone mutation leaked into original columns")
	}

	var nilTable *Table
	if nilTable.Clone() != nil {
		t.Error("Clone of nil table should be nil")
	}
}

func TestIsNull(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t", true},
		{"x", false},
		{" x ", false},
	}
	for _, tt := range tests {
		if got := IsNull(tt.cell); got != tt.want {
			t.Errorf("IsNull(%q) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestReadCSV(t *testing.T) {
	input := "from,to,status\na,b,operational\nb,c,buggy\nc,d\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if len(tbl.Columns) != 3 {
		t.Fatalf("Columns = %d, want 3", len(tbl.Columns))
	}
	if tbl.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3", tbl.RowCount())
	}
	if got := tbl.Cell(1, "status"); got != "buggy" {
		t.Errorf("Cell(1, status) = %q, want buggy", got)
	}
	if got := tbl.Cell(2, "status"); got != "" {
		t.Errorf("Cell(2, status) = %q, want null (ragged row)", got)
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("ReadCSV of empty input should fail")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := New("name", "category")
	tbl.AppendRow("alice", "humans")
	tbl.AppendRow("pipeline", "tools")

	var buf bytes.Buffer
	if err := tbl.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if back.RowCount() != 2 {
		t.Fatalf("RowCount = %d, want 2", back.RowCount())
	}
	if got := back.Cell(0, "category"); got != "humans" {
		t.Errorf("Cell(0, category) = %q, want humans", got)
	}
}

func TestFromRecords(t *testing.T) {
	tbl, err := FromRecords([][]string{
		{"from", "to"},
		{"a", "b"},
	})
	if err != nil {
		t.Fatalf("FromRecords failed: %v", err)
	}
	if tbl.RowCount() != 1 {
		t.Errorf("RowCount = %d, want 1", tbl.RowCount())
	}

	if _, err := FromRecords(nil); err == nil {
		t.Error("FromRecords(nil) should fail")
	}
}
