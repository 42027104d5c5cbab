package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV decodes a table from CSV. The first record is the header.
// Ragged rows are tolerated; short rows read as null cells.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("tabular: no header record")
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: read header: %w", err)
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tabular: read row %d: %w", t.RowCount()+1, err)
		}
		t.AppendRow(record...)
	}
	return t, nil
}

// WriteCSV encodes the table as CSV with a header record.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("tabular: write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("tabular: write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
