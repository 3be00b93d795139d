// Package records reads and writes the tabular files that carry statements
// to the classifier and labels back out.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"dictionary_classifier/classifier"
)

const (
	// StatementColumn holds the text to classify
	StatementColumn = "Statement"
	// LabelsColumn receives the comma-joined labels
	LabelsColumn = "labels"
)

// ErrMissingStatement is returned when the header has no Statement column.
var ErrMissingStatement = fmt.Errorf("csv must contain a %q column", StatementColumn)

// ErrRowCount is returned when labels and rows do not line up
var ErrRowCount = errors.New("labels count does not match row count")

// ErrTooManyFields is returned for a row with more cells than the header
var ErrTooManyFields = errors.New("row has more fields than the header")

// Table is a CSV file held in memory
type Table struct {
	Header []string
	Rows   [][]string

	statement int
}

// ReadCSV reads a header row followed by records. Short rows are padded
// with empty cells, rows wider than the header are rejected. An empty
// Statement cell counts as missing text.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read csv: empty file: %w", ErrMissingStatement)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	// Excel likes to prefix UTF-8 files with a byte order mark
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	t := &Table{Header: header, statement: -1}
	for i, name := range header {
		if name == StatementColumn {
			t.statement = i
			break
		}
	}
	if t.statement < 0 {
		return nil, ErrMissingStatement
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("read csv: line %d: %d fields, header has %d: %w",
				line, len(row), len(header), ErrTooManyFields)
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// Statements returns the Statement cell of every row, with empty cells
// reported as classifier.Missing.
func (t *Table) Statements() []interface{} {
	out := make([]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		if cell := row[t.statement]; cell != "" {
			out[i] = cell
		} else {
			out[i] = classifier.Missing
		}
	}
	return out
}

// SetLabels stores one labels string per row, adding the labels column or
// overwriting it if the file already had one.
func (t *Table) SetLabels(labels []string) error {
	if len(labels) != len(t.Rows) {
		return fmt.Errorf("%w: %d labels for %d rows", ErrRowCount, len(labels), len(t.Rows))
	}

	col := -1
	for i, name := range t.Header {
		if name == LabelsColumn {
			col = i
			break
		}
	}
	if col < 0 {
		col = len(t.Header)
		t.Header = append(t.Header, LabelsColumn)
	}

	for i := range t.Rows {
		for len(t.Rows[i]) <= col {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i][col] = labels[i]
	}
	return nil
}

// Head returns a table holding at most the first n rows. The rows are
// shared with t.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Header: t.Header, Rows: t.Rows[:n], statement: t.statement}
}

// Records returns the rows as column name to value maps, for JSON previews.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Header))
		for j, name := range t.Header {
			if j < len(row) {
				rec[name] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

// WriteCSV writes the header and rows
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
