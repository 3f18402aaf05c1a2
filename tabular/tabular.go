// SPDX-License-Identifier: MIT

package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Sentinel errors for table access.
var (
	// ErrMissingColumn indicates a required column is not present in the header.
	ErrMissingColumn = errors.New("tabular: missing column")

	// ErrBadNumber indicates a cell that does not parse as the requested type.
	ErrBadNumber = errors.New("tabular: malformed value")

	// ErrEmptyTable indicates the input had no header row.
	ErrEmptyTable = errors.New("tabular: empty table")
)

// Table is an in-memory CSV table addressed by column name.
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// New returns an empty table with the given header.
func New(header ...string) *Table {
	t := &Table{Header: append([]string(nil), header...)}
	t.reindex()

	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		t.index[strings.TrimSpace(h)] = i
	}
}

// Read parses a CSV stream whose first record is the header.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyTable
	}
	t := &Table{Header: records[0], Rows: records[1:]}
	t.reindex()

	return t, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return t, nil
}

// Has reports whether the header contains column.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Column returns the position of the first present name among names.
// Several names allow for the aliases different tools use ("index"/"id").
func (t *Table) Column(names ...string) (int, error) {
	for _, n := range names {
		if i, ok := t.index[n]; ok {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(names, "|"))
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// String returns the cell at (row, col); short records yield "".
func (t *Table) String(row, col int) string {
	rec := t.Rows[row]
	if col < 0 || col >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[col])
}

// Float parses the cell at (row, col). Empty cells read as 0.
func (t *Table) Float(row, col int) (float64, error) {
	s := t.String(row, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d column %q: %q", ErrBadNumber, row+1, t.Header[col], s)
	}

	return v, nil
}

// Bool parses the cell at (row, col). Accepts true/false, 1/0 and
// numeric forms such as "1.0". Empty cells read as false.
func (t *Table) Bool(row, col int) (bool, error) {
	s := strings.ToLower(t.String(row, col))
	switch s {
	case "", "false", "0", "no":
		return false, nil
	case "true", "1", "yes":
		return true, nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v != 0, nil
	}

	return false, fmt.Errorf("%w: row %d column %q: %q", ErrBadNumber, row+1, t.Header[col], s)
}

// Append adds a record. The record is copied.
func (t *Table) Append(record ...string) {
	t.Rows = append(t.Rows, append([]string(nil), record...))
}

// Write encodes the table as CSV, header first.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}

	return cw.Error()
}

// WriteFile writes the table to path, truncating any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = t.Write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}

	return f.Close()
}

// FormatFloat renders v in the shortest form that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
