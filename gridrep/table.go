// SPDX-License-Identifier: MIT

package gridrep

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/tabular"
)

// Basecase is the co value of N-0 rows.
const Basecase = contingency.Basecase

// Axis tells whether a table's coefficient columns are nodes or zones.
type Axis int

// Column axes.
const (
	NodeAxis Axis = iota
	ZoneAxis
)

func (a Axis) String() string {
	if a == ZoneAxis {
		return "zone"
	}

	return "node"
}

// Row is one constraint: Coeffs·x <= RAM over the table's columns.
type Row struct {
	Timestep  string // empty unless the table is time-dependent
	CB        string
	CO        string
	RAM       float64
	Coeffs    []float64
	Undefined bool // islanding outage kept as always-binding; RAM is +Inf
}

// Table is a grid representation table.
type Table struct {
	Axis    Axis
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Timed reports whether any row carries a timestep.
func (t *Table) Timed() bool {
	for _, r := range t.Rows {
		if r.Timestep != "" {
			return true
		}
	}

	return false
}

// Equal reports exact equality of axis, columns and rows.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Axis != o.Axis || len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		a, b := t.Rows[i], o.Rows[i]
		if a.Timestep != b.Timestep || a.CB != b.CB || a.CO != b.CO || a.RAM != b.RAM ||
			a.Undefined != b.Undefined || len(a.Coeffs) != len(b.Coeffs) {
			return false
		}
		for j := range a.Coeffs {
			if a.Coeffs[j] != b.Coeffs[j] {
				return false
			}
		}
	}

	return true
}

// WriteCSV encodes t. Undefined rows carry ram "+Inf".
func (t *Table) WriteCSV(w io.Writer) error {
	timed := t.Timed()
	header := []string{"cb", "co", "ram"}
	if timed {
		header = append([]string{"timestep"}, header...)
	}
	out := tabular.New(append(header, t.Columns...)...)
	for _, r := range t.Rows {
		rec := make([]string, 0, len(header)+len(r.Coeffs))
		if timed {
			rec = append(rec, r.Timestep)
		}
		rec = append(rec, r.CB, r.CO, tabular.FormatFloat(r.RAM))
		for _, v := range r.Coeffs {
			rec = append(rec, tabular.FormatFloat(v))
		}
		out.Append(rec...)
	}

	return out.Write(w)
}

// WriteFile writes t to path with WriteCSV.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("gridrep: %w", err)
	}
	if err = t.WriteCSV(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("gridrep: %s: %w", path, err)
	}

	return f.Close()
}

// ReadCSV decodes a table written by WriteCSV. The axis is not part of the
// file and must be supplied.
func ReadCSV(r io.Reader, axis Axis) (*Table, error) {
	in, err := tabular.Read(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	first := 0
	if in.Has("timestep") {
		first = 1
	}
	if len(in.Header) < first+3 || in.Header[first] != "cb" || in.Header[first+1] != "co" || in.Header[first+2] != "ram" {
		return nil, fmt.Errorf("%w: header %v", ErrMalformedTable, in.Header)
	}
	t := &Table{Axis: axis, Columns: append([]string(nil), in.Header[first+3:]...)}
	for i := 0; i < in.Len(); i++ {
		row := Row{CB: in.String(i, first), CO: in.String(i, first+1)}
		if first == 1 {
			row.Timestep = in.String(i, 0)
		}
		if row.RAM, err = in.Float(i, first+2); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
		}
		row.Coeffs = make([]float64, len(t.Columns))
		for c := range t.Columns {
			if row.Coeffs[c], err = in.Float(i, first+3+c); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
			}
		}
		row.Undefined = row.CO != Basecase && math.IsInf(row.RAM, 1)
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}
