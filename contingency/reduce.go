// SPDX-License-Identifier: MIT

package contingency

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/katalvlaran/dcgrid/tabular"
)

// File names of the half-plane system exchanged with the reduction tool.
const (
	FileA       = "A_py.csv"
	FileB       = "b_py.csv"
	FileIndex   = "I_py.csv"
	FileXBounds = "x_bounds_py.csv"
)

// FullOption disables reduction.
const FullOption = "full"

// Bound is the admissible range of one injection variable.
type Bound struct{ Lo, Hi float64 }

// HalfPlaneSystem is A·x <= b over nodal injections x within XBounds.
// Every CBCO contributes two rows, +PTDF and -PTDF, both with its RAM.
type HalfPlaneSystem struct {
	Nodes   []string
	A       [][]float64
	B       []float64
	Index   []Key // originating (cb, co) of each row
	XBounds []Bound
}

// Rows returns the number of half-planes.
func (h *HalfPlaneSystem) Rows() int { return len(h.B) }

// WriteFiles writes the system into dir as FileA, FileB, FileIndex and FileXBounds.
func (h *HalfPlaneSystem) WriteFiles(dir string) error {
	a := tabular.New(h.Nodes...)
	b := tabular.New("b")
	idx := tabular.New("cb", "co")
	for r := range h.A {
		rec := make([]string, len(h.A[r]))
		for c, v := range h.A[r] {
			rec[c] = tabular.FormatFloat(v)
		}
		a.Append(rec...)
		b.Append(tabular.FormatFloat(h.B[r]))
		idx.Append(h.Index[r].CB, h.Index[r].CO)
	}
	xb := tabular.New("node", "lower", "upper")
	for i, bd := range h.XBounds {
		xb.Append(h.Nodes[i], tabular.FormatFloat(bd.Lo), tabular.FormatFloat(bd.Hi))
	}
	for name, t := range map[string]*tabular.Table{FileA: a, FileB: b, FileIndex: idx, FileXBounds: xb} {
		if err := t.WriteFile(filepath.Join(dir, name)); err != nil {
			return contingencyErrorf("WriteFiles", err)
		}
	}

	return nil
}

// ReadIndexFile parses the row indexes returned by the reduction tool: one
// zero-based index into the system rows per record, in a column named
// "constraints" or "index" (or the first column).
func ReadIndexFile(path string) ([]int, error) {
	t, err := tabular.ReadFile(path)
	if err != nil {
		return nil, contingencyErrorf("ReadIndexFile", err)
	}
	col, err := t.Column("constraints", "index")
	if err != nil {
		col = 0
	}
	out := make([]int, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		s := t.String(r, col)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, contingencyErrorf("ReadIndexFile", fmt.Errorf("%w: %q", tabular.ErrBadNumber, s))
		}
		out = append(out, v)
	}

	return out, nil
}

// Reducer finds the rows of a half-plane system that bound its feasible region.
type Reducer interface {
	Reduce(ctx context.Context, option string, sys *HalfPlaneSystem) ([]int, error)
}

// ReducerFunc adapts a function to Reducer.
type ReducerFunc func(ctx context.Context, option string, sys *HalfPlaneSystem) ([]int, error)

// Reduce implements Reducer.
func (f ReducerFunc) Reduce(ctx context.Context, option string, sys *HalfPlaneSystem) ([]int, error) {
	return f(ctx, option, sys)
}

// Reduction parameterizes ReduceContingencies.
type Reduction struct {
	Option  string
	Reducer Reducer

	// RAM returns the margin of a row; nil uses the line capacity.
	RAM func(CBCO) float64

	// Bounds holds one range per node; nil uses ± the summed capacity of the
	// lines at each node.
	Bounds []Bound
}

// BuildHalfPlaneSystem assembles the system of the defined rows of set.
func (a *Analyzer) BuildHalfPlaneSystem(set *Set, ram func(CBCO) float64, bounds []Bound) *HalfPlaneSystem {
	if ram == nil {
		ram = a.capacityRAM
	}
	if bounds == nil {
		bounds = a.defaultBounds()
	}
	sys := &HalfPlaneSystem{Nodes: set.Nodes, XBounds: bounds}
	for _, r := range set.Rows {
		if r.Undefined {
			continue
		}
		b := ram(r)
		neg := make([]float64, len(r.PTDF))
		for i, v := range r.PTDF {
			neg[i] = -v
		}
		key := Key{r.CB, r.CO}
		sys.A = append(sys.A, r.PTDF, neg)
		sys.B = append(sys.B, b, b)
		sys.Index = append(sys.Index, key, key)
	}

	return sys
}

// ReduceContingencies returns set unchanged for FullOption. Otherwise it
// hands the half-plane system of set to r.Reducer and keeps the rows whose
// (cb, co) the reducer selected, in their original order. Undefined rows
// bypass the reduction and are always kept.
func (a *Analyzer) ReduceContingencies(ctx context.Context, set *Set, r Reduction) (*Set, error) {
	if r.Option == "" || r.Option == FullOption {
		return set, nil
	}
	if r.Reducer == nil {
		return nil, contingencyErrorf("ReduceContingencies", ErrNoReducer)
	}
	sys := a.BuildHalfPlaneSystem(set, r.RAM, r.Bounds)
	idx, err := r.Reducer.Reduce(ctx, r.Option, sys)
	if err != nil {
		return nil, contingencyErrorf("ReduceContingencies", err)
	}
	keep := make(map[Key]bool, len(idx))
	for _, i := range idx {
		if i < 0 || i >= sys.Rows() {
			return nil, contingencyErrorf("ReduceContingencies", fmt.Errorf("%w: %d of %d", ErrBadIndex, i, sys.Rows()))
		}
		keep[sys.Index[i]] = true
	}
	out := set.Filter(func(c CBCO) bool { return c.Undefined || keep[Key{c.CB, c.CO}] })
	a.log.Info("contingencies reduced", "option", r.Option, "rows", set.Len(), "retained", out.Len())

	return out, nil
}

func (a *Analyzer) capacityRAM(c CBCO) float64 {
	l, ok := a.topo.Line(c.CB)
	if !ok {
		return math.Inf(1)
	}

	return l.Capacity
}

func (a *Analyzer) defaultBounds() []Bound {
	out := make([]Bound, a.topo.NumNodes())
	for _, l := range a.topo.Lines() {
		for _, n := range [2]string{l.NodeI, l.NodeJ} {
			i, _ := a.topo.NodeIndex(n)
			out[i].Hi += l.Capacity
			out[i].Lo -= l.Capacity
		}
	}

	return out
}
