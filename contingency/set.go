// SPDX-License-Identifier: MIT

package contingency

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/dcgrid/metrics"
	"github.com/katalvlaran/dcgrid/network"
)

// CBCO is one critical-branch / critical-outage row.
type CBCO struct {
	CB   string
	CO   string    // Basecase for N-0 rows
	PTDF []float64 // per node, topology column order

	// Undefined marks a row whose outage islands the network; PTDF then
	// holds the base row of CB.
	Undefined bool
}

// Set is an ordered collection of CBCO rows over one node axis.
type Set struct {
	Nodes []string
	Rows  []CBCO
}

// Len returns the number of rows.
func (s *Set) Len() int { return len(s.Rows) }

// Filter returns a set holding the rows for which keep returns true, in order.
func (s *Set) Filter(keep func(CBCO) bool) *Set {
	out := &Set{Nodes: s.Nodes}
	for _, r := range s.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}

	return out
}

// Key identifies a (cb, co) pair.
type Key struct{ CB, CO string }

// Keys returns the (cb, co) pair of every row.
func (s *Set) Keys() []Key {
	out := make([]Key, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = Key{r.CB, r.CO}
	}

	return out
}

// SetOption configures FullSet.
type SetOption func(*setOptions)

type setOptions struct {
	sensitivity   float64
	monitored     []string
	keepUndefined bool
	basecase      bool
}

// WithSensitivity drops N-1 rows whose |LODF[cb][co]| is below s.
func WithSensitivity(s float64) SetOption {
	return func(o *setOptions) { o.sensitivity = s }
}

// WithMonitored restricts monitored lines to ids (default: all lines).
func WithMonitored(ids ...string) SetOption {
	return func(o *setOptions) { o.monitored = append([]string(nil), ids...) }
}

// WithKeepUndefined keeps rows of islanding outages, marked Undefined,
// instead of dropping them.
func WithKeepUndefined(keep bool) SetOption {
	return func(o *setOptions) { o.keepUndefined = keep }
}

// WithoutBasecase omits the N-0 rows.
func WithoutBasecase() SetOption {
	return func(o *setOptions) { o.basecase = false }
}

// FullSet enumerates the N-0 rows of every monitored line followed by the
// N-1 rows of every (monitored, outage) pair with cb != co, where outages
// are the lines flagged Contingency.
//
// Rows are grouped by outage in line order and by monitored line within an
// outage. Work is fanned out per outage across the analyzer's workers.
func (a *Analyzer) FullSet(ctx context.Context, opts ...SetOption) (*Set, error) {
	o := setOptions{basecase: true}
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()
	lines := a.topo.Lines()

	monitored := make([]int, 0, len(lines))
	if o.monitored == nil {
		for l := range lines {
			monitored = append(monitored, l)
		}
	} else {
		for _, id := range o.monitored {
			l, ok := a.topo.LineIndex(id)
			if !ok {
				return nil, contingencyErrorf("FullSet", fmt.Errorf("%w: %q", ErrUnknownLine, id))
			}
			monitored = append(monitored, l)
		}
	}

	set := &Set{Nodes: a.topo.NodeIDs()}
	if o.basecase {
		for _, l := range monitored {
			set.Rows = append(set.Rows, CBCO{CB: lines[l].ID, CO: Basecase, PTDF: a.baseRow(l)})
		}
	}

	// one slot per outage, filled concurrently, concatenated in order
	slots := make([][]CBCO, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for k := range lines {
		if !lines[k].Contingency {
			continue
		}
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[k] = a.outageRows(lines, k, monitored, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, contingencyErrorf("FullSet", err)
	}
	for _, rows := range slots {
		set.Rows = append(set.Rows, rows...)
	}

	metrics.ContingencyRows.Set(float64(len(set.Rows)))
	a.log.Debug("contingency set enumerated",
		"rows", len(set.Rows), "monitored", len(monitored), "elapsed", time.Since(start))

	return set, nil
}

func (a *Analyzer) outageRows(lines []network.Line, k int, monitored []int, o setOptions) []CBCO {
	co := lines[k].ID
	if a.undefined[k] {
		if !o.keepUndefined {
			return nil
		}
		rows := make([]CBCO, 0, len(monitored))
		for _, l := range monitored {
			if l != k {
				rows = append(rows, CBCO{CB: lines[l].ID, CO: co, PTDF: a.baseRow(l), Undefined: true})
			}
		}
		return rows
	}

	var rows []CBCO
	for _, l := range monitored {
		if l == k {
			continue
		}
		if o.sensitivity > 0 && math.Abs(a.lodf.At(l, k)) < o.sensitivity {
			continue
		}
		rows = append(rows, CBCO{CB: lines[l].ID, CO: co, PTDF: a.n1Row(l, k, nil)})
	}

	return rows
}

func (a *Analyzer) baseRow(l int) []float64 {
	row := make([]float64, a.topo.NumNodes())
	for n := range row {
		row[n] = a.topo.PTDFAt(l, n)
	}

	return row
}
