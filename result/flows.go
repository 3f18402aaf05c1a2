// SPDX-License-Identifier: MIT

package result

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
)

// Injection is the net nodal injection per timestep.
type Injection struct {
	Nodes     []string
	Timesteps []string
	Values    [][]float64 // [timestep][node]
}

// Clone returns a deep copy of in.
func (in *Injection) Clone() *Injection {
	out := &Injection{Nodes: slices.Clone(in.Nodes), Timesteps: slices.Clone(in.Timesteps), Values: make([][]float64, len(in.Values))}
	for i, v := range in.Values {
		out.Values[i] = slices.Clone(v)
	}

	return out
}

// At returns the injection vector of timestep t.
func (in *Injection) At(t string) ([]float64, bool) {
	for i, ts := range in.Timesteps {
		if ts == t {
			return in.Values[i], true
		}
	}

	return nil, false
}

// Flow is the flow on line CB under outage CO at one timestep.
type Flow struct {
	Timestep string
	CB       string
	CO       string
	Flow     float64
	Capacity float64
}

// Loading returns |Flow| / Capacity; +Inf for zero capacity with non-zero flow.
func (f Flow) Loading() float64 {
	if f.Capacity == 0 {
		if f.Flow == 0 {
			return 0
		}
		return math.Inf(1)
	}

	return math.Abs(f.Flow) / f.Capacity
}

// FlowTable is an ordered set of flows: timestep-major, then outage, then line.
type FlowTable struct {
	Rows []Flow
}

// Len returns the number of rows.
func (t *FlowTable) Len() int { return len(t.Rows) }

// Clone returns a copy of t that can be modified without touching the cache.
func (t *FlowTable) Clone() *FlowTable { return &FlowTable{Rows: slices.Clone(t.Rows)} }

// Overload is one flow above its limit.
type Overload struct {
	Flow
	Limit    float64 // capacity × multiplier
	Overload float64 // |flow| - limit
}

// OverloadSummary aggregates the overloads of one (cb, co) pair.
type OverloadSummary struct {
	CB          string
	CO          string
	Timesteps   int
	MaxOverload float64
	MaxLoading  float64
}

// Overloads lists violating flows and their per-line summary.
type Overloads struct {
	Points []Overload
	Lines  []OverloadSummary // in order of first violation
}

// Count returns the number of distinct overloaded (cb, co) pairs.
func (o *Overloads) Count() int { return len(o.Lines) }

// Clone returns a copy of o.
func (o *Overloads) Clone() *Overloads {
	return &Overloads{Points: slices.Clone(o.Points), Lines: slices.Clone(o.Lines)}
}

// NodalInjection returns generation - storage charging - demand +
// infeasibility_pos - infeasibility_neg for every node and timestep.
func (r *Result) NodalInjection() (*Injection, error) {
	return cached(r.cache, KeyInjection, r.nodalInjection)
}

func (r *Result) nodalInjection() (*Injection, error) {
	nodes := r.topo.NodeIDs()
	col := make(map[string]int, len(nodes))
	for i, n := range nodes {
		col[n] = i
	}
	in := &Injection{Nodes: nodes, Timesteps: r.Timesteps(), Values: make([][]float64, len(r.Attributes.ModelHorizon))}
	for i := range in.Values {
		in.Values[i] = make([]float64, len(nodes))
	}

	addPlants := func(name string, sign float64) error {
		for _, rec := range r.Vars[name] {
			ti, ok := r.steps[rec.Timestep]
			if !ok {
				continue
			}
			p, ok := r.data.Plant(rec.Index)
			if !ok {
				return fmt.Errorf("%w: %s: unknown plant %q", ErrMalformedResult, name, rec.Index)
			}
			in.Values[ti][col[p.Node]] += sign * rec.Value
		}
		return nil
	}
	addNodes := func(name string, sign float64) error {
		for _, rec := range r.Vars[name] {
			ti, ok := r.steps[rec.Timestep]
			if !ok {
				continue
			}
			ni, ok := col[rec.Index]
			if !ok {
				return fmt.Errorf("%w: %s: unknown node %q", ErrMalformedResult, name, rec.Index)
			}
			in.Values[ti][ni] += sign * rec.Value
		}
		return nil
	}
	for _, step := range []struct {
		add  func(string, float64) error
		name string
		sign float64
	}{
		{addPlants, VarG, 1},
		{addPlants, VarDES, -1},
		{addPlants, VarDPS, -1},
		{addNodes, VarInfeasPos, 1},
		{addNodes, VarInfeasNeg, -1},
	} {
		if err := step.add(step.name, step.sign); err != nil {
			return nil, err
		}
	}

	for ti, t := range in.Timesteps {
		for i, d := range r.data.NodeDemand(t) {
			if ni, ok := col[r.data.Nodes[i].ID]; ok {
				in.Values[ti][ni] -= d
			}
		}
	}

	return in, nil
}

// N0Flow returns the basecase flow PTDF·injection of every line and timestep.
func (r *Result) N0Flow() (*FlowTable, error) {
	return cached(r.cache, KeyN0Flow, r.n0Flow)
}

func (r *Result) n0Flow() (*FlowTable, error) {
	in, err := r.NodalInjection()
	if err != nil {
		return nil, err
	}
	lines := r.topo.Lines()
	out := &FlowTable{Rows: make([]Flow, 0, len(in.Timesteps)*len(lines))}
	for ti, t := range in.Timesteps {
		f, err := r.topo.Flows(in.Values[ti])
		if err != nil {
			return nil, err
		}
		for l, line := range lines {
			out.Rows = append(out.Rows, Flow{Timestep: t, CB: line.ID, CO: contingency.Basecase, Flow: f[l], Capacity: line.Capacity})
		}
	}

	return out, nil
}

// lineFlows returns the basecase flows of timestep t in line order.
func (r *Result) lineFlows(t string) ([]float64, error) {
	if err := r.checkTimestep(t); err != nil {
		return nil, err
	}
	n0, err := r.N0Flow()
	if err != nil {
		return nil, err
	}
	nL := r.topo.NumLines()
	ti := r.steps[t]

	out := make([]float64, nL)
	for l := range out {
		out[l] = n0.Rows[ti*nL+l].Flow
	}

	return out, nil
}

// N1Flow returns the flow of every monitored line under every defined
// contingency outage, for every timestep.
func (r *Result) N1Flow() (*FlowTable, error) {
	return cached(r.cache, KeyN1Flow, r.n1Flow)
}

func (r *Result) n1Flow() (*FlowTable, error) {
	if r.analyzer == nil {
		return nil, ErrNoAnalyzer
	}
	lines := r.topo.Lines()
	out := &FlowTable{}
	for _, t := range r.Attributes.ModelHorizon {
		base, err := r.lineFlows(t)
		if err != nil {
			return nil, err
		}
		for _, co := range lines {
			if !co.Contingency || r.analyzer.Undefined(co.ID) {
				continue
			}
			post, err := r.analyzer.N1Flows(base, co.ID)
			if err != nil {
				return nil, err
			}
			for l, cb := range lines {
				if cb.ID == co.ID {
					continue
				}
				out.Rows = append(out.Rows, Flow{Timestep: t, CB: cb.ID, CO: co.ID, Flow: post[l], Capacity: cb.Capacity})
			}
		}
	}

	return out, nil
}

// OverloadedLinesN0 returns basecase flows above capacity × multiplier.
func (r *Result) OverloadedLinesN0() (*Overloads, error) {
	return cached(r.cache, KeyOverloadedN0, func() (*Overloads, error) {
		flows, err := r.N0Flow()
		if err != nil {
			return nil, err
		}
		return r.overloads(flows), nil
	})
}

// OverloadedLinesN1 returns post-outage flows above capacity × multiplier.
func (r *Result) OverloadedLinesN1() (*Overloads, error) {
	return cached(r.cache, KeyOverloadedN1, func() (*Overloads, error) {
		flows, err := r.N1Flow()
		if err != nil {
			return nil, err
		}
		return r.overloads(flows), nil
	})
}

// overloads keeps the rows with |flow| > capacity × multiplier + tolerance.
func (r *Result) overloads(flows *FlowTable) *Overloads {
	mult, tol := r.cfg.Grid.CapacityMultiplier, r.cfg.Grid.OverloadTolerance
	out := &Overloads{}
	pos := make(map[contingency.Key]int)
	for _, f := range flows.Rows {
		limit := f.Capacity * mult
		over := math.Abs(f.Flow) - limit
		if over <= tol {
			continue
		}
		out.Points = append(out.Points, Overload{Flow: f, Limit: limit, Overload: over})

		key := contingency.Key{CB: f.CB, CO: f.CO}
		i, ok := pos[key]
		if !ok {
			i = len(out.Lines)
			pos[key] = i
			out.Lines = append(out.Lines, OverloadSummary{CB: f.CB, CO: f.CO})
		}
		s := &out.Lines[i]
		s.Timesteps++
		s.MaxOverload = math.Max(s.MaxOverload, over)
		s.MaxLoading = math.Max(s.MaxLoading, f.Loading())
	}

	return out
}

// CommittedFlows exposes the basecase flows of r for redispatch grids.
func (r *Result) CommittedFlows() gridrep.Flows { return committedFlows{r} }

type committedFlows struct{ r *Result }

func (c committedFlows) Timesteps() []string { return c.r.Timesteps() }

func (c committedFlows) LineFlows(t string) ([]float64, error) { return c.r.lineFlows(t) }
