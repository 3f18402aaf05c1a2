// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/core"
	"github.com/katalvlaran/dcgrid/metrics"
	"github.com/katalvlaran/dcgrid/network"
)

// Topology is the immutable result of CalculateParameters.
type Topology struct {
	nodes []network.Node
	lines []network.Line

	nodeIdx map[string]int
	lineIdx map[string]int

	graph      *core.Graph
	components [][]int
	slacks     []int // node position of the slack, per component

	incidence   *mat.Dense // L×N
	susceptance []float64  // per line
	bus         *mat.Dense // N×N
	ptdf        *mat.Dense // L×N, slack columns zero
}

// CalculateParameters builds incidence, susceptance and PTDF matrices for the
// given tables. Inputs are expected to have passed network.Data.Validate; the
// slices are copied and never modified.
//
// Implementation:
//   - Stage 1 (Index): node and line positions, endpoint and reactance checks.
//   - Stage 2 (Assemble): A, b and B = Aᵀ·diag(b)·A.
//   - Stage 3 (Slack): one slack per connected component.
//   - Stage 4 (Solve): per component, LU of B_red and PTDFᵀ = B_red⁻¹·(diag(b)·A_red)ᵀ.
//
// Complexity: O(N²·L) for the bus matrix and O(Σ n_c³ + n_c²·L_c) for the solves.
func CalculateParameters(nodes []network.Node, lines []network.Line, opts ...Option) (*Topology, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("component", "topology")
	start := time.Now()

	if len(nodes) == 0 || len(lines) == 0 {
		return nil, topologyErrorf("CalculateParameters", ErrEmptyNetwork)
	}

	// Stage 1: Index
	t := &Topology{
		nodes:   append([]network.Node(nil), nodes...),
		lines:   append([]network.Line(nil), lines...),
		nodeIdx: make(map[string]int, len(nodes)),
		lineIdx: make(map[string]int, len(lines)),
	}
	for i, n := range t.nodes {
		t.nodeIdx[n.ID] = i
	}
	for k, l := range t.lines {
		t.lineIdx[l.ID] = k
		if _, ok := t.nodeIdx[l.NodeI]; !ok {
			return nil, topologyErrorf("CalculateParameters", fmt.Errorf("%w: %q on line %q", ErrUnknownNode, l.NodeI, l.ID))
		}
		if _, ok := t.nodeIdx[l.NodeJ]; !ok {
			return nil, topologyErrorf("CalculateParameters", fmt.Errorf("%w: %q on line %q", ErrUnknownNode, l.NodeJ, l.ID))
		}
		if !(l.XPU > 0) || math.IsInf(l.XPU, 0) {
			return nil, &SingularTopologyError{
				Component: -1,
				Nodes:     []string{l.NodeI, l.NodeJ},
				Reason:    fmt.Sprintf("line %q has reactance %g", l.ID, l.XPU),
			}
		}
	}

	// Stage 2: Assemble
	nN, nL := len(t.nodes), len(t.lines)
	t.incidence = mat.NewDense(nL, nN, nil)
	t.susceptance = make([]float64, nL)
	for k, l := range t.lines {
		t.incidence.Set(k, t.nodeIdx[l.NodeI], 1)
		t.incidence.Set(k, t.nodeIdx[l.NodeJ], -1)
		t.susceptance[k] = 1 / l.XPU
	}
	var weighted mat.Dense
	weighted.Mul(mat.NewDiagDense(nL, t.susceptance), t.incidence)
	t.bus = mat.NewDense(nN, nN, nil)
	t.bus.Mul(t.incidence.T(), &weighted)

	// Stage 3: Slack
	t.graph = network.Graph(t.nodes, t.lines)
	t.components = network.Components(t.nodes, t.lines)
	degree := network.Degree(t.nodes, t.lines)
	t.slacks = make([]int, len(t.components))
	for c, comp := range t.components {
		s, err := t.pickSlack(c, comp, degree, o.autoSlack, log)
		if err != nil {
			return nil, err
		}
		t.slacks[c] = s
	}

	// Stage 4: Solve
	t.ptdf = mat.NewDense(nL, nN, nil)
	for c := range t.components {
		if err := t.solveComponent(c, &weighted, o.condLimit); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	metrics.TopologySeconds.Observe(elapsed.Seconds())
	log.Debug("ptdf computed",
		"nodes", nN, "lines", nL, "components", len(t.components), "elapsed", elapsed)

	return t, nil
}

// pickSlack returns the slack of component c. Extra flagged slacks are
// demoted; without any, the highest-degree node is used if auto is set.
func (t *Topology) pickSlack(c int, comp []int, degree []int, auto bool, log *slog.Logger) (int, error) {
	slack := -1
	for _, i := range comp {
		if !t.nodes[i].Slack {
			continue
		}
		if slack < 0 {
			slack = i
			continue
		}
		log.Warn("demoting extra slack", "node", t.nodes[i].ID, "slack", t.nodes[slack].ID)
	}
	if slack >= 0 {
		return slack, nil
	}
	if !auto {
		return -1, &SingularTopologyError{Component: c, Nodes: t.ids(comp), Reason: "no slack node"}
	}
	slack = comp[0]
	for _, i := range comp[1:] {
		if degree[i] > degree[slack] {
			slack = i
		}
	}
	log.Info("assigned slack", "node", t.nodes[slack].ID, "component", c)

	return slack, nil
}

// solveComponent fills the PTDF rows of the lines inside component c.
func (t *Topology) solveComponent(c int, weighted *mat.Dense, condLimit float64) error {
	comp, slack := t.components[c], t.slacks[c]
	if len(comp) < 2 {
		return nil
	}

	red := make([]int, 0, len(comp)-1) // reduced position -> node position
	for _, i := range comp {
		if i != slack {
			red = append(red, i)
		}
	}
	inComp := make(map[int]bool, len(comp))
	for _, i := range comp {
		inComp[i] = true
	}
	var rows []int // line positions inside the component
	for k, l := range t.lines {
		if inComp[t.nodeIdx[l.NodeI]] {
			rows = append(rows, k)
		}
	}

	n := len(red)
	bRed := mat.NewDense(n, n, nil)
	for r, i := range red {
		for q, j := range red {
			bRed.Set(r, q, t.bus.At(i, j))
		}
	}
	// (diag(b)·A_red)ᵀ restricted to the component lines
	rhs := mat.NewDense(n, len(rows), nil)
	for q, k := range rows {
		for r, i := range red {
			rhs.Set(r, q, weighted.At(k, i))
		}
	}

	var lu mat.LU
	lu.Factorize(bRed)
	if cond := lu.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) || cond > condLimit {
		return &SingularTopologyError{
			Component: c,
			Nodes:     t.ids(comp),
			Reason:    fmt.Sprintf("reduced susceptance matrix condition number %g", cond),
		}
	}
	var pt mat.Dense
	if err := lu.SolveTo(&pt, false, rhs); err != nil {
		return &SingularTopologyError{Component: c, Nodes: t.ids(comp), Reason: err.Error()}
	}
	for q, k := range rows {
		for r, i := range red {
			t.ptdf.Set(k, i, pt.At(r, q))
		}
	}

	return nil
}

func (t *Topology) ids(positions []int) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = t.nodes[p].ID
	}

	return out
}
