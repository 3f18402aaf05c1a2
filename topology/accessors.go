// SPDX-License-Identifier: MIT

package topology

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/core"
	"github.com/katalvlaran/dcgrid/network"
)

// PTDF returns the L×N sensitivity matrix. Rows follow Lines(), columns
// follow Nodes(). The returned matrix must not be modified.
func (t *Topology) PTDF() mat.Matrix { return t.ptdf }

// PTDFAt returns the sensitivity of line position l to node position n.
func (t *Topology) PTDFAt(l, n int) float64 { return t.ptdf.At(l, n) }

// PTDFRow returns a copy of the PTDF row of line id.
func (t *Topology) PTDFRow(id string) ([]float64, error) {
	k, ok := t.lineIdx[id]
	if !ok {
		return nil, topologyErrorf("PTDFRow", fmt.Errorf("%w: %q", ErrUnknownLine, id))
	}

	return mat.Row(nil, k, t.ptdf), nil
}

// Nodes returns the node table in column order.
func (t *Topology) Nodes() []network.Node { return append([]network.Node(nil), t.nodes...) }

// Lines returns the line table in row order.
func (t *Topology) Lines() []network.Line { return append([]network.Line(nil), t.lines...) }

// NodeIDs returns node IDs in column order.
func (t *Topology) NodeIDs() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.ID
	}

	return out
}

// LineIDs returns line IDs in row order.
func (t *Topology) LineIDs() []string {
	out := make([]string, len(t.lines))
	for i, l := range t.lines {
		out[i] = l.ID
	}

	return out
}

// NumNodes returns N.
func (t *Topology) NumNodes() int { return len(t.nodes) }

// NumLines returns L.
func (t *Topology) NumLines() int { return len(t.lines) }

// Line returns line id.
func (t *Topology) Line(id string) (network.Line, bool) {
	k, ok := t.lineIdx[id]
	if !ok {
		return network.Line{}, false
	}

	return t.lines[k], true
}

// NodeIndex returns the column of node id.
func (t *Topology) NodeIndex(id string) (int, bool) {
	i, ok := t.nodeIdx[id]
	return i, ok
}

// LineIndex returns the row of line id.
func (t *Topology) LineIndex(id string) (int, bool) {
	k, ok := t.lineIdx[id]
	return k, ok
}

// Slacks returns the slack node ID of every component, in component order.
func (t *Topology) Slacks() []string { return t.ids(t.slacks) }

// Components returns the node IDs of every connected component.
func (t *Topology) Components() [][]string {
	out := make([][]string, len(t.components))
	for c, comp := range t.components {
		out[c] = t.ids(comp)
	}

	return out
}

// Graph returns the bus-branch graph. It must not be modified.
func (t *Topology) Graph() *core.Graph { return t.graph }

// Incidence returns the L×N incidence matrix. It must not be modified.
func (t *Topology) Incidence() mat.Matrix { return t.incidence }

// Susceptance returns a copy of the line susceptances 1/x_pu.
func (t *Topology) Susceptance() []float64 { return append([]float64(nil), t.susceptance...) }

// BusSusceptance returns the N×N matrix Aᵀ·diag(b)·A. It must not be modified.
func (t *Topology) BusSusceptance() mat.Matrix { return t.bus }

// Flows returns the line flows PTDF·injection for a nodal injection vector
// in column order. Injections at slack nodes do not contribute.
func (t *Topology) Flows(injection []float64) ([]float64, error) {
	if len(injection) != len(t.nodes) {
		return nil, topologyErrorf("Flows", fmt.Errorf("%w: %d injections for %d nodes",
			ErrDimensionMismatch, len(injection), len(t.nodes)))
	}
	var f mat.VecDense
	f.MulVec(t.ptdf, mat.NewVecDense(len(injection), injection))

	return f.RawVector().Data, nil
}
