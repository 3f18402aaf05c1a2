// SPDX-License-Identifier: MIT

package network

import (
	"sort"

	"github.com/katalvlaran/dcgrid/bfs"
	"github.com/katalvlaran/dcgrid/core"
)

// Graph returns the bus-branch graph of nodes and lines: one vertex per
// node in table order and one edge per line keyed by the line ID.
// Parallel circuits are kept. Lines that reference unknown nodes, or
// repeat an ID already taken, are left out.
func Graph(nodes []Node, lines []Line) *core.Graph {
	g := core.NewGraph(core.WithMultiEdges())
	for _, n := range nodes {
		_ = g.AddVertex(core.Vertex{ID: n.ID, Zone: n.Zone, Slack: n.Slack})
	}
	for _, l := range lines {
		var b float64
		if l.XPU != 0 {
			b = 1 / l.XPU
		}
		_ = g.AddEdge(core.Edge{ID: l.ID, From: l.NodeI, To: l.NodeJ, Susceptance: b})
	}

	return g
}

// Components partitions nodes into connected sub-networks ("islands")
// formed by lines. Each component lists node positions (indexes into
// nodes) in ascending order, and components are ordered by their
// smallest member. Lines referencing unknown nodes are ignored.
//
// Time:   O(N + L).
func Components(nodes []Node, lines []Line) [][]int {
	pos := make(map[string]int, len(nodes))
	for i, n := range nodes {
		pos[n.ID] = i
	}
	// A fresh graph without filters or a context cannot fail.
	islands, _ := bfs.Components(Graph(nodes, lines))
	comps := make([][]int, 0, len(islands))
	for _, island := range islands {
		c := make([]int, len(island))
		for i, id := range island {
			c[i] = pos[id]
		}
		sort.Ints(c)
		comps = append(comps, c)
	}

	return comps
}

// Degree returns the number of line ends at every node position.
func Degree(nodes []Node, lines []Line) []int {
	g := Graph(nodes, lines)
	deg := make([]int, len(nodes))
	for i, n := range nodes {
		deg[i], _ = g.Degree(n.ID)
	}

	return deg
}
