// SPDX-License-Identifier: MIT

package core

import "fmt"

// AddEdge inserts line e between two existing buses.
//
// Implementation:
//   - Stage 1: Validate IDs and reject self-loops.
//   - Stage 2: Under the write lock, check both endpoints exist, the ID is
//     free and, without WithMultiEdges, that no line joins the same pair.
//   - Stage 3: Register the edge and append it to both adjacency buckets.
//
// Errors: ErrEmptyEdgeID, ErrLoopNotAllowed, ErrVertexNotFound,
// ErrDuplicateEdge, ErrMultiEdgeNotAllowed.
// Complexity: O(deg(from)) for the parallel-edge check, O(1) otherwise.
func (g *Graph) AddEdge(e Edge) error {
	if e.ID == "" {
		return ErrEmptyEdgeID
	}
	if e.From == e.To {
		return fmt.Errorf("%w: %s at %q", ErrLoopNotAllowed, e.ID, e.From)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range []string{e.From, e.To} {
		if _, ok := g.vertices[id]; !ok {
			return fmt.Errorf("%w: %q (edge %s)", ErrVertexNotFound, id, e.ID)
		}
	}
	if _, ok := g.edges[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.ID)
	}
	if !g.allowMulti {
		for _, eid := range g.adjacency[e.From] {
			if g.edges[eid].Other(e.From) == e.To {
				return fmt.Errorf("%w: %s parallels %s", ErrMultiEdgeNotAllowed, e.ID, eid)
			}
		}
	}
	g.edges[e.ID] = &e
	g.edgeOrder = append(g.edgeOrder, e.ID)
	g.adjacency[e.From] = append(g.adjacency[e.From], e.ID)
	g.adjacency[e.To] = append(g.adjacency[e.To], e.ID)

	return nil
}

// RemoveEdge deletes line id.
//
// Errors: ErrEdgeNotFound.
// Complexity: O(deg(from) + deg(to) + |E|).
func (g *Graph) RemoveEdge(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, id)
	}
	delete(g.edges, id)
	g.edgeOrder = without(g.edgeOrder, id)
	g.adjacency[e.From] = without(g.adjacency[e.From], id)
	g.adjacency[e.To] = without(g.adjacency[e.To], id)

	return nil
}

// Edge returns a copy of line id.
func (g *Graph) Edge(id string) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}

	return *e, true
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = *g.edges[id]
	}

	return out
}

// EdgeCount returns |E|.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edgeOrder)
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}
