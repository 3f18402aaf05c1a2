// SPDX-License-Identifier: MIT

package core

// IncidentEdges returns copies of the lines touching id in insertion order.
//
// Errors: ErrVertexNotFound.
// Complexity: O(deg(id)).
func (g *Graph) IncidentEdges(id string) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	adj, ok := g.adjacency[id]
	if !ok {
		return nil, ErrVertexNotFound
	}
	out := make([]Edge, len(adj))
	for i, eid := range adj {
		out[i] = *g.edges[eid]
	}

	return out, nil
}

// NeighborIDs returns the buses adjacent to id, each once, in order of the
// first line reaching them.
//
// Errors: ErrVertexNotFound.
// Complexity: O(deg(id)).
func (g *Graph) NeighborIDs(id string) ([]string, error) {
	edges, err := g.IncidentEdges(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(edges))
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		if n := e.Other(id); !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	return out, nil
}
