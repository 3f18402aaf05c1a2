// SPDX-License-Identifier: MIT

// Package bfs provides breadth-first search over a core.Graph, returning
// hop distances, parent links and visit order.
//
// What
//
//   - Explore buses in non-decreasing hop count from a start bus.
//   - BFSResult carries Order, Depth, Parent and ParentEdge.
//   - OnVisit hook may abort the walk with an error.
//   - Individual lines are excluded with WithSkipEdges or WithFilterEdge,
//     which is how outages are applied without rebuilding the graph.
//   - Components splits the graph into islands under the same options.
//
// Determinism
//
//	core.Graph returns incident lines in insertion order and BFS enqueues
//	neighbors in that order, so the visit sequence is reproducible. Components
//	seeds from core.Graph.Vertices(), so islands come out ordered by their
//	first-inserted bus.
//
// Complexity (V = |Vertices|, E = |Edges|)
//
//   - Time:   O(V + E)
//   - Memory: O(V)
package bfs
