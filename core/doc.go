// SPDX-License-Identifier: MIT

// Package core provides the bus-branch graph of a power network: buses are
// vertices, lines are edges keyed by their line ID.
//
// The Graph G = (V, E) is undirected and weights every edge with the line
// susceptance:
//
//   - Parallel circuits between the same buses (WithMultiEdges)
//   - Edge identity is the line ID, never generated, so traversals can
//     exclude individual outaged lines
//   - Deterministic iteration: Vertices(), Edges() and IncidentEdges() return
//     insertion order, which for a network is node-table and line-table order
//   - A single sync.RWMutex guards vertices, edges and adjacency
//
// Self-loops are always rejected: a line needs two distinct buses.
//
// Errors:
//
//	ErrEmptyVertexID       - vertex ID is the empty string.
//	ErrEmptyEdgeID         - edge ID is the empty string.
//	ErrVertexNotFound      - requested vertex does not exist.
//	ErrEdgeNotFound        - requested edge does not exist.
//	ErrDuplicateEdge       - an edge with the same ID already exists.
//	ErrLoopNotAllowed      - both endpoints are the same bus.
//	ErrMultiEdgeNotAllowed - parallel edge while multi-edges are disabled.
//
// Traversals live in package bfs.
package core
