// SPDX-License-Identifier: MIT

package core

import (
	"errors"
	"sync"
)

// Sentinel errors for graph operations.
var (
	// ErrEmptyVertexID indicates that the provided Vertex has an empty ID.
	ErrEmptyVertexID = errors.New("core: vertex ID is empty")

	// ErrEmptyEdgeID indicates that the provided Edge has an empty ID.
	ErrEmptyEdgeID = errors.New("core: edge ID is empty")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrDuplicateEdge indicates an edge ID that is already taken.
	ErrDuplicateEdge = errors.New("core: duplicate edge ID")

	// ErrLoopNotAllowed indicates an edge whose endpoints coincide.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted when multi-edges are disabled.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")
)

// Vertex is one bus.
type Vertex struct {
	// ID is the unique bus identifier.
	ID string

	// Zone is the bidding zone of the bus; empty when unknown.
	Zone string

	// Slack marks the bus as a slack candidate of its island.
	Slack bool
}

// Edge is one line between two buses.
type Edge struct {
	// ID is the line identifier.
	ID string

	// From and To are the bus IDs; orientation only matters for flow signs.
	From string
	To   string

	// Susceptance is 1/x in per unit.
	Susceptance float64
}

// Other returns the endpoint of e opposite to id.
func (e Edge) Other(id string) string {
	if e.From == id {
		return e.To
	}

	return e.From
}

// GraphOption configures behavior of a Graph before creation.
type GraphOption func(g *Graph)

// WithMultiEdges permits parallel lines between the same buses.
func WithMultiEdges() GraphOption {
	return func(g *Graph) { g.allowMulti = true }
}

// Graph is the in-memory bus-branch graph.
//
// mu protects every field below it. order and edgeOrder record insertion
// so enumeration is deterministic without sorting.
type Graph struct {
	mu sync.RWMutex

	allowMulti bool

	vertices  map[string]*Vertex
	order     []string
	edges     map[string]*Edge
	edgeOrder []string

	// adjacency[vertex ID] = incident edge IDs in insertion order
	adjacency map[string][]string
}

// NewGraph creates an empty Graph. By default parallel lines are rejected.
// Complexity: O(1)
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		vertices:  make(map[string]*Vertex),
		edges:     make(map[string]*Edge),
		adjacency: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}
