// SPDX-License-Identifier: MIT

package bfs

import (
	"context"
	"fmt"

	"github.com/katalvlaran/dcgrid/core"
)

// queueItem pairs a vertex ID with its BFS depth.
type queueItem struct {
	id    string
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	graph   *core.Graph
	opts    BFSOptions
	ctx     context.Context
	queue   []queueItem
	visited map[string]bool
	res     *BFSResult
}

// BFS runs breadth-first search on g starting from startID.
// Returns ErrGraphNil or ErrStartVertexNotFound for invalid input,
// ErrOptionViolation for bad options, the context error on cancellation,
// or any OnVisit error.
func BFS(g *core.Graph, startID string, opts ...Option) (*BFSResult, error) {
	o, err := build(g, opts)
	if err != nil {
		return nil, err
	}
	if !g.HasVertex(startID) {
		return nil, fmt.Errorf("%w: %q", ErrStartVertexNotFound, startID)
	}
	w := newWalker(g, o, g.VertexCount())
	w.enqueue(startID, 0, "", "")

	return w.res, w.loop()
}

// Components partitions g into islands: maximal vertex sets connected by
// lines that pass the filter. Each island lists its buses in BFS order.
func Components(g *core.Graph, opts ...Option) ([][]string, error) {
	o, err := build(g, opts)
	if err != nil {
		return nil, err
	}
	w := newWalker(g, o, g.VertexCount())
	var out [][]string
	for _, id := range g.Vertices() {
		if w.visited[id] {
			continue
		}
		from := len(w.res.Order)
		w.enqueue(id, 0, "", "")
		if err := w.loop(); err != nil {
			return nil, err
		}
		out = append(out, append([]string(nil), w.res.Order[from:]...))
	}

	return out, nil
}

func build(g *core.Graph, opts []Option) (BFSOptions, error) {
	if g == nil {
		return BFSOptions{}, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return o, o.err
}

func newWalker(g *core.Graph, o BFSOptions, n int) *walker {
	return &walker{
		graph:   g,
		opts:    o,
		ctx:     o.Ctx,
		queue:   make([]queueItem, 0, n),
		visited: make(map[string]bool, n),
		res: &BFSResult{
			Order:      make([]string, 0, n),
			Depth:      make(map[string]int, n),
			Parent:     make(map[string]string, n),
			ParentEdge: make(map[string]string, n),
		},
	}
}

func (w *walker) enqueue(id string, d int, parent, edge string) {
	w.visited[id] = true
	w.res.Depth[id] = d
	if parent != "" {
		w.res.Parent[id] = parent
		w.res.ParentEdge[id] = edge
	}
	w.queue = append(w.queue, queueItem{id: id, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		w.res.Order = append(w.res.Order, item.id)
		if err := w.opts.OnVisit(item.id, item.depth); err != nil {
			return fmt.Errorf("bfs: OnVisit error at %q: %w", item.id, err)
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors follows every allowed incident line to unseen buses.
func (w *walker) enqueueNeighbors(item queueItem) error {
	next := item.depth + 1
	if w.opts.MaxDepth > 0 && next > w.opts.MaxDepth {
		return nil
	}
	edges, err := w.graph.IncidentEdges(item.id)
	if err != nil {
		return fmt.Errorf("bfs: incident lines of %q: %w", item.id, err)
	}
	for _, e := range edges {
		if !w.opts.FilterEdge(e) {
			continue
		}
		if nbr := e.Other(item.id); !w.visited[nbr] {
			w.enqueue(nbr, next, item.id, e.ID)
		}
	}

	return nil
}
