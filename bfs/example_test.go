package bfs_test

import (
	"fmt"

	"github.com/katalvlaran/dcgrid/bfs"
	"github.com/katalvlaran/dcgrid/core"
)

// ExampleComponents shows an outage splitting a radial feeder.
func ExampleComponents() {
	g := core.NewGraph()
	for _, id := range []string{"n1", "n2", "n3"} {
		_ = g.AddVertex(core.Vertex{ID: id})
	}
	_ = g.AddEdge(core.Edge{ID: "l1", From: "n1", To: "n2"})
	_ = g.AddEdge(core.Edge{ID: "l2", From: "n2", To: "n3"})

	comps, _ := bfs.Components(g, bfs.WithSkipEdges("l2"))
	fmt.Println(comps)
	// Output: [[n1 n2] [n3]]
}
