package core_test

import (
	"fmt"

	"github.com/katalvlaran/dcgrid/core"
)

// ExampleGraph builds a two-bus network with a parallel circuit.
func ExampleGraph() {
	g := core.NewGraph(core.WithMultiEdges())
	_ = g.AddVertex(core.Vertex{ID: "n1", Zone: "DE", Slack: true})
	_ = g.AddVertex(core.Vertex{ID: "n2", Zone: "DE"})
	_ = g.AddEdge(core.Edge{ID: "l1", From: "n1", To: "n2", Susceptance: 20})
	_ = g.AddEdge(core.Edge{ID: "l2", From: "n1", To: "n2", Susceptance: 20})

	d, _ := g.Degree("n1")
	fmt.Println(g.VertexCount(), g.EdgeCount(), d)
	// Output: 2 2 2
}
