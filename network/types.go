// SPDX-License-Identifier: MIT

package network

// Node is a bus of the network.
type Node struct {
	// ID uniquely identifies the node.
	ID string `validate:"required"`

	// Zone is the bidding zone the node belongs to.
	Zone string `validate:"required"`

	// Slack marks the angle reference of the node's connected component.
	Slack bool

	// Demand is the static net demand, used when no demand time series is given.
	Demand float64
}

// Line is a branch between two nodes, oriented from NodeI to NodeJ.
type Line struct {
	ID          string  `validate:"required"`
	NodeI       string  `validate:"required"`
	NodeJ       string  `validate:"required,nefield=NodeI"`
	XPU         float64 `validate:"gt=0"`
	Capacity    float64 `validate:"gte=0"`
	Contingency bool
}

// Plant is a generator connected to a node.
type Plant struct {
	ID   string  `validate:"required"`
	Node string  `validate:"required"`
	GMax float64 `validate:"gte=0"`
	MCEl float64
	Type string
}

// DemandPoint is the electric demand of one node in one timestep.
type DemandPoint struct {
	Timestep string `validate:"required"`
	Node     string `validate:"required"`
	Value    float64
}

// NTC is a directed exchange limit between two zones.
type NTC struct {
	From  string  `validate:"required"`
	To    string  `validate:"required,nefield=From"`
	Value float64 `validate:"gte=0"`
}
