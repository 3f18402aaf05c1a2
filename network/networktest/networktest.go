// SPDX-License-Identifier: MIT

// Package networktest provides small hand-checkable networks for tests.
//
// Triangle is three nodes A, B, C joined by unit-reactance lines
// l1 (A→B), l2 (B→C), l3 (A→C) with A as slack. Its base PTDF is
//
//	      A     B      C
//	l1    0   -2/3   -1/3
//	l2    0    1/3   -1/3
//	l3    0   -1/3   -2/3
//
// and every line outage is defined (LODF columns (-1,-1,1), (-1,-1,1), (1,1,-1)).
//
// Radial adds node D behind line l4 (C→D); the l4 outage islands D.
package networktest

import (
	"github.com/katalvlaran/dcgrid/network"
)

// Timesteps of the demand series in Triangle.
const (
	T1 = "t0001"
	T2 = "t0002"
)

// Triangle returns the three-node network with zones Z1 = {A, B} and Z2 = {C},
// plants gA (A, 150 MW, 10/MWh) and gB (B, 300 MW, 20/MWh), and demand at C
// of 150 (t0001) and 80 (t0002). Line capacities are 120, 55 and 90.
func Triangle() *network.Data {
	return &network.Data{
		Nodes: []network.Node{
			{ID: "A", Zone: "Z1", Slack: true},
			{ID: "B", Zone: "Z1"},
			{ID: "C", Zone: "Z2"},
		},
		Lines: []network.Line{
			{ID: "l1", NodeI: "A", NodeJ: "B", XPU: 1, Capacity: 120, Contingency: true},
			{ID: "l2", NodeI: "B", NodeJ: "C", XPU: 1, Capacity: 55, Contingency: true},
			{ID: "l3", NodeI: "A", NodeJ: "C", XPU: 1, Capacity: 90, Contingency: true},
		},
		Plants: []network.Plant{
			{ID: "gA", Node: "A", GMax: 150, MCEl: 10, Type: "coal"},
			{ID: "gB", Node: "B", GMax: 300, MCEl: 20, Type: "gas"},
		},
		Demand: []network.DemandPoint{
			{Timestep: T1, Node: "C", Value: 150},
			{Timestep: T2, Node: "C", Value: 80},
		},
		NTC: []network.NTC{
			{From: "Z1", To: "Z2", Value: 100},
			{From: "Z2", To: "Z1", Value: 100},
		},
	}
}

// Radial returns Triangle extended by node D (zone Z2) on line l4 (C→D, capacity 50).
func Radial() *network.Data {
	d := Triangle()
	d.Nodes = append(d.Nodes, network.Node{ID: "D", Zone: "Z2"})
	d.Lines = append(d.Lines, network.Line{ID: "l4", NodeI: "C", NodeJ: "D", XPU: 1, Capacity: 50, Contingency: true})

	return d
}

// NodalZones returns d with every node placed in a zone of its own, named after the node.
func NodalZones(d *network.Data) *network.Data {
	out := &network.Data{Lines: d.Lines, Plants: d.Plants, Demand: d.Demand, NTC: d.NTC}
	out.Nodes = make([]network.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		n.Zone = n.ID
		out.Nodes[i] = n
	}

	return out
}
