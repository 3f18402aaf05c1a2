// SPDX-License-Identifier: MIT

package network

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Data bundles the input tables of one model run.
//
// Data is built once by the loading collaborator and treated as read-only
// afterwards; derived indexes are computed lazily on first use by Index.
type Data struct {
	Nodes  []Node
	Lines  []Line
	Plants []Plant
	Demand []DemandPoint
	NTC    []NTC

	idx *Index
}

// Index holds the lookup structures derived from Data.
type Index struct {
	node      map[string]int
	line      map[string]int
	plant     map[string]int
	zones     []string
	timesteps []string
	demand    map[string]map[string]float64 // timestep -> node -> value
	plantsAt  map[string][]int
}

// Validate checks field constraints and cross-table references.
//
// Implementation:
//   - Stage 1: struct tags through validator on every record.
//   - Stage 2: unique IDs per table.
//   - Stage 3: line endpoints, plant nodes and demand nodes reference existing nodes.
func (d *Data) Validate() error {
	nodes := make(map[string]struct{}, len(d.Nodes))
	for i := range d.Nodes {
		if err := validate.Struct(d.Nodes[i]); err != nil {
			return fmt.Errorf("%w: node %d: %v", ErrInvalidTable, i, err)
		}
		if _, dup := nodes[d.Nodes[i].ID]; dup {
			return fmt.Errorf("%w: node %q", ErrDuplicateID, d.Nodes[i].ID)
		}
		nodes[d.Nodes[i].ID] = struct{}{}
	}

	lines := make(map[string]struct{}, len(d.Lines))
	for i := range d.Lines {
		l := d.Lines[i]
		if err := validate.Struct(l); err != nil {
			return fmt.Errorf("%w: line %q: %v", ErrInvalidTable, l.ID, err)
		}
		if _, dup := lines[l.ID]; dup {
			return fmt.Errorf("%w: line %q", ErrDuplicateID, l.ID)
		}
		lines[l.ID] = struct{}{}
		for _, n := range [2]string{l.NodeI, l.NodeJ} {
			if _, ok := nodes[n]; !ok {
				return fmt.Errorf("%w: %q on line %q", ErrUnknownNode, n, l.ID)
			}
		}
	}

	plants := make(map[string]struct{}, len(d.Plants))
	for i := range d.Plants {
		p := d.Plants[i]
		if err := validate.Struct(p); err != nil {
			return fmt.Errorf("%w: plant %q: %v", ErrInvalidTable, p.ID, err)
		}
		if _, dup := plants[p.ID]; dup {
			return fmt.Errorf("%w: plant %q", ErrDuplicateID, p.ID)
		}
		plants[p.ID] = struct{}{}
		if _, ok := nodes[p.Node]; !ok {
			return fmt.Errorf("%w: %q on plant %q", ErrUnknownNode, p.Node, p.ID)
		}
	}

	for i := range d.Demand {
		if err := validate.Struct(d.Demand[i]); err != nil {
			return fmt.Errorf("%w: demand %d: %v", ErrInvalidTable, i, err)
		}
		if _, ok := nodes[d.Demand[i].Node]; !ok {
			return fmt.Errorf("%w: %q in demand", ErrUnknownNode, d.Demand[i].Node)
		}
	}

	for i := range d.NTC {
		if err := validate.Struct(d.NTC[i]); err != nil {
			return fmt.Errorf("%w: ntc %d: %v", ErrInvalidTable, i, err)
		}
	}

	return nil
}

// Index returns (building on first call) the lookup index of d.
// Callers must not modify the tables after the first call.
func (d *Data) Index() *Index {
	if d.idx != nil {
		return d.idx
	}
	ix := &Index{
		node:     make(map[string]int, len(d.Nodes)),
		line:     make(map[string]int, len(d.Lines)),
		plant:    make(map[string]int, len(d.Plants)),
		demand:   make(map[string]map[string]float64),
		plantsAt: make(map[string][]int),
	}
	zoneSet := make(map[string]struct{})
	for i, n := range d.Nodes {
		ix.node[n.ID] = i
		zoneSet[n.Zone] = struct{}{}
	}
	for i, l := range d.Lines {
		ix.line[l.ID] = i
	}
	for i, p := range d.Plants {
		ix.plant[p.ID] = i
		ix.plantsAt[p.Node] = append(ix.plantsAt[p.Node], i)
	}
	for _, dp := range d.Demand {
		byNode, ok := ix.demand[dp.Timestep]
		if !ok {
			byNode = make(map[string]float64)
			ix.demand[dp.Timestep] = byNode
			ix.timesteps = append(ix.timesteps, dp.Timestep)
		}
		byNode[dp.Node] += dp.Value
	}
	for z := range zoneSet {
		ix.zones = append(ix.zones, z)
	}
	sort.Strings(ix.zones)
	d.idx = ix

	return ix
}

// NodeIndex returns the position of node id in Nodes.
func (d *Data) NodeIndex(id string) (int, bool) {
	i, ok := d.Index().node[id]
	return i, ok
}

// LineIndex returns the position of line id in Lines.
func (d *Data) LineIndex(id string) (int, bool) {
	i, ok := d.Index().line[id]
	return i, ok
}

// Plant returns plant id.
func (d *Data) Plant(id string) (Plant, bool) {
	i, ok := d.Index().plant[id]
	if !ok {
		return Plant{}, false
	}

	return d.Plants[i], true
}

// Zones returns the sorted set of zones referenced by nodes.
func (d *Data) Zones() []string {
	return append([]string(nil), d.Index().zones...)
}

// ZoneOf returns the zone of node id.
func (d *Data) ZoneOf(id string) (string, bool) {
	i, ok := d.Index().node[id]
	if !ok {
		return "", false
	}

	return d.Nodes[i].Zone, true
}

// ZoneNodes returns the node IDs of zone z in node-table order.
func (d *Data) ZoneNodes(z string) []string {
	var out []string
	for _, n := range d.Nodes {
		if n.Zone == z {
			out = append(out, n.ID)
		}
	}

	return out
}

// Timesteps returns the demand timesteps in order of first appearance.
func (d *Data) Timesteps() []string {
	return append([]string(nil), d.Index().timesteps...)
}

// NodeDemand returns the demand of every node (node-table order) at
// timestep t. Without a demand series the static Node.Demand is used.
func (d *Data) NodeDemand(t string) []float64 {
	out := make([]float64, len(d.Nodes))
	byNode, ok := d.Index().demand[t]
	for i, n := range d.Nodes {
		if ok {
			out[i] = byNode[n.ID]
		} else if len(d.Demand) == 0 {
			out[i] = n.Demand
		}
	}

	return out
}

// PlantsAt returns the plants connected to node id.
func (d *Data) PlantsAt(id string) []Plant {
	idxs := d.Index().plantsAt[id]
	out := make([]Plant, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, d.Plants[i])
	}

	return out
}

// InstalledCapacity returns the summed GMax of plants at node id.
func (d *Data) InstalledCapacity(id string) float64 {
	var sum float64
	for _, i := range d.Index().plantsAt[id] {
		sum += d.Plants[i].GMax
	}

	return sum
}

// MaxDemand returns the largest demand of node id over all timesteps.
func (d *Data) MaxDemand(id string) float64 {
	ix := d.Index()
	if len(d.Demand) == 0 {
		if i, ok := ix.node[id]; ok {
			return d.Nodes[i].Demand
		}

		return 0
	}
	var hi float64
	for _, t := range ix.timesteps {
		if v := ix.demand[t][id]; v > hi {
			hi = v
		}
	}

	return hi
}

// NTCValue returns the exchange limit from zone a to zone b, or false if none is given.
func (d *Data) NTCValue(a, b string) (float64, bool) {
	for _, n := range d.NTC {
		if n.From == a && n.To == b {
			return n.Value, true
		}
	}

	return 0, false
}
