// SPDX-License-Identifier: MIT

package gridrep

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/network"
)

// GSKMatrix distributes a zonal net position over the zone's nodes.
// W is N×Z; every column sums to 1 over the member nodes of its zone.
type GSKMatrix struct {
	Strategy config.GSK
	Nodes    []string
	Zones    []string
	W        *mat.Dense
}

// ZoneIndex returns the column of zone z.
func (g *GSKMatrix) ZoneIndex(z string) (int, bool) {
	for i, name := range g.Zones {
		if name == z {
			return i, true
		}
	}

	return -1, false
}

// GSK builds the shift key over nodes (in that order) for strategy.
// Zones are the sorted zones of nodes. Under gmax a zone without installed
// capacity falls back to flat weights.
func GSK(data *network.Data, nodes []network.Node, strategy config.GSK, log *slog.Logger) (*GSKMatrix, error) {
	if log == nil {
		log = slog.Default()
	}
	zoneSet := make(map[string][]int)
	for i, n := range nodes {
		if n.Zone == "" {
			return nil, fmt.Errorf("%w: node %q", ErrMissingZone, n.ID)
		}
		zoneSet[n.Zone] = append(zoneSet[n.Zone], i)
	}
	g := &GSKMatrix{Strategy: strategy, Nodes: make([]string, len(nodes))}
	for i, n := range nodes {
		g.Nodes[i] = n.ID
	}
	for z := range zoneSet {
		g.Zones = append(g.Zones, z)
	}
	sort.Strings(g.Zones)

	g.W = mat.NewDense(len(nodes), len(g.Zones), nil)
	for zi, z := range g.Zones {
		members := zoneSet[z]
		total := 0.0
		if strategy == config.GSKGmax {
			for _, i := range members {
				total += data.InstalledCapacity(nodes[i].ID)
			}
			if total <= 0 {
				log.Warn("zone without capacity, using flat gsk", "component", "gridrep", "zone", z)
			}
		}
		for _, i := range members {
			w := 1 / float64(len(members))
			if total > 0 {
				w = data.InstalledCapacity(nodes[i].ID) / total
			}
			g.W.Set(i, zi, w)
		}
	}

	return g, nil
}

// ZonalPTDF returns ptdf·W, an L×Z matrix.
func (g *GSKMatrix) ZonalPTDF(ptdf mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(ptdf, g.W)

	return &z
}

// ZonalRow returns row·W for a nodal row in GSK node order.
func (g *GSKMatrix) ZonalRow(row []float64) []float64 {
	out := make([]float64, len(g.Zones))
	for n, v := range row {
		if v == 0 {
			continue
		}
		for z := range out {
			out[z] += v * g.W.At(n, z)
		}
	}

	return out
}
