// SPDX-License-Identifier: MIT

package gridrep

import (
	"fmt"
	"math"

	"github.com/katalvlaran/dcgrid/config"
)

// Flows reports committed line flows of a reference market result.
type Flows interface {
	// Timesteps returns the timesteps flows are available for, in order.
	Timesteps() []string
	// LineFlows returns the flow of every line at t, in topology line order.
	LineFlows(t string) ([]float64, error)
}

// CreateRedispatch returns the nodal redispatch table: for every timestep of
// flows one basecase row per redispatch line with
//
//	ram = max(capacity × multiplier - |committed flow|, 0)
//
// and the base PTDF as coefficients. Redispatch lines are selected by
// cfg.Redispatch, see redispatchLines.
func (b *Builder) CreateRedispatch(cfg config.Options, flows Flows) (*Table, error) {
	base := b.nodalTable(cfg)
	keep := b.redispatchLines(cfg.Redispatch)
	t := &Table{Axis: NodeAxis, Columns: base.Columns}
	for _, ts := range flows.Timesteps() {
		f, err := flows.LineFlows(ts)
		if err != nil {
			return nil, err
		}
		if len(f) != len(base.Rows) {
			return nil, fmt.Errorf("gridrep: redispatch %s: %d flows for %d lines", ts, len(f), len(base.Rows))
		}
		for l, r := range base.Rows {
			if !keep[l] {
				continue
			}
			r.Timestep = ts
			r.RAM = math.Max(r.RAM-math.Abs(f[l]), 0)
			t.Rows = append(t.Rows, r)
		}
	}
	b.log.Debug("redispatch grid created", "rows", t.Len(), "timesteps", len(flows.Timesteps()))

	return t, nil
}

// redispatchTable is the uncommitted redispatch grid attached by Create.
func (b *Builder) redispatchTable(cfg config.Options) *Table {
	base := b.nodalTable(cfg)
	keep := b.redispatchLines(cfg.Redispatch)
	t := &Table{Axis: NodeAxis, Columns: base.Columns}
	for l, r := range base.Rows {
		if keep[l] {
			t.Rows = append(t.Rows, r)
		}
	}

	return t
}

// redispatchLines marks the lines monitored during redispatch, in topology
// line order. With rd.Zones set a line needs an endpoint in one of them;
// with rd.ZonalRedispatch both endpoints must share a zone, since
// cross-border flows stay at their market value.
func (b *Builder) redispatchLines(rd config.Redispatch) []bool {
	zones := make(map[string]bool, len(rd.Zones))
	for _, z := range rd.Zones {
		zones[z] = true
	}
	lines := b.topo.Lines()
	keep := make([]bool, len(lines))
	for l, line := range lines {
		zi, _ := b.data.ZoneOf(line.NodeI)
		zj, _ := b.data.ZoneOf(line.NodeJ)
		keep[l] = (len(zones) == 0 || zones[zi] || zones[zj]) && (!rd.ZonalRedispatch || zi == zj)
	}

	return keep
}
