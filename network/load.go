// SPDX-License-Identifier: MIT

package network

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/katalvlaran/dcgrid/tabular"
)

// Table file names inside an input folder.
const (
	NodesFile  = "nodes.csv"
	LinesFile  = "lines.csv"
	PlantsFile = "plants.csv"
	DemandFile = "demand_el.csv"
	NTCFile    = "ntc.csv"
)

// Load reads a folder of CSV tables and validates the result.
//
// Only folder input is understood here; spreadsheet, MATPOWER and archive
// inputs belong to a conversion step in front of dcgrid and are rejected with
// ErrUnsupportedInputFormat. A path that does not exist yields ErrInputNotFound.
func Load(path string) (*Data, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("network: stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s (%q)", ErrUnsupportedInputFormat, path, filepath.Ext(path))
	}

	d := &Data{}
	if d.Nodes, err = readNodes(filepath.Join(path, NodesFile)); err != nil {
		return nil, err
	}
	if d.Lines, err = readLines(filepath.Join(path, LinesFile)); err != nil {
		return nil, err
	}
	if d.Plants, err = readPlants(filepath.Join(path, PlantsFile)); err != nil {
		return nil, err
	}
	if d.Demand, err = readDemand(filepath.Join(path, DemandFile)); err != nil {
		return nil, err
	}
	if d.NTC, err = readNTC(filepath.Join(path, NTCFile)); err != nil {
		return nil, err
	}
	if err = d.Validate(); err != nil {
		return nil, err
	}

	return d, nil
}

// openTable reads path; optional tables that do not exist return (nil, nil).
func openTable(path string, optional bool) (*tabular.Table, error) {
	t, err := tabular.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	return t, nil
}

// columns resolves each alias group to a column position. Groups listed
// after required are optional and resolve to -1 when absent.
func columns(t *tabular.Table, file string, required int, groups ...[]string) ([]int, error) {
	out := make([]int, len(groups))
	for i, g := range groups {
		c, err := t.Column(g...)
		if err != nil {
			if i < required {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, file, err)
			}
			c = -1
		}
		out[i] = c
	}

	return out, nil
}

func float(t *tabular.Table, row, col int) (float64, error) {
	if col < 0 {
		return 0, nil
	}
	v, err := t.Float(row, col)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	return v, nil
}

func boolean(t *tabular.Table, row, col int, def bool) (bool, error) {
	if col < 0 || t.String(row, col) == "" {
		return def, nil
	}
	v, err := t.Bool(row, col)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	return v, nil
}

func readNodes(path string) ([]Node, error) {
	t, err := openTable(path, false)
	if err != nil {
		return nil, err
	}
	c, err := columns(t, NodesFile, 2,
		[]string{"index", "id", "node"}, []string{"zone"},
		[]string{"slack"}, []string{"demand", "net_demand"})
	if err != nil {
		return nil, err
	}
	out := make([]Node, t.Len())
	for r := range out {
		n := Node{ID: t.String(r, c[0]), Zone: t.String(r, c[1])}
		if n.Slack, err = boolean(t, r, c[2], false); err != nil {
			return nil, err
		}
		if n.Demand, err = float(t, r, c[3]); err != nil {
			return nil, err
		}
		out[r] = n
	}

	return out, nil
}

func readLines(path string) ([]Line, error) {
	t, err := openTable(path, false)
	if err != nil {
		return nil, err
	}
	c, err := columns(t, LinesFile, 5,
		[]string{"index", "id", "line"}, []string{"node_i"}, []string{"node_j"},
		[]string{"x_pu", "x"}, []string{"capacity", "maxflow"},
		[]string{"contingency"})
	if err != nil {
		return nil, err
	}
	out := make([]Line, t.Len())
	for r := range out {
		l := Line{ID: t.String(r, c[0]), NodeI: t.String(r, c[1]), NodeJ: t.String(r, c[2])}
		if l.XPU, err = float(t, r, c[3]); err != nil {
			return nil, err
		}
		if l.Capacity, err = float(t, r, c[4]); err != nil {
			return nil, err
		}
		if l.Contingency, err = boolean(t, r, c[5], true); err != nil {
			return nil, err
		}
		out[r] = l
	}

	return out, nil
}

func readPlants(path string) ([]Plant, error) {
	t, err := openTable(path, true)
	if err != nil || t == nil {
		return nil, err
	}
	c, err := columns(t, PlantsFile, 3,
		[]string{"index", "id", "plant"}, []string{"node"}, []string{"g_max"},
		[]string{"mc_el", "mc"}, []string{"plant_type", "type"})
	if err != nil {
		return nil, err
	}
	out := make([]Plant, t.Len())
	for r := range out {
		p := Plant{ID: t.String(r, c[0]), Node: t.String(r, c[1])}
		if p.GMax, err = float(t, r, c[2]); err != nil {
			return nil, err
		}
		if p.MCEl, err = float(t, r, c[3]); err != nil {
			return nil, err
		}
		if c[4] >= 0 {
			p.Type = t.String(r, c[4])
		}
		out[r] = p
	}

	return out, nil
}

func readDemand(path string) ([]DemandPoint, error) {
	t, err := openTable(path, true)
	if err != nil || t == nil {
		return nil, err
	}
	c, err := columns(t, DemandFile, 3,
		[]string{"timestep", "t"}, []string{"node"}, []string{"demand_el", "demand"})
	if err != nil {
		return nil, err
	}
	out := make([]DemandPoint, t.Len())
	for r := range out {
		dp := DemandPoint{Timestep: t.String(r, c[0]), Node: t.String(r, c[1])}
		if dp.Value, err = float(t, r, c[2]); err != nil {
			return nil, err
		}
		out[r] = dp
	}

	return out, nil
}

func readNTC(path string) ([]NTC, error) {
	t, err := openTable(path, true)
	if err != nil || t == nil {
		return nil, err
	}
	c, err := columns(t, NTCFile, 3,
		[]string{"zone_i", "from"}, []string{"zone_j", "to"}, []string{"ntc", "value"})
	if err != nil {
		return nil, err
	}
	out := make([]NTC, t.Len())
	for r := range out {
		n := NTC{From: t.String(r, c[0]), To: t.String(r, c[1])}
		if n.Value, err = float(t, r, c[2]); err != nil {
			return nil, err
		}
		out[r] = n
	}

	return out, nil
}

// Save writes d as a CSV folder readable by Load. Empty optional tables are skipped.
func Save(d *Data, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("network: save: %w", err)
	}

	nodes := tabular.New("index", "zone", "slack", "demand")
	for _, n := range d.Nodes {
		nodes.Append(n.ID, n.Zone, fmt.Sprint(n.Slack), tabular.FormatFloat(n.Demand))
	}
	lines := tabular.New("index", "node_i", "node_j", "x_pu", "capacity", "contingency")
	for _, l := range d.Lines {
		lines.Append(l.ID, l.NodeI, l.NodeJ, tabular.FormatFloat(l.XPU),
			tabular.FormatFloat(l.Capacity), fmt.Sprint(l.Contingency))
	}
	files := map[string]*tabular.Table{NodesFile: nodes, LinesFile: lines}

	if len(d.Plants) > 0 {
		plants := tabular.New("index", "node", "g_max", "mc_el", "plant_type")
		for _, p := range d.Plants {
			plants.Append(p.ID, p.Node, tabular.FormatFloat(p.GMax), tabular.FormatFloat(p.MCEl), p.Type)
		}
		files[PlantsFile] = plants
	}
	if len(d.Demand) > 0 {
		demand := tabular.New("timestep", "node", "demand_el")
		for _, dp := range d.Demand {
			demand.Append(dp.Timestep, dp.Node, tabular.FormatFloat(dp.Value))
		}
		files[DemandFile] = demand
	}
	if len(d.NTC) > 0 {
		ntc := tabular.New("zone_i", "zone_j", "ntc")
		for _, n := range d.NTC {
			ntc.Append(n.From, n.To, tabular.FormatFloat(n.Value))
		}
		files[NTCFile] = ntc
	}

	for name, t := range files {
		if err := t.WriteFile(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("network: save: %w", err)
		}
	}

	return nil
}
