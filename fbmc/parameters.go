// SPDX-License-Identifier: MIT

package fbmc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/topology"
)

// Direction of a flow-based constraint relative to the line orientation.
type Direction int

// Constraint directions.
const (
	Positive Direction = 1
	Negative Direction = -1
)

// String returns "+" or "-".
func (d Direction) String() string {
	if d == Negative {
		return "-"
	}
	return "+"
}

// Constraint is PTDF · NP ≤ RAM for one cbco, direction and timestep.
// PTDF already carries the direction sign.
type Constraint struct {
	Timestep  string
	CB        string
	CO        string
	Direction Direction
	RAM       float64
	F0        float64
	PTDF      []float64 // zonal, in Parameters.Zones order
}

// Parameters is the flow-based constraint set of a basecase.
type Parameters struct {
	Zones       []string
	Timesteps   []string
	Constraints []Constraint
	GSK         config.GSK
	DomainLimit float64

	// NetPosition is the basecase net position per timestep, in Zones order.
	NetPosition map[string][]float64
}

// At returns the constraints of timestep t.
func (p *Parameters) At(t string) []Constraint {
	var out []Constraint
	for _, c := range p.Constraints {
		if c.Timestep == t {
			out = append(out, c)
		}
	}

	return out
}

// Table returns the constraints as a zone-axis grid table, one row per
// constraint and direction.
func (p *Parameters) Table() *gridrep.Table {
	t := &gridrep.Table{Axis: gridrep.ZoneAxis, Columns: append([]string(nil), p.Zones...)}
	for _, c := range p.Constraints {
		t.Rows = append(t.Rows, gridrep.Row{Timestep: c.Timestep, CB: c.CB, CO: c.CO, RAM: c.RAM, Coeffs: c.PTDF})
	}

	return t
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithGridOptions passes options to the underlying grid representation builder.
func WithGridOptions(opts ...gridrep.Option) Option {
	return func(b *Builder) { b.gridOpts = append(b.gridOpts, opts...) }
}

// Builder creates flow-based parameters for one network.
type Builder struct {
	data     *network.Data
	topo     *topology.Topology
	analyzer *contingency.Analyzer
	gridOpts []gridrep.Option
	root     *slog.Logger
	log      *slog.Logger
}

// NewBuilder returns a builder over data and its topology and analyzer.
func NewBuilder(data *network.Data, topo *topology.Topology, analyzer *contingency.Analyzer, opts ...Option) *Builder {
	b := &Builder{data: data, topo: topo, analyzer: analyzer, log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.root, b.log = b.log, b.log.With("component", "fbmc")

	return b
}

// CreateFlowbasedParameters builds the flow-based constraints of basecase.
// An empty gsk uses cfg.FBMC.GSK. The cbco rows follow cfg.Grid (cbco
// option, precalc file, undefined outage policy); undefined rows are skipped.
func (b *Builder) CreateFlowbasedParameters(ctx context.Context, cfg config.Options, basecase *result.Result, gsk config.GSK) (*Parameters, error) {
	if basecase == nil {
		return nil, ErrNoBasecase
	}
	if gsk == "" {
		gsk = cfg.FBMC.GSK
	}
	start := time.Now()

	opts := append([]gridrep.Option{gridrep.WithLogger(b.root)}, b.gridOpts...)
	rep, err := gridrep.NewBuilder(b.data, b.topo, b.analyzer, opts...).Create(ctx, cfg.WithGridType(config.GridCBCONodal).WithRedispatch(false))
	if err != nil {
		return nil, fmt.Errorf("fbmc: cbco grid: %w", err)
	}
	g, err := gridrep.GSK(b.data, b.topo.Nodes(), gsk, b.root)
	if err != nil {
		return nil, err
	}
	in, err := basecase.NodalInjection()
	if err != nil {
		return nil, err
	}
	np, err := b.netPositions(basecase, g.Zones)
	if err != nil {
		return nil, err
	}

	p := &Parameters{
		Zones:       append([]string(nil), g.Zones...),
		Timesteps:   basecase.Timesteps(),
		GSK:         gsk,
		DomainLimit: cfg.FBMC.DomainLimit,
		NetPosition: np,
	}

	type row struct {
		gridrep.Row
		zonal []float64
		cap   float64
	}
	var rows []row
	dropped := 0
	for _, r := range rep.Grid().Rows {
		if r.Undefined {
			continue
		}
		zonal := g.ZonalRow(r.Coeffs)
		if spread(zonal) < cfg.FBMC.Sensitivity {
			dropped++
			continue
		}
		line, _ := b.topo.Line(r.CB)
		rows = append(rows, row{Row: r, zonal: zonal, cap: line.Capacity * cfg.Grid.CapacityMultiplier})
	}

	for ti, t := range p.Timesteps {
		inj := in.Values[ti]
		for _, r := range rows {
			f0 := dot(r.Coeffs, inj) - dot(r.zonal, np[t])
			floor := cfg.FBMC.MinRAM * r.cap
			for _, dir := range []Direction{Positive, Negative} {
				ptdf := make([]float64, len(r.zonal))
				for z, v := range r.zonal {
					ptdf[z] = float64(dir) * v
				}
				p.Constraints = append(p.Constraints, Constraint{
					Timestep:  t,
					CB:        r.CB,
					CO:        r.CO,
					Direction: dir,
					RAM:       math.Max(r.cap-float64(dir)*f0, floor),
					F0:        f0,
					PTDF:      ptdf,
				})
			}
		}
	}
	b.log.Info("flow-based parameters created",
		"gsk", string(gsk), "constraints", len(p.Constraints), "dropped", dropped, "elapsed", time.Since(start))

	return p, nil
}

// netPositions returns the basecase net position per timestep in zones order.
func (b *Builder) netPositions(basecase *result.Result, zones []string) (map[string][]float64, error) {
	rows, err := basecase.NetPosition()
	if err != nil {
		return nil, err
	}
	zi := make(map[string]int, len(zones))
	for i, z := range zones {
		zi[z] = i
	}
	out := make(map[string][]float64)
	for _, t := range basecase.Timesteps() {
		out[t] = make([]float64, len(zones))
	}
	for _, r := range rows {
		if i, ok := zi[r.Zone]; ok {
			out[r.Timestep][i] = r.Value
		}
	}

	return out, nil
}

func spread(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}

	return hi - lo
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}

	return s
}
