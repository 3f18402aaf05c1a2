// SPDX-License-Identifier: MIT

package gridrep

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/metrics"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/topology"
)

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

// WithPrecalcDir sets the folder precalculated contingency files are read from.
func WithPrecalcDir(dir string) Option {
	return func(b *Builder) { b.precalcDir = dir }
}

// WithReducer sets the reducer used for cbco options other than "full".
func WithReducer(r contingency.Reducer) Option {
	return func(b *Builder) { b.reducer = r }
}

// Builder creates grid representations for one network.
type Builder struct {
	data     *network.Data
	topo     *topology.Topology
	analyzer *contingency.Analyzer

	precalcDir string
	reducer    contingency.Reducer
	log        *slog.Logger
}

// NewBuilder returns a builder over data and its topology and analyzer.
func NewBuilder(data *network.Data, topo *topology.Topology, analyzer *contingency.Analyzer, opts ...Option) *Builder {
	b := &Builder{data: data, topo: topo, analyzer: analyzer, precalcDir: ".", log: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("component", "gridrep")

	return b
}

// Create builds the representation selected by cfg.Grid.Type. With
// cfg.Redispatch.Include the nodal basecase table of the redispatch lines is
// attached as RedispatchGrid.
func (b *Builder) Create(ctx context.Context, cfg config.Options) (Representation, error) {
	start := time.Now()
	var (
		rep Representation
		err error
	)
	switch cfg.Grid.Type {
	case config.GridNodal:
		rep = &NodalRepresentation{grid: b.nodalTable(cfg)}
	case config.GridCBCONodal:
		rep, err = b.createCbco(ctx, cfg)
	case config.GridZonal, config.GridNTC:
		rep, err = b.createZonal(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGridType, cfg.Grid.Type)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Redispatch.Include {
		b.attachRedispatch(rep, b.redispatchTable(cfg))
	}

	rows := rep.Grid().Len()
	metrics.RepresentationRows.WithLabelValues(string(rep.Kind())).Set(float64(rows))
	b.log.Info("grid representation created",
		"type", string(rep.Kind()), "rows", rows, "elapsed", time.Since(start))

	return rep, nil
}

func (b *Builder) attachRedispatch(rep Representation, t *Table) {
	switch r := rep.(type) {
	case *NodalRepresentation:
		r.redispatch = t
	case *CbcoRepresentation:
		r.redispatch = t
	case *ZonalRepresentation:
		r.redispatch = t
	}
}

// nodalTable returns one basecase row per line with RAM = capacity × multiplier.
func (b *Builder) nodalTable(cfg config.Options) *Table {
	t := &Table{Axis: NodeAxis, Columns: b.topo.NodeIDs()}
	for l, line := range b.topo.Lines() {
		coeffs := make([]float64, b.topo.NumNodes())
		for n := range coeffs {
			coeffs[n] = b.topo.PTDFAt(l, n)
		}
		t.Rows = append(t.Rows, Row{
			CB:     line.ID,
			CO:     Basecase,
			RAM:    line.Capacity * cfg.Grid.CapacityMultiplier,
			Coeffs: coeffs,
		})
	}

	return t
}

// createCbco resolves N-1 rows in order of preference: precalc file, then
// cfg.Grid.CBCOOption (full or a named reduction).
func (b *Builder) createCbco(ctx context.Context, cfg config.Options) (*CbcoRepresentation, error) {
	if b.analyzer == nil {
		return nil, ErrNoAnalyzer
	}
	set, err := b.analyzer.FullSet(ctx,
		contingency.WithSensitivity(cfg.Grid.LODFSensitivity),
		contingency.WithKeepUndefined(cfg.Grid.UndefinedOutages == config.UndefinedKeep))
	if err != nil {
		return nil, err
	}
	rep := &CbcoRepresentation{Option: cfg.Grid.CBCOOption, Source: SourceFull}

	if cfg.Grid.PrecalcFilename != "" {
		pre, perr := b.applyPrecalc(set, cfg.Grid.PrecalcFilename)
		if perr == nil {
			rep.Source = SourcePrecalc
			rep.grid = b.setTable(pre, cfg)
			return rep, nil
		}
		b.log.Warn("precalculated contingencies unavailable, recomputing",
			"file", cfg.Grid.PrecalcFilename, "err", perr)
	}

	if cfg.Grid.CBCOOption != config.CBCOFull {
		mult := cfg.Grid.CapacityMultiplier
		reduced, err := b.analyzer.ReduceContingencies(ctx, set, contingency.Reduction{
			Option:  cfg.Grid.CBCOOption,
			Reducer: b.reducer,
			RAM:     func(c contingency.CBCO) float64 { return b.capacity(c.CB) * mult },
		})
		if err != nil {
			return nil, err
		}
		set = reduced
		rep.Source = SourceReduced
	}
	rep.grid = b.setTable(set, cfg)

	return rep, nil
}

// setTable converts contingency rows to table rows.
func (b *Builder) setTable(set *contingency.Set, cfg config.Options) *Table {
	t := &Table{Axis: NodeAxis, Columns: append([]string(nil), set.Nodes...)}
	for _, c := range set.Rows {
		ram := b.capacity(c.CB) * cfg.Grid.CapacityMultiplier
		if c.Undefined {
			ram = math.Inf(1)
		}
		t.Rows = append(t.Rows, Row{CB: c.CB, CO: c.CO, RAM: ram, Coeffs: c.PTDF, Undefined: c.Undefined})
	}

	return t
}

func (b *Builder) createZonal(cfg config.Options) (*ZonalRepresentation, error) {
	gsk, err := GSK(b.data, b.topo.Nodes(), cfg.Grid.GSK, b.log)
	if err != nil {
		return nil, err
	}
	zonal := gsk.ZonalPTDF(b.topo.PTDF())
	t := &Table{Axis: ZoneAxis, Columns: append([]string(nil), gsk.Zones...)}
	for l, line := range b.topo.Lines() {
		coeffs := make([]float64, len(gsk.Zones))
		for z := range coeffs {
			coeffs[z] = zonal.At(l, z)
		}
		t.Rows = append(t.Rows, Row{
			CB:     line.ID,
			CO:     Basecase,
			RAM:    line.Capacity * cfg.Grid.CapacityMultiplier,
			Coeffs: coeffs,
		})
	}
	rep := &ZonalRepresentation{Type: cfg.Grid.Type, GSK: gsk, grid: t}
	if cfg.Grid.Type == config.GridNTC && b.data != nil {
		rep.NTC = append([]network.NTC(nil), b.data.NTC...)
	}

	return rep, nil
}

func (b *Builder) capacity(line string) float64 {
	l, ok := b.topo.Line(line)
	if !ok {
		return 0
	}

	return l.Capacity
}
