package gridrep_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/network/networktest"
	"github.com/katalvlaran/dcgrid/topology"
)

const eps = 1e-9

// BuilderSuite builds representations of the triangle network.
type BuilderSuite struct {
	suite.Suite
	ctx  context.Context
	data *network.Data
	topo *topology.Topology
	an   *contingency.Analyzer
	logs *bytes.Buffer
	dir  string
}

func (s *BuilderSuite) SetupTest() {
	s.ctx = context.Background()
	s.data = networktest.Triangle()
	var err error
	s.topo, err = topology.CalculateParameters(s.data.Nodes, s.data.Lines)
	s.Require().NoError(err)
	s.an, err = contingency.NewAnalyzer(s.topo)
	s.Require().NoError(err)
	s.logs = &bytes.Buffer{}
	s.dir = s.T().TempDir()
}

func (s *BuilderSuite) builder(opts ...gridrep.Option) *gridrep.Builder {
	logger := slog.New(slog.NewTextHandler(s.logs, nil))
	opts = append([]gridrep.Option{gridrep.WithLogger(logger), gridrep.WithPrecalcDir(s.dir)}, opts...)
	return gridrep.NewBuilder(s.data, s.topo, s.an, opts...)
}

func (s *BuilderSuite) TestNodal() {
	cfg := config.Default().WithGridType(config.GridNodal).WithCapacityMultiplier(0.8)
	rep, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)

	nodal, ok := rep.(*gridrep.NodalRepresentation)
	s.Require().True(ok)
	s.Equal(config.GridNodal, nodal.Kind())
	s.Nil(nodal.RedispatchGrid())

	g := nodal.Grid()
	s.Equal(gridrep.NodeAxis, g.Axis)
	s.Equal([]string{"A", "B", "C"}, g.Columns)
	s.Require().Equal(3, g.Len())
	s.InDelta(96.0, g.Rows[0].RAM, eps)
	s.InDelta(44.0, g.Rows[1].RAM, eps)
	for _, r := range g.Rows {
		s.Equal(gridrep.Basecase, r.CO)
	}
	s.InDeltaSlice([]float64{0, -2.0 / 3, -1.0 / 3}, g.Rows[0].Coeffs, eps)
}

func (s *BuilderSuite) TestCbcoFull() {
	cfg := config.Default().WithGridType(config.GridCBCONodal)
	rep, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)

	cbco := rep.(*gridrep.CbcoRepresentation)
	s.Equal(gridrep.SourceFull, cbco.Source)
	s.Equal(config.CBCOFull, cbco.Option)
	g := cbco.Grid()
	s.Require().Equal(9, g.Len())
	s.Equal(gridrep.Basecase, g.Rows[2].CO)
	s.Equal("l2", g.Rows[3].CB)
	s.Equal("l1", g.Rows[3].CO)
	s.InDelta(55.0, g.Rows[3].RAM, eps)
	s.InDeltaSlice([]float64{0, 1, 0}, g.Rows[3].Coeffs, eps)
}

// TestPrecalcFallback checks a missing precalc file yields the full table exactly.
func (s *BuilderSuite) TestPrecalcFallback() {
	cfg := config.Default().WithGridType(config.GridCBCONodal)
	full, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)

	fallback, err := s.builder().Create(s.ctx, cfg.WithPrecalcFilename("cbco_missing"))
	s.Require().NoError(err)
	s.True(full.Grid().Equal(fallback.Grid()))
	s.Equal(gridrep.SourceFull, fallback.(*gridrep.CbcoRepresentation).Source)
	s.Contains(s.logs.String(), "precalculated contingencies unavailable")

	var a, b bytes.Buffer
	s.Require().NoError(full.Grid().WriteCSV(&a))
	s.Require().NoError(fallback.Grid().WriteCSV(&b))
	s.Equal(a.String(), b.String())
}

func (s *BuilderSuite) TestPrecalcStale() {
	path := filepath.Join(s.dir, "stale.csv")
	stale := &gridrep.Table{Rows: []gridrep.Row{{CB: "l9", CO: "l1"}}}
	s.Require().NoError(gridrep.WritePrecalc(stale, path))

	cfg := config.Default().WithGridType(config.GridCBCONodal)
	full, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)
	got, err := s.builder().Create(s.ctx, cfg.WithPrecalcFilename("stale"))
	s.Require().NoError(err)
	s.True(full.Grid().Equal(got.Grid()))
}

func (s *BuilderSuite) TestPrecalcApplied() {
	pre := &gridrep.Table{Rows: []gridrep.Row{{CB: "l2", CO: "l1"}, {CB: "l1", CO: "l3"}}}
	s.Require().NoError(gridrep.WritePrecalc(pre, filepath.Join(s.dir, "cbco_triangle.csv")))

	cfg := config.Default().WithGridType(config.GridCBCONodal).WithPrecalcFilename("cbco_triangle")
	rep, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)
	cbco := rep.(*gridrep.CbcoRepresentation)
	s.Equal(gridrep.SourcePrecalc, cbco.Source)

	var keys []string
	for _, r := range cbco.Grid().Rows {
		keys = append(keys, r.CB+"|"+r.CO)
	}
	s.Equal([]string{"l1|basecase", "l2|basecase", "l3|basecase", "l2|l1", "l1|l3"}, keys)
}

func (s *BuilderSuite) TestReduction() {
	cfg := config.Default().WithGridType(config.GridCBCONodal).WithCBCOOption("clarkson_base")

	_, err := s.builder().Create(s.ctx, cfg)
	s.Require().ErrorIs(err, contingency.ErrNoReducer)

	var rams []float64
	reducer := contingency.ReducerFunc(func(_ context.Context, _ string, sys *contingency.HalfPlaneSystem) ([]int, error) {
		rams = sys.B
		return []int{6, 7}, nil // both halves of (l2, l1)
	})
	rep, err := s.builder(gridrep.WithReducer(reducer)).Create(s.ctx, cfg.WithCapacityMultiplier(0.5))
	s.Require().NoError(err)
	cbco := rep.(*gridrep.CbcoRepresentation)
	s.Equal(gridrep.SourceReduced, cbco.Source)
	s.Require().Equal(1, cbco.Grid().Len())
	s.Equal("l2", cbco.Grid().Rows[0].CB)
	s.Equal("l1", cbco.Grid().Rows[0].CO)
	s.InDelta(60.0, rams[0], eps)
}

// TestZonalGSK verifies flat and gmax keys disagree on heterogeneous zones.
func (s *BuilderSuite) TestZonalGSK() {
	flatCfg := config.Default().WithGridType(config.GridZonal).WithGSK(config.GSKFlat)
	flat, err := s.builder().Create(s.ctx, flatCfg)
	s.Require().NoError(err)
	gmax, err := s.builder().Create(s.ctx, flatCfg.WithGSK(config.GSKGmax))
	s.Require().NoError(err)

	s.Equal(gridrep.ZoneAxis, flat.Grid().Axis)
	s.Equal([]string{"Z1", "Z2"}, flat.Grid().Columns)
	s.False(flat.Grid().Equal(gmax.Grid()))

	s.InDelta(-1.0/3, flat.Grid().Rows[0].Coeffs[0], eps)
	s.InDelta(-4.0/9, gmax.Grid().Rows[0].Coeffs[0], eps)
	// Z2 has no plants; gmax falls back to flat there
	s.InDelta(flat.Grid().Rows[0].Coeffs[1], gmax.Grid().Rows[0].Coeffs[1], eps)
	s.Contains(s.logs.String(), "zone without capacity")

	z := gmax.(*gridrep.ZonalRepresentation)
	s.Equal(config.GSKGmax, z.GSK.Strategy)
	s.Nil(z.NTC)
}

func (s *BuilderSuite) TestNTCWithRedispatch() {
	cfg := config.Default().WithGridType(config.GridNTC)
	cfg.Redispatch.Include = true
	rep, err := s.builder().Create(s.ctx, cfg)
	s.Require().NoError(err)

	s.Equal(config.GridNTC, rep.Kind())
	s.Len(rep.(*gridrep.ZonalRepresentation).NTC, 2)
	s.Require().NotNil(rep.RedispatchGrid())
	nodal, err := s.builder().Create(s.ctx, cfg.WithGridType(config.GridNodal))
	s.Require().NoError(err)
	s.True(nodal.Grid().Equal(rep.RedispatchGrid()))
}

func (s *BuilderSuite) TestUnsupported() {
	_, err := s.builder().Create(s.ctx, config.Default().WithGridType("opf"))
	s.Require().ErrorIs(err, gridrep.ErrUnsupportedGridType)

	noAnalyzer := gridrep.NewBuilder(s.data, s.topo, nil)
	_, err = noAnalyzer.Create(s.ctx, config.Default().WithGridType(config.GridCBCONodal))
	s.Require().ErrorIs(err, gridrep.ErrNoAnalyzer)
}

// TestInputsUnchanged builds every type and checks the PTDF is untouched.
func (s *BuilderSuite) TestInputsUnchanged() {
	before := mat.DenseCopyOf(s.topo.PTDF())
	for _, gt := range []config.GridType{config.GridNodal, config.GridCBCONodal, config.GridZonal, config.GridNTC} {
		rep, err := s.builder().Create(s.ctx, config.Default().WithGridType(gt))
		s.Require().NoError(err)
		for _, r := range rep.Grid().Rows {
			for i := range r.Coeffs {
				r.Coeffs[i] = 99
			}
		}
	}
	s.True(mat.Equal(before, s.topo.PTDF()))
}

type staticFlows map[string][]float64

func (f staticFlows) Timesteps() []string { return []string{networktest.T1, networktest.T2} }

func (f staticFlows) LineFlows(t string) ([]float64, error) {
	v, ok := f[t]
	if !ok {
		return nil, fmt.Errorf("no flows at %s", t)
	}
	return v, nil
}

func (s *BuilderSuite) TestCreateRedispatch() {
	flows := staticFlows{
		networktest.T1: {50.0 / 3, 200.0 / 3, -250.0 / 3},
		networktest.T2: {80.0 / 3, 80.0 / 3, 160.0 / 3},
	}
	t, err := s.builder().CreateRedispatch(config.Default(), flows)
	s.Require().NoError(err)
	s.Require().Equal(6, t.Len())
	s.Equal(networktest.T1, t.Rows[0].Timestep)
	s.InDelta(120-50.0/3, t.Rows[0].RAM, eps)
	s.Equal(0.0, t.Rows[1].RAM)
	s.InDelta(90-250.0/3, t.Rows[2].RAM, eps)
	s.Equal(networktest.T2, t.Rows[3].Timestep)

	_, err = s.builder().CreateRedispatch(config.Default(), staticFlows{networktest.T1: {1}})
	s.Require().Error(err)
}

func (s *BuilderSuite) TestCreateRedispatch_Zones() {
	flows := staticFlows{
		networktest.T1: {50.0 / 3, 200.0 / 3, -250.0 / 3},
		networktest.T2: {80.0 / 3, 80.0 / 3, 160.0 / 3},
	}
	cbs := func(t *gridrep.Table) []string {
		out := make([]string, 0, t.Len())
		for _, r := range t.Rows {
			out = append(out, r.Timestep+"/"+r.CB)
		}
		return out
	}

	cfg := config.Default()
	cfg.Redispatch.ZonalRedispatch = true
	t, err := s.builder().CreateRedispatch(cfg, flows)
	s.Require().NoError(err)
	s.Equal([]string{"t0001/l1", "t0002/l1"}, cbs(t), "only l1 lies inside a zone")

	cfg = config.Default()
	cfg.Redispatch.Zones = []string{"Z2"}
	t, err = s.builder().CreateRedispatch(cfg, flows)
	s.Require().NoError(err)
	s.Equal([]string{"t0001/l2", "t0001/l3", "t0002/l2", "t0002/l3"}, cbs(t))
	s.InDelta(90-250.0/3, t.Rows[1].RAM, eps)

	cfg.Redispatch.Include = true
	rep, err := s.builder().Create(s.ctx, cfg.WithGridType(config.GridZonal))
	s.Require().NoError(err)
	s.Equal([]string{"/l2", "/l3"}, cbs(rep.RedispatchGrid()))
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func TestUndefinedKeep(t *testing.T) {
	t.Parallel()
	d := networktest.Radial()
	topo, err := topology.CalculateParameters(d.Nodes, d.Lines)
	require.NoError(t, err)
	an, err := contingency.NewAnalyzer(topo)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := gridrep.NewBuilder(d, topo, an, gridrep.WithLogger(logger))

	cfg := config.Default().WithGridType(config.GridCBCONodal)
	drop, err := b.Create(context.Background(), cfg)
	require.NoError(t, err)
	cfg.Grid.UndefinedOutages = config.UndefinedKeep
	keep, err := b.Create(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, drop.Grid().Len()+3, keep.Grid().Len())
	last := keep.Grid().Rows[keep.Grid().Len()-1]
	assert.True(t, last.Undefined)
	assert.True(t, math.IsInf(last.RAM, 1))
}

func TestTable_RoundTrip(t *testing.T) {
	t.Parallel()
	in := &gridrep.Table{
		Axis:    gridrep.ZoneAxis,
		Columns: []string{"DE", "FR"},
		Rows: []gridrep.Row{
			{Timestep: "t0001", CB: "l1", CO: gridrep.Basecase, RAM: 10.5, Coeffs: []float64{0.25, -1.0 / 3}},
			{Timestep: "t0001", CB: "l1", CO: "l2", RAM: math.Inf(1), Coeffs: []float64{0, 1e-17}, Undefined: true},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, in.WriteCSV(&buf))
	assert.Contains(t, buf.String(), "timestep,cb,co,ram,DE,FR\n")

	out, err := gridrep.ReadCSV(&buf, gridrep.ZoneAxis)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))

	_, err = gridrep.ReadCSV(bytes.NewBufferString("a,b,c\n"), gridrep.NodeAxis)
	require.ErrorIs(t, err, gridrep.ErrMalformedTable)
	_, err = gridrep.ReadCSV(bytes.NewBufferString("cb,co,ram,A\nl1,basecase,x,1\n"), gridrep.NodeAxis)
	require.ErrorIs(t, err, gridrep.ErrMalformedTable)
}

func TestTable_Equal(t *testing.T) {
	t.Parallel()
	a := &gridrep.Table{Columns: []string{"A"}, Rows: []gridrep.Row{{CB: "l", CO: "basecase", RAM: 1, Coeffs: []float64{1}}}}
	b := &gridrep.Table{Columns: []string{"A"}, Rows: []gridrep.Row{{CB: "l", CO: "basecase", RAM: 1, Coeffs: []float64{1}}}}
	assert.True(t, a.Equal(b))
	b.Rows[0].Coeffs[0] = 1 + 1e-15
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(nil))
	var nilTable *gridrep.Table
	assert.True(t, nilTable.Equal(nil))
	assert.Equal(t, "zone", gridrep.ZoneAxis.String())
}

func TestGSK(t *testing.T) {
	t.Parallel()
	d := networktest.Triangle()
	g, err := gridrep.GSK(d, d.Nodes, config.GSKGmax, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	z1, ok := g.ZoneIndex("Z1")
	require.True(t, ok)
	assert.InDelta(t, 1.0/3, g.W.At(0, z1), eps)
	assert.InDelta(t, 2.0/3, g.W.At(1, z1), eps)
	assert.InDeltaSlice(t, []float64{-4.0 / 9, -1.0 / 3}, g.ZonalRow([]float64{0, -2.0 / 3, -1.0 / 3}), eps)

	d.Nodes[0].Zone = ""
	_, err = gridrep.GSK(d, d.Nodes, config.GSKFlat, nil)
	require.ErrorIs(t, err, gridrep.ErrMissingZone)
}
