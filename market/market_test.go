package market_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
	"github.com/katalvlaran/dcgrid/job"
	"github.com/katalvlaran/dcgrid/market"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/network/networktest"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/result/resulttest"
	"github.com/katalvlaran/dcgrid/topology"
)

type exited struct{ err error }

func (p exited) Wait() error { return p.err }
func (exited) Kill() error   { return nil }
func (exited) Pid() int      { return 7 }

// solver emulates the market model: it writes the results returned by
// write into the results folder passed as its last argument.
type solver struct {
	t     *testing.T
	args  []string
	write func(resultsDir string)
	err   error
}

func (s *solver) Start(_ context.Context, spec job.Spec, stdout, _ io.Writer) (job.Process, error) {
	s.args = spec.Args
	dataDir, resultsDir := spec.Args[len(spec.Args)-2], spec.Args[len(spec.Args)-1]
	assert.FileExists(s.t, filepath.Join(dataDir, market.GridFile))
	assert.FileExists(s.t, filepath.Join(dataDir, market.OptionsFile))
	assert.FileExists(s.t, filepath.Join(dataDir, network.NodesFile))
	_, _ = io.WriteString(stdout, "solving\n")
	if s.write != nil {
		s.write(resultsDir)
	}

	return exited{s.err}, nil
}

type fixture struct {
	data *network.Data
	topo *topology.Topology
	an   *contingency.Analyzer
	rep  gridrep.Representation
	cfg  config.Options
}

func newFixture(t *testing.T, redispatch bool) fixture {
	t.Helper()
	f := fixture{data: networktest.Triangle()}
	var err error
	f.topo, err = topology.CalculateParameters(f.data.Nodes, f.data.Lines)
	require.NoError(t, err)
	f.an, err = contingency.NewAnalyzer(f.topo)
	require.NoError(t, err)
	f.cfg = config.Default().WithRedispatch(redispatch)
	f.cfg.Solver.Command = "/usr/local/bin/market-model"
	f.cfg.Solver.Args = []string{"--threads", "2"}
	f.rep, err = gridrep.NewBuilder(f.data, f.topo, f.an).Create(context.Background(), f.cfg)
	require.NoError(t, err)

	return f
}

func (f fixture) save(t *testing.T, dir string, attr result.Attributes, vars result.Variables, mod time.Time) {
	t.Helper()
	r, err := result.New(attr, vars, f.data, f.topo)
	require.NoError(t, err)
	path := filepath.Join(dir, attr.Name)
	require.NoError(t, r.Save(path))
	require.NoError(t, os.Chtimes(filepath.Join(path, result.AttributesFile), mod, mod))
}

func TestRun(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	dir := t.TempDir()
	s := &solver{t: t, write: func(results string) {
		f.save(t, results, resulttest.MarketAttributes(), resulttest.MarketVariables(), time.Now().Add(time.Minute))
	}}
	stale := resulttest.MarketAttributes()
	stale.Name = "previous"
	f.save(t, filepath.Join(dir, market.ResultsDir), stale, resulttest.MarketVariables(), time.Now().Add(-time.Hour))

	m := &market.Model{Runner: s, Dir: dir, Topology: f.topo, Analyzer: f.an}
	r, err := m.Run(context.Background(), f.rep, f.data, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, resulttest.MarketName, r.Name())
	assert.Equal(t, []string{"--threads", "2", filepath.Join(dir, market.DataDir), filepath.Join(dir, market.ResultsDir)}, s.args)
	assert.NoFileExists(t, filepath.Join(dir, market.DataDir, market.RedispatchGridFile))

	o, err := r.OverloadedLinesN1()
	require.NoError(t, err)
	assert.Equal(t, 3, o.Count())
	assert.NoError(t, r.CheckEnergyBalance(1e-6))

	raw, err := os.ReadFile(filepath.Join(dir, market.DataDir, market.OptionsFile))
	require.NoError(t, err)
	got, err := config.Decode(raw, ".json")
	require.NoError(t, err)
	assert.Equal(t, f.cfg.Solver.Command, got.Solver.Command)

	grid, err := os.Open(filepath.Join(dir, market.DataDir, market.GridFile))
	require.NoError(t, err)
	defer grid.Close()
	table, err := gridrep.ReadCSV(grid, gridrep.NodeAxis)
	require.NoError(t, err)
	assert.True(t, table.Equal(f.rep.Grid()))
}

func TestRunRedispatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	now := time.Now()
	s := &solver{t: t, write: func(results string) {
		f.save(t, results, resulttest.MarketAttributes(), resulttest.MarketVariables(), now.Add(time.Minute))
		f.save(t, results, resulttest.RedispatchAttributes(), resulttest.RedispatchVariables(), now.Add(2*time.Minute))
	}}
	dir := t.TempDir()
	m := &market.Model{Runner: s, Dir: dir, Topology: f.topo}
	r, err := m.Run(context.Background(), f.rep, f.data, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, resulttest.RedispatchName, r.Name())
	assert.FileExists(t, filepath.Join(dir, market.DataDir, market.RedispatchGridFile))

	table, err := r.Redispatch()
	require.NoError(t, err)
	delta, abs := table.Sum()
	assert.InDelta(t, 0, delta, 1e-9)
	assert.InDelta(t, 40.0, abs, 1e-9)
}

func TestRedispatchStage(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()
	now := time.Now()
	dir := t.TempDir()

	m := &market.Model{Runner: &solver{t: t, write: func(results string) {
		f.save(t, results, resulttest.MarketAttributes(), resulttest.MarketVariables(), now.Add(time.Minute))
	}}, Dir: dir, Topology: f.topo, Analyzer: f.an}
	mkt, err := m.Run(ctx, f.rep, f.data, f.cfg)
	require.NoError(t, err)

	var options config.Options
	m.Runner = &solver{t: t, write: func(results string) {
		raw, err := os.ReadFile(filepath.Join(dir, market.DataDir, market.OptionsFile))
		require.NoError(t, err)
		options, err = config.Decode(raw, ".json")
		require.NoError(t, err)
		f.save(t, results, resulttest.RedispatchAttributes(), resulttest.RedispatchVariables(), now.Add(2*time.Minute))
	}}
	r, err := m.Redispatch(ctx, f.rep, mkt, f.cfg)
	require.NoError(t, err)
	assert.Equal(t, resulttest.RedispatchName, r.Name())
	assert.True(t, options.Redispatch.Include)

	in, err := os.Open(filepath.Join(dir, market.DataDir, market.RedispatchGridFile))
	require.NoError(t, err)
	defer in.Close()
	red, err := gridrep.ReadCSV(in, gridrep.NodeAxis)
	require.NoError(t, err)
	require.True(t, red.Timed())
	require.Equal(t, 6, red.Len())
	assert.Equal(t, "l2", red.Rows[1].CB)
	assert.InDelta(t, 0, red.Rows[1].RAM, 1e-9, "l2 is fully used by the market at t0001")
	assert.InDelta(t, 120-50.0/3, red.Rows[0].RAM, 1e-6)

	table, err := r.Redispatch()
	require.NoError(t, err)
	assert.Equal(t, resulttest.MarketName, table.Reference)
	assert.InDelta(t, 40.0, table.Cost, 1e-9)

	_, err = m.Redispatch(ctx, f.rep, nil, f.cfg)
	assert.ErrorIs(t, err, result.ErrMissingReferenceResult)
	_, err = m.Redispatch(ctx, nil, mkt, f.cfg)
	assert.ErrorIs(t, err, market.ErrNoRepresentation)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	m := &market.Model{Runner: &solver{t: t}, Dir: t.TempDir(), Topology: f.topo}
	_, err := m.Run(ctx, nil, f.data, f.cfg)
	assert.ErrorIs(t, err, market.ErrNoRepresentation)

	noSolver := f.cfg
	noSolver.Solver.Command = ""
	_, err = m.Run(ctx, f.rep, f.data, noSolver)
	assert.ErrorIs(t, err, market.ErrNoSolver)

	// exits cleanly without writing a result
	_, err = m.Run(ctx, f.rep, f.data, f.cfg)
	assert.ErrorIs(t, err, job.ErrMissingOutput)

	failing := &market.Model{Runner: &solver{t: t, err: errors.New("exit status 3")}, Dir: t.TempDir(), Topology: f.topo}
	_, err = failing.Run(ctx, f.rep, f.data, f.cfg)
	assert.ErrorIs(t, err, job.ErrJobFailed)

	malformed := &market.Model{Runner: &solver{t: t, write: func(results string) {
		p := filepath.Join(results, "broken")
		require.NoError(t, os.MkdirAll(p, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(p, result.AttributesFile), []byte("not json"), 0o644))
	}}, Dir: t.TempDir(), Topology: f.topo}
	_, err = malformed.Run(ctx, f.rep, f.data, f.cfg)
	assert.ErrorIs(t, err, result.ErrMalformedResult)
}
