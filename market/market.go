// SPDX-License-Identifier: MIT

package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/gridrep"
	"github.com/katalvlaran/dcgrid/job"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/result"
	"github.com/katalvlaran/dcgrid/topology"
)

// Files and folders of a run directory.
const (
	DataDir            = "data"
	ResultsDir         = "results"
	GridFile           = "grid.csv"
	RedispatchGridFile = "redispatch_grid.csv"
	OptionsFile        = "options.json"
)

var (
	// ErrNoSolver indicates a run without solver.command.
	ErrNoSolver = errors.New("market: no solver command configured")

	// ErrNoRepresentation indicates a run without a grid representation.
	ErrNoRepresentation = errors.New("market: missing grid representation")
)

// Model runs the external market model for one network.
type Model struct {
	Runner   job.Runner // nil uses job.ExecRunner
	Dir      string
	Topology *topology.Topology
	Analyzer *contingency.Analyzer // optional, enables N-1 analytics on results
	Logger   *slog.Logger
}

// Run writes the inputs, runs the solver to completion and returns the
// newest result folder it produced. Every fresh folder is loaded into one
// collection, so a redispatch result resolves its market result.
func (m *Model) Run(ctx context.Context, rep gridrep.Representation, data *network.Data, cfg config.Options) (*result.Result, error) {
	return m.run(ctx, rep, data, cfg)
}

// Redispatch runs the redispatch stage on top of the market result mkt: the
// redispatch grid of rep is replaced by the committed-flow table of mkt
// (gridrep.Builder.CreateRedispatch) and the solver runs with
// redispatch.include set. mkt joins the returned result's collection so the
// redispatch result resolves it as its reference.
func (m *Model) Redispatch(ctx context.Context, rep gridrep.Representation, mkt *result.Result, cfg config.Options) (*result.Result, error) {
	if rep == nil || rep.Grid() == nil {
		return nil, ErrNoRepresentation
	}
	if mkt == nil {
		return nil, result.ErrMissingReferenceResult
	}
	cfg = cfg.WithRedispatch(true)
	b := gridrep.NewBuilder(mkt.Data(), m.Topology, m.Analyzer, gridrep.WithLogger(m.logger()))
	red, err := b.CreateRedispatch(cfg, mkt.CommittedFlows())
	if err != nil {
		return nil, err
	}
	m.logger().Info("redispatch grid from committed flows", "component", "market", "market", mkt.Name(), "rows", red.Len())

	return m.run(ctx, committed{Representation: rep, red: red}, mkt.Data(), cfg, mkt)
}

// committed overrides the redispatch grid of a representation.
type committed struct {
	gridrep.Representation
	red *gridrep.Table
}

func (c committed) RedispatchGrid() *gridrep.Table { return c.red }

func (m *Model) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *Model) run(ctx context.Context, rep gridrep.Representation, data *network.Data, cfg config.Options, known ...*result.Result) (*result.Result, error) {
	if rep == nil || rep.Grid() == nil {
		return nil, ErrNoRepresentation
	}
	if cfg.Solver.Command == "" {
		return nil, ErrNoSolver
	}
	log := m.logger()

	dataDir, resultsDir := filepath.Join(m.Dir, DataDir), filepath.Join(m.Dir, ResultsDir)
	if err := m.writeInputs(dataDir, rep, data, cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}

	runner := m.Runner
	if runner == nil {
		runner = job.ExecRunner{}
	}
	start := time.Now().Truncate(time.Second)
	j, err := job.Submit(ctx, runner, job.Spec{
		Name:    "market_model",
		Command: cfg.Solver.Command,
		Args:    append(append([]string(nil), cfg.Solver.Args...), dataDir, resultsDir),
		Dir:     m.Dir,
		Outputs: []string{filepath.Join(ResultsDir, "*", result.AttributesFile)},
	}, job.WithLogger(log))
	if err != nil {
		return nil, err
	}
	defer j.Close()
	if err = j.Wait(ctx); err != nil {
		return nil, err
	}

	folders, err := freshFolders(resultsDir, start)
	if err != nil {
		return nil, err
	}
	coll, err := result.NewCollection(known...)
	if err != nil {
		return nil, err
	}
	opts := []result.Option{result.WithLogger(log), result.WithOptions(cfg)}
	if m.Analyzer != nil {
		opts = append(opts, result.WithAnalyzer(m.Analyzer))
	}
	var newest *result.Result
	for _, dir := range folders {
		r, err := result.Load(dir, data, m.Topology, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := coll.Get(r.Name()); err == nil {
			// a known result rewritten by the solver
			continue
		}
		if err = coll.Add(r); err != nil {
			return nil, err
		}
		newest = r
	}
	if newest == nil {
		return nil, fmt.Errorf("%w: no new result written to %s", job.ErrMissingOutput, resultsDir)
	}
	log.Info("market model finished", "component", "market", "results", coll.Names(), "newest", newest.Name())

	return newest, nil
}

func (m *Model) writeInputs(dir string, rep gridrep.Representation, data *network.Data, cfg config.Options) error {
	if err := network.Save(data, dir); err != nil {
		return err
	}
	if err := rep.Grid().WriteFile(filepath.Join(dir, GridFile)); err != nil {
		return err
	}
	if red := rep.RedispatchGrid(); red != nil {
		if err := red.WriteFile(filepath.Join(dir, RedispatchGridFile)); err != nil {
			return err
		}
	}
	raw, err := config.Encode(cfg, filepath.Ext(OptionsFile))
	if err != nil {
		return err
	}
	if err = os.WriteFile(filepath.Join(dir, OptionsFile), raw, 0o644); err != nil {
		return fmt.Errorf("market: %w", err)
	}

	return nil
}

// freshFolders returns the result folders under dir whose attribute file was
// written at or after start, oldest first.
func freshFolders(dir string, start time.Time) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*", result.AttributesFile))
	if err != nil {
		return nil, fmt.Errorf("market: %w", err)
	}
	type folder struct {
		path string
		mod  time.Time
	}
	var fresh []folder
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.ModTime().Before(start) {
			continue
		}
		fresh = append(fresh, folder{filepath.Dir(m), info.ModTime()})
	}
	if len(fresh) == 0 {
		return nil, fmt.Errorf("%w: no result written to %s", job.ErrMissingOutput, dir)
	}
	sort.Slice(fresh, func(i, j int) bool {
		if !fresh[i].mod.Equal(fresh[j].mod) {
			return fresh[i].mod.Before(fresh[j].mod)
		}
		return fresh[i].path < fresh[j].path
	})
	out := make([]string, len(fresh))
	for i, f := range fresh {
		out[i] = f.path
	}

	return out, nil
}
