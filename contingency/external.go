// SPDX-License-Identifier: MIT

package contingency

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/katalvlaran/dcgrid/job"
)

// ResultPattern matches the index files the reduction tool writes.
const ResultPattern = "cbco_*.csv"

// ExternalReducer runs a redundancy-removal program on the half-plane files.
// The program is invoked as Command Args... <dir> <option> in Dir and must
// write a ResultPattern file there.
type ExternalReducer struct {
	Runner  job.Runner // nil uses job.ExecRunner
	Command string
	Args    []string
	Dir     string
	Logger  *slog.Logger
}

// Reduce implements Reducer.
func (e *ExternalReducer) Reduce(ctx context.Context, option string, sys *HalfPlaneSystem) ([]int, error) {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("contingency: reduce: %w", err)
	}
	if err := sys.WriteFiles(e.Dir); err != nil {
		return nil, err
	}
	runner := e.Runner
	if runner == nil {
		runner = job.ExecRunner{}
	}
	// mtime resolution on some filesystems is one second
	start := time.Now().Truncate(time.Second)

	j, err := job.Submit(ctx, runner, job.Spec{
		Name:    "reduction",
		Command: e.Command,
		Args:    append(append([]string(nil), e.Args...), e.Dir, option),
		Dir:     e.Dir,
		Outputs: []string{ResultPattern},
	}, job.WithLogger(e.Logger))
	if err != nil {
		return nil, err
	}
	defer j.Close()
	if err = j.Wait(ctx); err != nil {
		return nil, err
	}

	path, err := job.Newest(e.Dir, ResultPattern)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("contingency: reduce: %w", err)
	}
	if info.ModTime().Before(start) {
		return nil, fmt.Errorf("%w: %s predates the run", job.ErrMissingOutput, path)
	}

	return ReadIndexFile(path)
}
