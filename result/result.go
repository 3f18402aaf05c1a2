// SPDX-License-Identifier: MIT

package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/katalvlaran/dcgrid/config"
	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/tabular"
	"github.com/katalvlaran/dcgrid/topology"
)

// AttributesFile is the attribute record inside a result folder.
const AttributesFile = "result_attributes.json"

// Option configures New and Load.
type Option func(*Result)

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Result) {
		if l != nil {
			r.log = l
		}
	}
}

// WithOptions sets the configuration the result is evaluated under
// (capacity multiplier, overload tolerance). Default is config.Default().
func WithOptions(o config.Options) Option {
	return func(r *Result) { r.cfg = o }
}

// WithAnalyzer enables the N-1 derivations.
func WithAnalyzer(a *contingency.Analyzer) Option {
	return func(r *Result) { r.analyzer = a }
}

// Result is one market-model run.
type Result struct {
	Attributes Attributes
	Vars       Variables

	data     *network.Data
	topo     *topology.Topology
	analyzer *contingency.Analyzer
	cfg      config.Options

	cache *Cache
	coll  *Collection
	steps map[string]int
	log   *slog.Logger
}

// New wraps variables and attributes. data and topo are required; an empty
// model horizon is filled from the timesteps of G.
func New(attr Attributes, vars Variables, data *network.Data, topo *topology.Topology, opts ...Option) (*Result, error) {
	if data == nil || topo == nil {
		return nil, ErrMissingInput
	}
	if vars == nil {
		vars = Variables{}
	}
	r := &Result{
		Attributes: attr,
		Vars:       vars,
		data:       data,
		topo:       topo,
		cfg:        config.Default(),
		cache:      NewCache(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if len(r.Attributes.ModelHorizon) == 0 {
		seen := make(map[string]bool)
		for _, rec := range vars[VarG] {
			if !seen[rec.Timestep] {
				seen[rec.Timestep] = true
				r.Attributes.ModelHorizon = append(r.Attributes.ModelHorizon, rec.Timestep)
			}
		}
	}
	if r.Attributes.Objective == nil {
		r.Attributes.Objective = map[string]float64{}
	}
	r.steps = make(map[string]int, len(r.Attributes.ModelHorizon))
	for i, t := range r.Attributes.ModelHorizon {
		r.steps[t] = i
	}
	r.log = r.log.With("component", "result", "result", r.Attributes.Name)

	return r, nil
}

// Name returns Attributes.Name.
func (r *Result) Name() string { return r.Attributes.Name }

// Cache returns the derived-data cache owned by r.
func (r *Result) Cache() *Cache { return r.cache }

// Timesteps returns the model horizon.
func (r *Result) Timesteps() []string { return append([]string(nil), r.Attributes.ModelHorizon...) }

// Data returns the network data the result refers to.
func (r *Result) Data() *network.Data { return r.data }

// Topology returns the topology flows are computed on.
func (r *Result) Topology() *topology.Topology { return r.topo }

// Load reads a result folder: AttributesFile plus one <variable>.csv per
// known variable (index, t, value). Missing variable files are empty
// variables. A missing folder wraps network.ErrInputNotFound. The result
// name defaults to the folder name.
func Load(dir string, data *network.Data, topo *topology.Topology, opts ...Option) (*Result, error) {
	raw, err := os.ReadFile(filepath.Join(dir, AttributesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", network.ErrInputNotFound, filepath.Join(dir, AttributesFile))
	}
	if err != nil {
		return nil, fmt.Errorf("result: load %s: %w", dir, err)
	}
	var attr Attributes
	if err = json.Unmarshal(raw, &attr); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResult, AttributesFile, err)
	}
	if attr.Name == "" {
		attr.Name = filepath.Base(dir)
	}

	vars := Variables{}
	for _, name := range KnownVariables {
		v, err := readVariable(filepath.Join(dir, name+".csv"), name)
		if err != nil {
			return nil, err
		}
		if v != nil {
			vars[name] = v
		}
	}

	return New(attr, vars, data, topo, opts...)
}

func readVariable(path, name string) (Variable, error) {
	t, err := tabular.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if errors.Is(err, tabular.ErrEmptyTable) {
		return Variable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
	}
	if len(t.Header) < 3 {
		return nil, fmt.Errorf("%w: %s: want index, t, value columns", ErrMalformedResult, path)
	}
	tc, err := t.Column("t", "timestep")
	if err != nil {
		tc = 1
	}
	vc, err := t.Column(name, "value")
	if err != nil {
		vc = len(t.Header) - 1
	}
	out := make(Variable, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		v, err := t.Float(i, vc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResult, err)
		}
		out = append(out, Record{Index: t.String(i, 0), Timestep: t.String(i, tc), Value: v})
	}

	return out, nil
}

// indexColumn names the index column of a variable file.
func indexColumn(name string) string {
	switch name {
	case VarInfeasPos, VarInfeasNeg, VarEBNodal:
		return "n"
	case VarEBZonal:
		return "z"
	}

	return "p"
}

// Save writes r as a folder Load can read.
func (r *Result) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("result: save: %w", err)
	}
	raw, err := json.MarshalIndent(r.Attributes, "", "  ")
	if err != nil {
		return fmt.Errorf("result: save: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, AttributesFile), raw, 0o644); err != nil {
		return fmt.Errorf("result: save: %w", err)
	}

	names := make([]string, 0, len(r.Vars))
	for name := range r.Vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := tabular.New(indexColumn(name), "t", name)
		for _, rec := range r.Vars[name] {
			t.Append(rec.Index, rec.Timestep, tabular.FormatFloat(rec.Value))
		}
		if err = t.WriteFile(filepath.Join(dir, name+".csv")); err != nil {
			return fmt.Errorf("result: save: %w", err)
		}
	}
	r.log.Debug("result saved", "dir", dir)

	return nil
}

func (r *Result) checkTimestep(t string) error {
	if _, ok := r.steps[t]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTimestep, t)
	}

	return nil
}
