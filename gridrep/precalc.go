// SPDX-License-Identifier: MIT

package gridrep

import (
	"fmt"
	"path/filepath"

	"github.com/katalvlaran/dcgrid/contingency"
	"github.com/katalvlaran/dcgrid/tabular"
)

// precalcPath resolves name inside the precalc folder; ".csv" is implied.
func (b *Builder) precalcPath(name string) string {
	if filepath.Ext(name) == "" {
		name += ".csv"
	}
	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(b.precalcDir, name)
}

// applyPrecalc keeps the rows of set listed in the precalc file, in set order.
// Basecase rows are always kept. Every failure wraps ErrStalePrecalc.
func (b *Builder) applyPrecalc(set *contingency.Set, name string) (*contingency.Set, error) {
	path := b.precalcPath(name)
	t, err := tabular.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStalePrecalc, err)
	}
	cbCol, err := t.Column("cb")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStalePrecalc, path, err)
	}
	coCol, err := t.Column("co")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStalePrecalc, path, err)
	}

	keep := make(map[contingency.Key]bool, t.Len())
	for r := 0; r < t.Len(); r++ {
		cb, co := t.String(r, cbCol), t.String(r, coCol)
		if _, ok := b.topo.Line(cb); !ok {
			return nil, fmt.Errorf("%w: %s: unknown line %q", ErrStalePrecalc, path, cb)
		}
		if _, ok := b.topo.Line(co); !ok && co != Basecase {
			return nil, fmt.Errorf("%w: %s: unknown outage %q", ErrStalePrecalc, path, co)
		}
		keep[contingency.Key{CB: cb, CO: co}] = true
	}

	return set.Filter(func(c contingency.CBCO) bool {
		return c.CO == Basecase || keep[contingency.Key{CB: c.CB, CO: c.CO}]
	}), nil
}

// WritePrecalc stores the (cb, co) list of t so a later run can reuse it.
func WritePrecalc(t *Table, path string) error {
	out := tabular.New("cb", "co")
	for _, r := range t.Rows {
		out.Append(r.CB, r.CO)
	}
	if err := out.WriteFile(path); err != nil {
		return fmt.Errorf("gridrep: %w", err)
	}

	return nil
}
