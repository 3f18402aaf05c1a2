// SPDX-License-Identifier: MIT

package result

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/katalvlaran/dcgrid/network"
	"github.com/katalvlaran/dcgrid/topology"
)

// Collection holds named results. Redispatch results find their reference
// market result through the collection they were added to.
type Collection struct {
	results map[string]*Result
}

// NewCollection returns a collection holding rs.
func NewCollection(rs ...*Result) (*Collection, error) {
	c := &Collection{results: make(map[string]*Result, len(rs))}
	for _, r := range rs {
		if err := c.Add(r); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Add inserts r under its name. A result belongs to at most one collection.
func (c *Collection) Add(r *Result) error {
	if _, ok := c.results[r.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateResult, r.Name())
	}
	c.results[r.Name()] = r
	r.coll = c

	return nil
}

// Get returns the result called name.
func (c *Collection) Get(name string) (*Result, error) {
	r, ok := c.results[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResult, name)
	}

	return r, nil
}

// Names returns the result names, sorted.
func (c *Collection) Names() []string {
	out := make([]string, 0, len(c.results))
	for name := range c.results {
		out = append(out, name)
	}
	sort.Strings(out)

	return out
}

// Len returns the number of results.
func (c *Collection) Len() int { return len(c.results) }

// Rename replaces oldPrefix by newPrefix in every result name starting with
// oldPrefix, and in every reference to such a name. It fails without changes when
// a renamed result would collide with an existing one.
func (c *Collection) Rename(oldPrefix, newPrefix string) error {
	renamed := make(map[string]string)
	for name := range c.results {
		if strings.HasPrefix(name, oldPrefix) {
			renamed[name] = newPrefix + strings.TrimPrefix(name, oldPrefix)
		}
	}
	if len(renamed) == 0 {
		return fmt.Errorf("%w: no result named %q*", ErrUnknownResult, oldPrefix)
	}
	for _, to := range renamed {
		if _, taken := c.results[to]; !taken {
			continue
		}
		if _, moving := renamed[to]; !moving {
			return fmt.Errorf("%w: %q", ErrDuplicateResult, to)
		}
	}

	next := make(map[string]*Result, len(c.results))
	for name, r := range c.results {
		if to, ok := renamed[name]; ok {
			r.Attributes.Name = to
			name = to
		}
		if ref := r.Attributes.CorrespondingMarketResultName; ref != nil {
			if to, ok := renamed[*ref]; ok {
				r.Attributes.CorrespondingMarketResultName = &to
				r.cache.Clear(keyRedispatchPrefix + *ref)
			}
		}
		next[name] = r
	}
	c.results = next

	return nil
}

// LoadDir loads every sub-folder of dir that holds an AttributesFile.
func LoadDir(dir string, data *network.Data, topo *topology.Topology, opts ...Option) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", network.ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("result: load dir: %w", err)
	}
	c := &Collection{results: make(map[string]*Result)}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if _, err = os.Stat(filepath.Join(sub, AttributesFile)); err != nil {
			continue
		}
		r, err := Load(sub, data, topo, opts...)
		if err != nil {
			return nil, err
		}
		if err = c.Add(r); err != nil {
			return nil, err
		}
	}

	return c, nil
}
