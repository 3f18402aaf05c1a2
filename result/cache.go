// SPDX-License-Identifier: MIT

package result

import (
	"sort"
	"strings"
	"time"

	"github.com/katalvlaran/dcgrid/metrics"
)

// Cache keys of the derivations.
const (
	KeyN0Flow           = "n_0_flow"
	KeyN1Flow           = "n_1_flow"
	KeyOverloadedN0     = "overloaded_lines_n_0"
	KeyOverloadedN1     = "overloaded_lines_n_1"
	KeyInjection        = "nodal_injection"
	KeyPrice            = "price"
	KeyNetPosition      = "net_position"
	KeyInfeasibility    = "infeasibility"
	KeyDemand           = "demand"
	KeyGeneration       = "generation"
	KeyStorage          = "storage_generation"
	KeyCurtailment      = "curtailment"
	KeySystemBalance    = "system_balance"
	keyRedispatchPrefix = "redispatch:"
)

// CacheStats counts lookups since creation or the last full Clear.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// Cache memoizes derived tables by key. It is owned by one Result.
type Cache struct {
	entries map[string]any
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

// Get returns the entry for key.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.entries[key]
	if ok {
		c.hits++
		metrics.CacheLookups.WithLabelValues(metricKey(key), metrics.OutcomeHit).Inc()
	} else {
		c.misses++
		metrics.CacheLookups.WithLabelValues(metricKey(key), metrics.OutcomeMiss).Inc()
	}

	return v, ok
}

// Set stores v under key.
func (c *Cache) Set(key string, v any) { c.entries[key] = v }

// Has reports whether key is cached without counting a lookup.
func (c *Cache) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Keys returns the cached keys, sorted.
func (c *Cache) Keys() []string {
	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// Clear drops the given keys, or everything (and the stats) when none are given.
func (c *Cache) Clear(keys ...string) {
	if len(keys) == 0 {
		c.entries = make(map[string]any)
		c.hits, c.misses = 0, 0
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// Stats returns the lookup counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// metricKey collapses per-reference redispatch keys into one label value.
func metricKey(key string) string {
	if strings.HasPrefix(key, keyRedispatchPrefix) {
		return "redispatch"
	}

	return key
}

// cached returns the entry for key, computing and storing it on a miss.
// The entry is returned as stored; callers must not modify it. Errors are
// not cached.
func cached[T any](c *Cache, key string, compute func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v.(T), nil
	}
	start := time.Now()
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	metrics.DerivationSeconds.WithLabelValues(metricKey(key)).Observe(time.Since(start).Seconds())
	c.Set(key, v)

	return v, nil
}
