// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors shared by the dcgrid
// packages. Collectors live in a dedicated Registry rather than the global
// default one so embedding applications decide whether to expose them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dcgrid"

// Outcome labels for cache lookups.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)

// Registry is the registry every dcgrid collector is registered with.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// CacheLookups counts derived-result cache lookups by derivation key and outcome.
	CacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "result",
		Name:      "cache_lookups_total",
		Help:      "Derived-result cache lookups by derivation and outcome.",
	}, []string{"key", "outcome"})

	// DerivationSeconds observes the time spent computing a derivation on a cache miss.
	DerivationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "result",
		Name:      "derivation_seconds",
		Help:      "Time spent computing derived result tables.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{"key"})

	// TopologySeconds observes PTDF construction time.
	TopologySeconds = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "topology",
		Name:      "ptdf_seconds",
		Help:      "Time spent building susceptance and PTDF matrices.",
		Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
	})

	// ContingencyRows tracks the size of the last enumerated contingency set.
	ContingencyRows = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "contingency",
		Name:      "rows",
		Help:      "Number of (monitored, outage) rows in the last enumerated set.",
	})

	// JobSeconds observes external job durations by job name and final state.
	JobSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "job",
		Name:      "duration_seconds",
		Help:      "Wall time of external solver and reduction jobs.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"name", "state"})

	// RepresentationRows tracks the row count of the last built grid representation by type.
	RepresentationRows = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "gridrep",
		Name:      "rows",
		Help:      "Rows of the last built grid representation.",
	}, []string{"type"})
)

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
