// Package metrics registers the generator's Prometheus instruments on the
// default registry.  Hosts that expose an HTTP endpoint scrape them; the
// generator itself only increments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts finished generation runs by outcome:
	// "success", "timeout", or "exhausted".
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kakuro_generations_total",
		Help: "Completed puzzle generation runs by difficulty and outcome.",
	}, []string{"difficulty", "outcome"})

	// GenerationDuration tracks wall-clock time of generation runs.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kakuro_generation_seconds",
		Help:    "Wall-clock duration of puzzle generation runs.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 11),
	}, []string{"difficulty"})

	// TopologyAttempts counts topologies requested from the layout
	// generator, including discarded ones.
	TopologyAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kakuro_topology_attempts_total",
		Help: "Topology generation attempts, including rejected layouts.",
	})

	// FillAttempts counts CSP fill searches started.
	FillAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kakuro_fill_attempts_total",
		Help: "CSP fill attempts across all generation runs.",
	})

	// UniquenessChecks counts robust uniqueness verdicts by result.
	UniquenessChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kakuro_uniqueness_checks_total",
		Help: "Robust uniqueness check verdicts.",
	}, []string{"result"})

	// TopologyRepairs counts attempted and successful topology repairs.
	TopologyRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kakuro_topology_repairs_total",
		Help: "Topology repair attempts by outcome.",
	}, []string{"outcome"})
)
