// Package metrics exposes Prometheus instruments for the fact pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	factsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daykeep",
			Subsystem: "bus",
			Name:      "facts_published_total",
			Help:      "Total number of facts published to the bus.",
		},
		[]string{"kind"},
	)

	consumerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daykeep",
			Subsystem: "consumer",
			Name:      "runs_total",
			Help:      "Total number of consumer invocations by outcome.",
		},
		[]string{"consumer", "outcome"},
	)

	consumerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "daykeep",
			Subsystem: "consumer",
			Name:      "run_duration_seconds",
			Help:      "Duration of consumer invocations.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"consumer"},
	)

	duplicateSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "daykeep",
			Subsystem: "consumer",
			Name:      "duplicate_skips_total",
			Help:      "Redelivered facts skipped because a receipt already existed.",
		},
		[]string{"consumer"},
	)
)

func init() {
	Registry.MustRegister(
		factsPublished,
		consumerRuns,
		consumerDuration,
		duplicateSkips,
	)
}

// FactPublished counts a publish call by fact kind.
func FactPublished(kind string) {
	factsPublished.WithLabelValues(kind).Inc()
}

// ConsumerRun records one consumer invocation and its duration.
func ConsumerRun(consumer, outcome string, d time.Duration) {
	consumerRuns.WithLabelValues(consumer, outcome).Inc()
	consumerDuration.WithLabelValues(consumer).Observe(d.Seconds())
}

// DuplicateSkip counts a fact skipped due to an existing receipt.
func DuplicateSkip(consumer string) {
	duplicateSkips.WithLabelValues(consumer).Inc()
}
