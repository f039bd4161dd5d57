package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Read-path metrics
	ReadsTotal     *prometheus.CounterVec
	ReadsDegraded  *prometheus.CounterVec
	IndexFallbacks *prometheus.CounterVec
	LookupFailures prometheus.Counter

	// Write-path metrics
	WritesTotal  *prometheus.CounterVec
	WriteFailues *prometheus.CounterVec

	// Messaging metrics
	MessagesPublished prometheus.Counter
	MessagesFailed    prometheus.Counter

	// Database metrics
	DatabaseLatency *prometheus.HistogramVec
}

// New creates and registers all application metrics
func New(namespace string) *Metrics {
	return &Metrics{
		ReadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Scoped reads issued, by operation",
		}, []string{"op"}),
		ReadsDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_degraded_total",
			Help:      "Reads answered with their safe default after a swallowed failure",
		}, []string{"op"}),
		IndexFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_fallbacks_total",
			Help:      "Ordered reads retried without ordering after a missing-index rejection",
		}, []string{"collection"}),
		LookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secondary_lookup_failures_total",
			Help:      "Per-record display-name lookups that fell back to the Unknown placeholder",
		}),
		WritesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Write operations issued, by operation",
		}, []string{"op"}),
		WriteFailues: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Write operations that failed and were surfaced to the caller",
		}, []string{"op"}),
		MessagesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broker_messages_published_total",
			Help:      "Events published to the message broker",
		}),
		MessagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broker_messages_failed_total",
			Help:      "Events that could not be published to the message broker",
		}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Time spent in store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"op"}),
	}
}
