// Package metrics exposes Prometheus collectors for the sync controller.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitsync"

// Refresh outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"
)

// Mutation outcomes.
const (
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the controller's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	refreshes     *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	snapshotItems *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Full refreshes by outcome (ok, degraded, failed).",
		}, []string{"outcome"}),
		fetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed resource fetches by resource.",
		}, []string{"resource"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Resource fetch latency by resource.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutation commands by command and outcome.",
		}, []string{"command", "outcome"}),
		snapshotItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_items",
			Help:      "Items in the current snapshot by kind.",
		}, []string{"kind"}),
	}
}

// ObserveFetch records one resource fetch.
func (m *Metrics) ObserveFetch(resource string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.WithLabelValues(resource).Observe(elapsed.Seconds())
	if err != nil {
		m.fetchFailures.WithLabelValues(resource).Inc()
	}
}

// RefreshDone records the outcome of a full refresh.
func (m *Metrics) RefreshDone(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

// MutationDone records the outcome of a mutation command.
func (m *Metrics) MutationDone(command, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(command, outcome).Inc()
}

// SetSnapshotItems records the size of one snapshot resource.
func (m *Metrics) SetSnapshotItems(kind string, n int) {
	if m == nil {
		return
	}
	m.snapshotItems.WithLabelValues(kind).Set(float64(n))
}
