// Package metrics provides Prometheus metrics for weather lookups and search views
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus metrics for lookups and search view sessions.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	lookupsTotal    *prometheus.CounterVec
	lookupDuration  *prometheus.HistogramVec
	supersededTotal prometheus.Counter
	transitions     *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// New creates and registers the metrics on registry
func New(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}

	m.lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookups_total",
			Help: "Total number of weather lookups by outcome",
		},
		[]string{"query_type", "outcome"}, // query_type: city, coords; outcome: success, not_found, timeout, ...
	)

	m.lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_lookup_duration_seconds",
			Help:    "Time taken by weather provider lookups",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"query_type"},
	)

	m.supersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_view_superseded_results_total",
		Help: "Fetch results dropped because a newer search was issued",
	})

	m.transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_view_transitions_total",
			Help: "Search view state transitions",
		},
		[]string{"from", "to"},
	)

	m.activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "search_view_active_sessions",
		Help: "Number of live search view sessions",
	})

	for _, c := range []prometheus.Collector{
		m.lookupsTotal, m.lookupDuration, m.supersededTotal, m.transitions, m.activeSessions,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Registry returns the registry the metrics live on
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveLookup records one finished lookup
func (m *Metrics) ObserveLookup(queryType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(queryType, outcome).Inc()
	m.lookupDuration.WithLabelValues(queryType).Observe(d.Seconds())
}

// IncSuperseded counts a dropped stale result
func (m *Metrics) IncSuperseded() {
	if m == nil {
		return
	}
	m.supersededTotal.Inc()
}

// ObserveTransition counts a search view state change
func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// SessionOpened increments the live session gauge
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

// SessionClosed decrements the live session gauge
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
