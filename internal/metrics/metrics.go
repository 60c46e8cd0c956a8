// Package metrics exposes Prometheus collectors for analysis runs.
//
// Collectors are package-level and registered via Register. The recording
// helpers are no-ops until Register succeeds, so library users that never
// opt into metrics pay nothing.
package metrics

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	regOK atomic.Bool

	runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Number of analysis runs by outcome.",
		}, []string{"status"},
	)
	eventsDispatched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Number of events delivered by the dispatcher.",
		},
	)
	listenerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "dispatch",
			Name:      "listener_calls_total",
			Help:      "Number of listener invocations per module.",
		}, []string{"module"},
	)
	listenerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "dispatch",
			Name:      "listener_errors_total",
			Help:      "Number of listener failures (errors and recovered panics) per module.",
		}, []string{"module"},
	)
	normalizerChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "normalize",
			Name:      "changes_total",
			Help:      "Number of events moved, injected, linked or reclassified per normalizer.",
		}, []string{"normalizer"},
	)
	normalizerAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "normalize",
			Name:      "anomalies_total",
			Help:      "Number of ordering violations repaired after a normalizer.",
		}, []string{"normalizer"},
	)
	accountingAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fightlog",
			Subsystem: "tracker",
			Name:      "anomalies_total",
			Help:      "Number of clamped accounting anomalies per tracker module and kind.",
		}, []string{"module", "kind"},
	)
	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fightlog",
			Subsystem: "analysis",
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent per pipeline phase.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		runs, eventsDispatched, listenerCalls, listenerErrors,
		normalizerChanges, normalizerAnomalies, accountingAnomalies, phaseDuration,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// IncRun records a finished run with status "ok" or "error".
func IncRun(status string) {
	if regOK.Load() {
		runs.WithLabelValues(status).Inc()
	}
}

// AddEventsDispatched records dispatched events.
func AddEventsDispatched(n int) {
	if regOK.Load() {
		eventsDispatched.Add(float64(n))
	}
}

// AddListenerCalls records listener invocations for a module.
func AddListenerCalls(module string, n int) {
	if regOK.Load() && n > 0 {
		listenerCalls.WithLabelValues(module).Add(float64(n))
	}
}

// IncListenerError records one listener failure for a module.
func IncListenerError(module string) {
	if regOK.Load() {
		listenerErrors.WithLabelValues(module).Inc()
	}
}

// AddNormalizerChanges records the number of events a normalizer touched.
func AddNormalizerChanges(normalizer string, n int) {
	if regOK.Load() && n > 0 {
		normalizerChanges.WithLabelValues(normalizer).Add(float64(n))
	}
}

// IncNormalizerAnomaly records an ordering repair after a normalizer.
func IncNormalizerAnomaly(normalizer string) {
	if regOK.Load() {
		normalizerAnomalies.WithLabelValues(normalizer).Inc()
	}
}

// IncAccountingAnomaly records one clamped accounting anomaly.
func IncAccountingAnomaly(module, kind string) {
	if regOK.Load() {
		accountingAnomalies.WithLabelValues(module, kind).Inc()
	}
}

// ObservePhase records the wall time of one pipeline phase in seconds.
func ObservePhase(phase string, seconds float64) {
	if regOK.Load() {
		phaseDuration.WithLabelValues(phase).Observe(seconds)
	}
}

// WriteTextfile writes the gathered metrics in the Prometheus text format,
// for node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
