package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records dispatch core activity: status transitions, cascade
// outcomes, and capacity pressure. All methods are nil-safe so callers can
// pass a zero-value instance when metrics are disabled.
type DispatchMetrics struct {
	transitionDuration *prometheus.HistogramVec
	transitionSuccess  *prometheus.CounterVec
	transitionFailure  *prometheus.CounterVec
	cascadeBlocked     *prometheus.CounterVec
	overCapacity       prometheus.Counter
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_transition_duration_seconds",
		Help:    "Duration of status transitions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_transition_success",
		Help: "Successful status transitions.",
	}, []string{"entity", "operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_transition_failure",
		Help: "Rejected status transitions.",
	}, []string{"entity", "operation", "reason"})
	cascadeBlocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_cascade_blocked",
		Help: "Trip transitions blocked by order cascade failures.",
	}, []string{"operation"})
	overCapacity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_over_capacity_assignments",
		Help: "Assignments accepted above truck capacity.",
	})
	reg.MustRegister(duration, success, failure, cascadeBlocked, overCapacity)
	return &DispatchMetrics{
		transitionDuration: duration,
		transitionSuccess:  success,
		transitionFailure:  failure,
		cascadeBlocked:     cascadeBlocked,
		overCapacity:       overCapacity,
	}
}

// ObserveTransition records the duration for an entity transition.
func (m *DispatchMetrics) ObserveTransition(entity, operation string, duration time.Duration) {
	if m == nil || m.transitionDuration == nil {
		return
	}
	m.transitionDuration.WithLabelValues(normalizeLabel(entity), normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncTransitionSuccess increments the success counter.
func (m *DispatchMetrics) IncTransitionSuccess(entity, operation string) {
	if m == nil || m.transitionSuccess == nil {
		return
	}
	m.transitionSuccess.WithLabelValues(normalizeLabel(entity), normalizeLabel(operation)).Inc()
}

// IncTransitionFailure increments the failure counter with the rejection reason.
func (m *DispatchMetrics) IncTransitionFailure(entity, operation, reason string) {
	if m == nil || m.transitionFailure == nil {
		return
	}
	m.transitionFailure.WithLabelValues(normalizeLabel(entity), normalizeLabel(operation), normalizeLabel(reason)).Inc()
}

// IncCascadeBlocked increments the blocked-cascade counter.
func (m *DispatchMetrics) IncCascadeBlocked(operation string) {
	if m == nil || m.cascadeBlocked == nil {
		return
	}
	m.cascadeBlocked.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncOverCapacity increments the over-capacity assignment counter.
func (m *DispatchMetrics) IncOverCapacity() {
	if m == nil || m.overCapacity == nil {
		return
	}
	m.overCapacity.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
