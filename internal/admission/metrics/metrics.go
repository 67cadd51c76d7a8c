package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the admission module.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	Conflicts          prometheus.Counter
	InvalidTransitions prometheus.Counter
}

// New creates and registers the admission metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admissio_transitions_total",
			Help: "Accepted application transitions by target state",
		}, []string{"state"}),

		Conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admissio_transition_conflicts_total",
			Help: "Transitions rejected by optimistic version checks",
		}),

		InvalidTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "admissio_invalid_transitions_total",
			Help: "Events rejected because the application was not in the source state",
		}),
	}
}

// IncrementTransitions records one committed transition.
func (m *Metrics) IncrementTransitions(state string) {
	if m != nil {
		m.Transitions.WithLabelValues(state).Inc()
	}
}

// IncrementConflicts records one version conflict.
func (m *Metrics) IncrementConflicts() {
	if m != nil {
		m.Conflicts.Inc()
	}
}

// IncrementInvalidTransitions records one rejected lifecycle event.
func (m *Metrics) IncrementInvalidTransitions() {
	if m != nil {
		m.InvalidTransitions.Inc()
	}
}
