package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the auth module.
type Metrics struct {
	Registrations *prometheus.CounterVec
	Logins        *prometheus.CounterVec
}

// New creates and registers the auth metrics.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admissio_registrations_total",
			Help: "Total principal registrations by role",
		}, []string{"role"}),

		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "admissio_logins_total",
			Help: "Total login attempts by outcome",
		}, []string{"outcome"}), // outcome: "success", "invalid", "locked"
	}
}

// IncrementRegistrations records one completed registration.
func (m *Metrics) IncrementRegistrations(role string) {
	if m != nil {
		m.Registrations.WithLabelValues(role).Inc()
	}
}

// IncrementLogins records one login attempt outcome.
func (m *Metrics) IncrementLogins(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}
