// metrics.go — prometheus counters for boundary outcomes.
package pgguard

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Boundary outcomes recorded by Metrics.
const (
	OutcomeReturn   = "return"
	OutcomeRethrow  = "rethrow"
	OutcomeReported = "reported"
	OutcomeGeneric  = "generic"
)

// Metrics counts what crossed the boundary. A nil *Metrics records nothing.
type Metrics struct {
	boundary *prometheus.CounterVec
	emitted  *prometheus.CounterVec
	hostErr  prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg. Counters
// that are already registered under the same names are reused.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		boundary: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundary_outcomes_total",
			Help:      "Calls into Go code from the host, by how they left the boundary.",
		}, []string{"outcome"}),
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_emitted_total",
			Help:      "Diagnostics handed to the host, by severity.",
		}, []string{"level"}),
		hostErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_errors_intercepted_total",
			Help:      "Host errors intercepted at a host call and unwound to the boundary.",
		}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	m.boundary, err = register(reg, m.boundary)
	if err != nil {
		return nil, err
	}
	m.emitted, err = register(reg, m.emitted)
	if err != nil {
		return nil, err
	}
	m.hostErr, err = register(reg, m.hostErr)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) outcome(o string) {
	if m == nil {
		return
	}
	m.boundary.WithLabelValues(o).Inc()
}

func (m *Metrics) emittedAt(l Level) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(l.String()).Inc()
}

func (m *Metrics) hostError() {
	if m == nil {
		return
	}
	m.hostErr.Inc()
}
