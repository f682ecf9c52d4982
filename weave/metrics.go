package weave

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "instrument"

type metrics struct {
	enhanced   *prometheus.CounterVec
	unresolved *prometheus.CounterVec
	panics     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		enhanced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "enhanced_members_total",
			Help:      "Number of members bound to an interceptor.",
		}, []string{"plugin", "kind"}),
		unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unresolved_interceptors_total",
			Help:      "Number of bindings skipped because their interceptor couldn't be resolved.",
		}, []string{"plugin"}),
		panics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "interceptor_panics_total",
			Help:      "Number of recovered interceptor panics.",
		}, []string{"interceptor"}),
	}

	var err error
	if m.enhanced, err = register(reg, m.enhanced); err != nil {
		return nil, err
	}
	if m.unresolved, err = register(reg, m.unresolved); err != nil {
		return nil, err
	}
	if m.panics, err = register(reg, m.panics); err != nil {
		return nil, err
	}
	return m, nil
}

// register registers c with reg. If an equal collector is already
// registered, for example by another Engine, that one is returned.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}
