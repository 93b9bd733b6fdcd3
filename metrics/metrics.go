// Package metrics exposes prometheus counters for the decision loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Cycles          prometheus.Counter
	CycleErrors     prometheus.Counter
	OrdersSubmitted *prometheus.CounterVec // by side
	ExitsTriggered  prometheus.Counter
	EntriesBlocked  *prometheus.CounterVec // by gate code

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybot_cycles_total",
			Help: "Completed scheduler cycles.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybot_cycle_errors_total",
			Help: "Cycles that ended with an error.",
		}),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybot_orders_submitted_total",
			Help: "Orders submitted to the broker.",
		}, []string{"side"}),
		ExitsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daybot_exits_triggered_total",
			Help: "Protective exits submitted.",
		}),
		EntriesBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "daybot_entries_blocked_total",
			Help: "Cycles with entries blocked, by gate code.",
		}, []string{"code"}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.CycleErrors,
		m.OrdersSubmitted,
		m.ExitsTriggered,
		m.EntriesBlocked,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
