// Package metrics exposes Prometheus collectors for bot traffic and stock
// alarms. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_bot"

type Metrics struct {
	commands      *prometheus.CounterVec
	flows         *prometheus.CounterVec
	lowStock      prometheus.Counter
	duplicates    prometheus.Counter
	persistErrors prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands received, by command name.",
		}, []string{"command"}),
		flows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_completed_total",
			Help:      "Conversation flows that reached a store mutation, by action and outcome.",
		}, []string{"action", "outcome"}),
		lowStock: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "low_stock_alarms_total",
			Help:      "Low-stock warnings appended to replies.",
		}),
		duplicates: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_updates_total",
			Help:      "Inbound updates dropped as redeliveries.",
		}),
		persistErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Inventory writes that failed and were rolled back.",
		}),
	}
}

func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) FlowCompleted(action, outcome string) {
	if m == nil {
		return
	}
	m.flows.WithLabelValues(action, outcome).Inc()
	if outcome == OutcomeError {
		m.persistErrors.Inc()
	}
}

func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStock.Inc()
}

func (m *Metrics) DuplicateUpdate() {
	if m == nil {
		return
	}
	m.duplicates.Inc()
}

const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)
