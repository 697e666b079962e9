// Package metrics exposes conversation counters on a private prometheus registry.
package metrics

import (
	"net/http"

	"itinvent-bot/pkg/render"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "itinvent"

type Metrics struct {
	registry *prometheus.Registry

	events               *prometheus.CounterVec
	commits              *prometheus.CounterVec
	collaboratorFailures *prometheus.CounterVec
	activeSessions       prometheus.GaugeFunc
}

// New registers every collector. sessions reports the number of live sessions and may be nil.
func New(sessions func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "events_total",
			Help:      "Inbound events by kind and render outcome.",
		}, []string{"kind", "outcome"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "commits_total",
			Help:      "Confirmation attempts by mode and result.",
		}, []string{"mode", "result"}),
		collaboratorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "collaborator_failures_total",
			Help:      "Failed calls to backends and collaborators.",
		}, []string{"collaborator"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.events,
		m.commits,
		m.collaboratorFailures,
	)

	if sessions != nil {
		m.activeSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}, func() float64 { return float64(sessions()) })
		m.registry.MustRegister(m.activeSessions)
	}

	return m
}

func (m *Metrics) ObserveEvent(kind string, outcome render.Kind) {
	m.events.WithLabelValues(kind, string(outcome)).Inc()
}

func (m *Metrics) ObserveCommit(mode string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.commits.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) ObserveCollaboratorFailure(collaborator string) {
	m.collaboratorFailures.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
