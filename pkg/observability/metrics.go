package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MatiasV55/eligibility-chatbot/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eligibility"

// Metrics holds the conversation counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Transitions     *prometheus.CounterVec
	Clarifications  *prometheus.CounterVec
	Verdicts        *prometheus.CounterVec
	FailedRules     *prometheus.CounterVec
	PersistFailures prometheus.Counter
	RenderFallbacks prometheus.Counter
}

// NewMetrics creates and registers all collectors, plus the Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of dialogue state transitions",
			},
			[]string{"from", "to"},
		),
		Clarifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clarifications_total",
				Help:      "Total number of answers that could not be read as a fact",
			},
			[]string{"fact", "reason"},
		),
		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verdicts_total",
				Help:      "Total number of eligibility verdicts",
			},
			[]string{"eligible"},
		),
		FailedRules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failed_rules_total",
				Help:      "Total number of failed eligibility rules",
			},
			[]string{"reason"},
		),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Total number of transcript writes that failed or timed out",
		}),
		RenderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_fallbacks_total",
			Help:      "Total number of replies rendered from templates after a model failure",
		}),
	}

	m.registry.MustRegister(
		m.Transitions,
		m.Clarifications,
		m.Verdicts,
		m.FailedRules,
		m.PersistFailures,
		m.RenderFallbacks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnClarify: func(_ context.Context, e *domain.ClarifyEvent) {
			m.Clarifications.WithLabelValues(string(e.Fact), string(e.Reason)).Inc()
		},
		OnVerdict: func(_ context.Context, e *domain.VerdictEvent) {
			m.Verdicts.WithLabelValues(strconv.FormatBool(e.Verdict.Eligible)).Inc()
			for _, r := range e.Verdict.Reasons {
				m.FailedRules.WithLabelValues(string(r)).Inc()
			}
		},
		OnPersistFailure: func(context.Context, *domain.FailureEvent) {
			m.PersistFailures.Inc()
		},
		OnRenderFallback: func(context.Context, *domain.FailureEvent) {
			m.RenderFallbacks.Inc()
		},
	}
}
