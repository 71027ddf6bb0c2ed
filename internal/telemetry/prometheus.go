// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "research_assistant"

// PrometheusSink turns events into counters and histograms.
type PrometheusSink struct {
	Events       *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
	ToolEvidence *prometheus.CounterVec
	Tokens       prometheus.Counter
	Citations    prometheus.Histogram
	Rejections   prometheus.Counter
	AgentErrors  prometheus.Counter
}

// NewPrometheusSink registers the agent metrics with reg
// (prometheus.DefaultRegisterer when nil).
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusSink{
		Events: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "agent",
				Name:      "events_total",
				Help:      "Total number of telemetry events by name",
			},
			[]string{"event"},
		),
		ToolCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tools",
				Name:      "calls_total",
				Help:      "Total number of completed tool invocations",
			},
			[]string{"tool"},
		),
		ToolEvidence: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tools",
				Name:      "evidence_total",
				Help:      "Total number of evidence records returned by tools",
			},
			[]string{"tool"},
		),
		Tokens: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_used_total",
			Help:      "Total tokens used by accepted answers",
		}),
		Citations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "citations_per_answer",
			Help:      "Citations attached to accepted answers",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		Rejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "validation_rejections_total",
			Help:      "Total number of candidate answers rejected by the validator",
		}),
		AgentErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "errors_total",
			Help:      "Total number of failed queries",
		}),
	}
}

// Emit updates the metrics for e.
func (s *PrometheusSink) Emit(_ context.Context, e Event) {
	s.Events.WithLabelValues(e.Name).Inc()

	switch e.Name {
	case EventToolResult:
		tool, _ := e.Fields["tool_name"].(string)
		s.ToolCalls.WithLabelValues(tool).Inc()
		if n, ok := e.Fields["count"].(int); ok {
			s.ToolEvidence.WithLabelValues(tool).Add(float64(n))
		}
	case EventAgentResponse:
		if n, ok := e.Fields["total_tokens"].(int); ok {
			s.Tokens.Add(float64(n))
		}
		if n, ok := e.Fields["citation_count"].(int); ok {
			s.Citations.Observe(float64(n))
		}
	case EventValidationRejected:
		s.Rejections.Inc()
	case EventAgentError:
		s.AgentErrors.Inc()
	}
}
