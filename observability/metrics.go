package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoutingDecisions counts completed routing decisions by the tier the
	// classifier chose and the tier that ultimately answered.
	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_decisions_total",
			Help: "Total routing decisions by candidate and final tier",
		},
		[]string{"candidate_tier", "final_tier"},
	)

	// RoutingFallbacks counts light-tier failures that triggered a
	// fallback, by failure reason.
	RoutingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_fallbacks_total",
			Help: "Total fallbacks from the light tier by failure reason",
		},
		[]string{"reason"},
	)

	// RoutingFailures counts terminal routing failures by tier and reason.
	RoutingFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routing_failures_total",
			Help: "Total terminal routing failures by tier and failure reason",
		},
		[]string{"tier", "reason"},
	)

	// BackendCallDuration observes the wall time of each backend
	// invocation, successful or not.
	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "backend_call_duration_seconds",
			Help: "Duration of backend invocations in seconds",
		},
		[]string{"tier", "model"},
	)
)
