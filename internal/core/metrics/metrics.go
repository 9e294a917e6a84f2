// Package metrics exposes Prometheus instrumentation for the evaluation
// core. Counters only; the core's own outputs carry the interesting gauges.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsdeck_evaluations_total",
		Help: "Number of evaluation ticks executed.",
	})

	AlertsRaisedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_alerts_raised_total",
		Help: "Alerts raised, by level.",
	}, []string{"level"})

	AlertsDedupedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opsdeck_alerts_deduped_total",
		Help: "Triggers suppressed by the dedup cooldown.",
	})

	RateLimitDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opsdeck_ratelimit_denied_total",
		Help: "Requests denied by the rate limiter, by limiter name.",
	}, []string{"limiter"})
)
