// Package metrics defines prometheus metrics to expose
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ColdStartInitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lambda_container_cold_start_init_seconds",
			Help:    "Time spent registering the dispatch filter on the first invocation",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	HandleRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lambda_container_handle_request_seconds",
			Help:    "Time spent inside the dispatch filter chain per invocation",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	ProxyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lambda_container_proxy_seconds",
			Help:    "Full event-to-payload round trip time per invocation",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	Invocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lambda_container_invocations_total",
			Help: "Invocations processed, labeled by outcome",
		},
		[]string{"outcome"},
	)

	InitFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lambda_container_init_failures_total",
			Help: "Failed dispatch filter initializations",
		},
	)
)

// Time starts a timer against obs and returns the stop function.
func Time(obs prometheus.Observer) func() {
	start := time.Now()
	return func() {
		obs.Observe(time.Since(start).Seconds())
	}
}
