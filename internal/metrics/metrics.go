// Package metrics exposes Prometheus collectors for the court case tracker.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dispatch outcomes recorded by ObserveDispatch.
const (
	DispatchOK       = "ok"
	DispatchRejected = "rejected"
	DispatchError    = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtcase_dispatch_total",
			Help: "Crawl dispatch calls to the crawl service, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	dispatchedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtcase_dispatched_requests_total",
			Help: "Crawl requests accepted by the crawl service.",
		},
	)

	scheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courtcase_scheduled_total",
			Help: "Court cases persisted with pending status.",
		},
	)

	parseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtcase_parse_failures_total",
			Help: "Case numbers rejected by the parser, labeled by failing segment.",
		},
		[]string{"reason"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDispatch records one dispatch call carrying n requests.
func ObserveDispatch(outcome string, n int) {
	dispatchTotal.WithLabelValues(outcome).Inc()
	if outcome == DispatchOK && n > 0 {
		dispatchedRequestsTotal.Add(float64(n))
	}
}

// ObserveScheduled adds n cases marked pending.
func ObserveScheduled(n int) {
	if n > 0 {
		scheduledTotal.Add(float64(n))
	}
}

// ObserveParseFailure counts a rejected case number.
func ObserveParseFailure(reason string) {
	parseFailuresTotal.WithLabelValues(reason).Inc()
}
