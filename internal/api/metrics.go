package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the API.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
	Evaluations     *prometheus.CounterVec
	Archived        prometheus.Counter
}

// NewMetrics creates the API metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowaudit_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowaudit_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowaudit_http_rate_limited_total",
			Help: "Total number of requests rejected by the per-tenant rate limiter",
		}, []string{"tenant"}),
		Evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowaudit_evaluations_total",
			Help: "Total number of group query evaluations by outcome",
		}, []string{"outcome"}),
		Archived: f.NewCounter(prometheus.CounterOpts{
			Name: "flowaudit_evaluations_archived_total",
			Help: "Total number of evaluations written to the archive",
		}),
	}
}
