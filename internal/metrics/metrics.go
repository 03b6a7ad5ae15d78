// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "janmitra_http_requests_total",
			Help: "Total HTTP requests by method, route and status class",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "janmitra_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "janmitra_rate_limit_rejections_total",
			Help: "Requests rejected by a rate limit policy",
		},
		[]string{"policy"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "janmitra_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	AuditEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "janmitra_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		},
	)

	AuditWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "janmitra_audit_write_errors_total",
			Help: "Audit events that failed to persist",
		},
	)

	ComplaintTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "janmitra_complaint_transitions_total",
			Help: "Complaint status changes by target status",
		},
		[]string{"status"},
	)

	ScorerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "janmitra_scorer_requests_total",
			Help: "Danger scorer calls by outcome (ok, fallback)",
		},
		[]string{"outcome"},
	)

	ScorerBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "janmitra_scorer_breaker_state",
			Help: "Danger scorer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)
