package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cee_executions_total",
			Help: "Total number of code executions",
		},
		[]string{"language", "outcome"}, // outcome: success, nonzero_exit, source_error, rejected, timeout, error
	)

	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cee_execution_duration_ms",
			Help:    "Container run time in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"language"},
	)

	ActiveContainers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cee_active_containers",
			Help: "Containers currently owned by an in-flight execution",
		},
	)

	CleanupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cee_cleanup_failures_total",
			Help: "Kill or remove calls that failed during container release",
		},
		[]string{"action"},
	)

	ReapedContainers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cee_reaped_containers_total",
			Help: "Leftover containers removed by the background reaper",
		},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cee_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)
)
