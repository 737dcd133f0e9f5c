// Package metrics holds the Prometheus collectors for blogfront.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogfront_remote_requests_total",
			Help: "Total number of calls to the blog API and object storage",
		},
		[]string{"operation", "outcome"},
	)

	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blogfront_remote_request_duration_seconds",
			Help:    "Duration of calls to the blog API and object storage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	WorkflowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogfront_workflow_transitions_total",
			Help: "Total number of upload workflow state transitions by target state",
		},
		[]string{"state"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blogfront_active_sessions",
			Help: "Number of browser sessions holding an upload workflow",
		},
	)
)

// ObserveRemote records one remote call started at start.
func ObserveRemote(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	RemoteRequestsTotal.WithLabelValues(operation, outcome).Inc()
	RemoteRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
