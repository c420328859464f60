// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DialogActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_actions_total",
			Help: "Total number of dialog actions emitted, by action type and intent",
		},
		[]string{"action", "intent"},
	)

	RequestsEnqueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_requests_enqueued_total",
			Help: "Total number of recommendation requests placed on the work queue",
		},
	)

	WorkerOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_outcomes_total",
			Help: "Total number of fulfillment iterations by outcome",
		},
		[]string{"outcome"},
	)

	WorkerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_errors_total",
			Help: "Total number of aborted fulfillment iterations by stage",
		},
		[]string{"stage"},
	)

	WorkerIterationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fulfillment_iteration_duration_seconds",
			Help: "Duration of one fulfillment iteration in seconds",
		},
	)

	EmailsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_emails_sent_total",
			Help: "Total number of recommendation emails delivered",
		},
	)
)
