// Package metrics defines Prometheus metrics for vaccine-alert.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "va"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe succeeded.",
	})
)

// Poll metrics.
var (
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Total number of polls by outcome.",
	}, []string{"outcome"})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration_seconds",
		Help:      "Duration of a full poll (fetch, evaluate, notify) in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	PollsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_skipped_total",
		Help:      "Ticks dropped because the previous poll was still running.",
	})

	ConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "consecutive_failures",
		Help:      "Number of consecutive polls that failed to fetch or parse.",
	})

	Available = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "available",
		Help:      "1 if the last successful poll found open capacity.",
	})

	OpenCenters = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_centers",
		Help:      "Number of centers with open capacity in the last successful poll.",
	})

	SchedulerNextPollTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_poll_timestamp",
		Help:      "Unix timestamp of the next scheduled poll.",
	})
)

// Upstream API metrics.
var (
	CowinAPICallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cowin_api_calls_total",
		Help:      "Total upstream availability API calls by result.",
	}, []string{"result"})

	CowinBudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cowin_budget_remaining",
		Help:      "Calls remaining in the current upstream rate-limit window.",
	})

	CowinBudgetExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cowin_budget_exhausted_total",
		Help:      "Total number of times the upstream call budget was exhausted.",
	})
)

// Alert metrics.
var (
	AlertsFiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_fired_total",
		Help:      "Total number of availability alerts fired.",
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total notification attempts by channel and outcome.",
	}, []string{"channel", "outcome"})

	NotificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Total number of notification send failures.",
	})

	NotificationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single channel send in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})
)
