package main

import "errors"

// KnownMetrics is the set of metric names vaccine-alert exports plus the
// recording rules the dashboard and alerts refer to.
var KnownMetrics = map[string]bool{
	// HTTP.
	"va_http_request_duration_seconds_bucket": true,
	"va_http_requests_total":                  true,
	"va_healthz_up":                           true,
	"va_readyz_up":                            true,

	// Polling.
	"va_polls_total":                   true,
	"va_poll_duration_seconds_bucket":  true,
	"va_polls_skipped_total":           true,
	"va_consecutive_failures":          true,
	"va_available":                     true,
	"va_open_centers":                  true,
	"va_scheduler_next_poll_timestamp": true,

	// Upstream API.
	"va_cowin_api_calls_total":        true,
	"va_cowin_budget_remaining":       true,
	"va_cowin_budget_exhausted_total": true,

	// Alerts and notifications.
	"va_alerts_fired_total":                   true,
	"va_notifications_total":                  true,
	"va_notification_failures_total":          true,
	"va_notification_duration_seconds_bucket": true,

	// Recording rules.
	"va:http_requests:rate5m":         true,
	"va:http_errors:rate5m":           true,
	"va:polls:rate5m":                 true,
	"va:poll_failures:rate5m":         true,
	"va:cowin_api_calls:rate5m":       true,
	"va:notification_duration:p95_5m": true,

	// Standard Prometheus metrics.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig generates everything into ../../deploy relative to
// tools/dashgen.
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
