package rules

// RecordingRules returns a PrometheusRule CR with the rate expressions the
// dashboard and alert rules share.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   "va-recording-rules",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "va-recording",
					Rules: []Rule{
						{
							Record: "va:http_requests:rate5m",
							Expr:   `sum(rate(va_http_requests_total[5m]))`,
						},
						{
							Record: "va:http_errors:rate5m",
							Expr:   `sum(rate(va_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: "va:polls:rate5m",
							Expr:   `sum(rate(va_polls_total[5m]))`,
						},
						{
							Record: "va:poll_failures:rate5m",
							Expr:   `sum(rate(va_polls_total{outcome=~"transport_error|format_error|budget_exhausted|panic"}[5m]))`,
						},
						{
							Record: "va:cowin_api_calls:rate5m",
							Expr:   `sum by (result) (rate(va_cowin_api_calls_total[5m]))`,
						},
						{
							Record: "va:notification_duration:p95_5m",
							Expr:   `histogram_quantile(0.95, sum by (channel, le) (rate(va_notification_duration_seconds_bucket[5m])))`,
						},
					},
				},
			},
		},
	}
}
