package rules

// AlertRules returns a PrometheusRule CR with the operational alerts for
// vaccine-alert.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   "va-alerts",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "va-alerts",
					Rules: []Rule{
						{
							Alert: "VaccineAlertDown",
							Expr:  `absent(up{job="vaccine-alert"})`,
							For:   "2m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "vaccine-alert is down",
								"description": "The vaccine-alert job has been absent for more than 2 minutes.",
							},
						},
						{
							Alert: "VaccineAlertNotPolling",
							Expr:  `va_readyz_up == 0`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "critical",
							},
							Annotations: map[string]string{
								"summary":     "vaccine-alert has no recent successful poll",
								"description": "No poll has succeeded within three intervals for more than 5 minutes. Slots could open unnoticed.",
							},
						},
						{
							Alert: "VaccineAlertPollFailures",
							Expr:  `va_consecutive_failures >= 3`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Availability polls are failing",
								"description": "Three or more polls in a row failed to fetch or parse the CoWIN response.",
							},
						},
						{
							Alert: "VaccineAlertBudgetExhausted",
							Expr:  `increase(va_cowin_budget_exhausted_total[10m]) > 0`,
							For:   "0m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "CoWIN call budget exhausted",
								"description": "The client-side call budget ran out. Raise schedule.interval or lower other callers sharing the IP.",
							},
						},
						{
							Alert: "VaccineAlertNotificationFailures",
							Expr:  `increase(va_notification_failures_total[5m]) > 0`,
							For:   "1m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more channels failed to deliver an availability alert.",
							},
						},
						{
							Alert: "VaccineAlertHighErrorRate",
							Expr:  `va:http_errors:rate5m / va:http_requests:rate5m > 0.05`,
							For:   "5m",
							Labels: map[string]string{
								"severity": "warning",
							},
							Annotations: map[string]string{
								"summary":     "High error rate on the status API",
								"description": "More than 5% of status API requests returned 5xx over the last 5 minutes.",
							},
						},
					},
				},
			},
		},
	}
}
