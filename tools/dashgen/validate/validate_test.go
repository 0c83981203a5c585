package validate

import (
	"testing"

	"github.com/prometheus/prometheus/promql/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/vaccine-alert/tools/dashgen/rules"
)

var known = map[string]bool{
	"va_polls_total":        true,
	"va_alerts_fired_total": true,
	"up":                    true,
}

func TestExpr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expr     string
		wantErrs int
	}{
		{name: "known metric", expr: `rate(va_polls_total[5m])`},
		{name: "function only", expr: `time()`},
		{name: "two known metrics", expr: `va_polls_total / on() group_left up`},
		{name: "unknown metric", expr: `rate(va_missing_total[5m])`, wantErrs: 1},
		{name: "parse error", expr: `rate(va_polls_total[5m]`, wantErrs: 1},
		{name: "empty", expr: ``, wantErrs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := Expr("test", tt.expr, known)
			assert.Len(t, res.Errors, tt.wantErrs, "errors: %v", res.Errors)
		})
	}
}

func TestMetricNames(t *testing.T) {
	t.Parallel()

	node, err := parser.ParseExpr(`sum(rate(va_polls_total[5m])) + sum(va_polls_total) + up`)
	require.NoError(t, err)
	assert.Equal(t, []string{"up", "va_polls_total"}, MetricNames(node))
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	dash := map[string]any{
		"panels": []any{
			map[string]any{
				"type":  "row",
				"title": "Polling",
				"panels": []any{
					map[string]any{
						"title":   "Polls",
						"targets": []any{map[string]any{"refId": "A", "expr": `rate(va_polls_total[5m])`}},
					},
					map[string]any{
						"title":   "Bad",
						"targets": []any{map[string]any{"refId": "A", "expr": `va_nope`}},
					},
				},
			},
			map[string]any{"title": "Empty"},
		},
	}

	res := Dashboard(dash, known)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], `unknown metric "va_nope"`)
	assert.Len(t, res.Warnings, 1)
}

func TestRules_RecordedNamesAreKnown(t *testing.T) {
	t.Parallel()

	cr := rules.PrometheusRule{
		Metadata: rules.PrometheusRuleMetadata{Name: "test"},
		Spec: rules.PrometheusRuleSpec{Groups: []rules.RuleGroup{{
			Name: "g",
			Rules: []rules.Rule{
				{Record: "va:polls:rate5m", Expr: `sum(rate(va_polls_total[5m]))`},
				{Alert: "NoPolls", Expr: `va:polls:rate5m == 0`, Labels: map[string]string{"severity": "warning"}},
				{Alert: "NoSeverity", Expr: `up == 0`},
			},
		}}},
	}

	res := Rules(known, cr)
	assert.True(t, res.Ok(), "errors: %v", res.Errors)
	assert.Len(t, res.Warnings, 1)
}
