package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/vaccine-alert/tools/dashgen/dashboards"
	"github.com/donaldgifford/vaccine-alert/tools/dashgen/rules"
	"github.com/donaldgifford/vaccine-alert/tools/dashgen/validate"
)

func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "empty output dir", cfg: Config{DashboardEnabled: true}},
		{name: "nothing enabled", cfg: Config{OutputDir: "/tmp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestBuildOverviewDashboard(t *testing.T) {
	t.Parallel()

	dash, err := dashboards.BuildOverview().Build()
	require.NoError(t, err)

	require.NotNil(t, dash.Uid)
	assert.Equal(t, "va-overview", *dash.Uid)

	require.NotNil(t, dash.Title)
	assert.Equal(t, "Vaccine Alert Overview", *dash.Title)

	require.NotNil(t, dash.Templating)
	assert.Len(t, dash.Templating.List, 1)
	assert.Equal(t, "datasource", dash.Templating.List[0].Name)

	result := validate.Dashboard(dash, KnownMetrics)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
	assert.Empty(t, result.Warnings, "unexpected warnings: %v", result.Warnings)
}

func TestRecordingRules(t *testing.T) {
	t.Parallel()

	cr := rules.RecordingRules()
	assert.Equal(t, "monitoring.coreos.com/v1", cr.APIVersion)
	assert.Equal(t, "PrometheusRule", cr.Kind)
	assert.Equal(t, "va-recording-rules", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]
	assert.Equal(t, "va-recording", group.Name)

	expectedRecords := []string{
		"va:http_requests:rate5m",
		"va:http_errors:rate5m",
		"va:polls:rate5m",
		"va:poll_failures:rate5m",
		"va:cowin_api_calls:rate5m",
		"va:notification_duration:p95_5m",
	}
	require.Len(t, group.Rules, len(expectedRecords))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedRecords[i], rule.Record)
		assert.True(t, KnownMetrics[rule.Record], "%s missing from KnownMetrics", rule.Record)
	}

	data, err := yaml.Marshal(cr)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiVersion: monitoring.coreos.com/v1")
}

func TestAlertRules(t *testing.T) {
	t.Parallel()

	cr := rules.AlertRules()
	assert.Equal(t, "va-alerts", cr.Metadata.Name)

	require.Len(t, cr.Spec.Groups, 1)
	group := cr.Spec.Groups[0]

	expectedAlerts := []string{
		"VaccineAlertDown",
		"VaccineAlertNotPolling",
		"VaccineAlertPollFailures",
		"VaccineAlertBudgetExhausted",
		"VaccineAlertNotificationFailures",
		"VaccineAlertHighErrorRate",
	}
	require.Len(t, group.Rules, len(expectedAlerts))
	for i, rule := range group.Rules {
		assert.Equal(t, expectedAlerts[i], rule.Alert)
		assert.NotEmpty(t, rule.Labels["severity"], "alert %s missing severity", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["summary"], "alert %s missing summary", rule.Alert)
		assert.NotEmpty(t, rule.Annotations["description"], "alert %s missing description", rule.Alert)
	}

	result := validate.Rules(KnownMetrics, rules.RecordingRules(), cr)
	assert.True(t, result.Ok(), "validation errors: %v", result.Errors)
}

func TestRun_WritesArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, false))

	for _, rel := range []string{
		filepath.Join("grafana", "data", "va-overview.json"),
		filepath.Join("prometheus", "va-recording-rules.yaml"),
		filepath.Join("prometheus", "va-alerts.yaml"),
	} {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, "reading %s", rel)
		assert.NotEmpty(t, data)
	}

	alerts, err := os.ReadFile(filepath.Join(dir, "prometheus", "va-alerts.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(alerts), generatedHeader)
}

func TestRun_ValidateOnlyWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := Config{OutputDir: dir, DashboardEnabled: true, RulesEnabled: true}
	require.NoError(t, run(cfg, true))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
