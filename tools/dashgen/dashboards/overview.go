// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/vaccine-alert/tools/dashgen/panels"
)

// UID is the stable dashboard identifier.
const UID = "va-overview"

// BuildOverview constructs the vaccine-alert overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Vaccine Alert Overview").
		Uid(UID).
		Tags([]string{"vaccine-alert", "cowin"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.AvailableStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Polling").
		WithPanel(panels.PollOutcomes()).
		WithPanel(panels.PollDuration()).
		WithPanel(panels.ConsecutiveFailures()).
		WithPanel(panels.OpenCenters()).
		WithPanel(panels.SkippedPolls()).
		WithPanel(panels.NextPollCountdown()))

	b.WithRow(dashboard.NewRowBuilder("CoWIN API").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.BudgetGauge()).
		WithPanel(panels.BudgetExhausted()))

	b.WithRow(dashboard.NewRowBuilder("Alerts").
		WithPanel(panels.AlertsFired()).
		WithPanel(panels.NotificationFailures()).
		WithPanel(panels.NotificationOutcomes()).
		WithPanel(panels.NotificationLatency()))

	b.WithRow(dashboard.NewRowBuilder("Status API").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
