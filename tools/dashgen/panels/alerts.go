package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// AlertsFired returns a stat panel counting availability alerts in the past
// 24 hours.
func AlertsFired() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Alerts Fired (24h)").
		Description("Rising edges from no slots to open slots").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(va_alerts_fired_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// NotificationOutcomes returns a timeseries of channel sends by channel and
// outcome.
func NotificationOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Notification Outcomes").
		Description("Channel sends per second by channel and outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			`sum by (channel, outcome) (rate(va_notifications_total{`+Job+`}[5m]))`,
			"{{channel}} {{outcome}}", "A",
		)).
		Unit("ops").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("max", "last")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// NotificationLatency returns a timeseries panel showing the p95 channel
// send latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Notification Latency (p95)").
		Description("95th percentile send latency per channel").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`va:notification_duration:p95_5m`, "{{channel}}", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// NotificationFailures returns a stat panel showing notification failures
// in the past 24 hours.
func NotificationFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Notification Failures (24h)").
		Description("Failed channel sends in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(va_notification_failures_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 5)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
