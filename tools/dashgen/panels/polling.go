package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PollOutcomes returns a stacked timeseries of polls per second by outcome.
func PollOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Poll Outcomes").
		Description("Polls per second split by available, unavailable and error outcomes").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`sum by (outcome) (rate(va_polls_total{`+Job+`}[5m]))`, "{{outcome}}", "A")).
		Unit("ops").
		FillOpacity(30).
		LineWidth(1).
		Legend(TableLegend("mean", "last")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PollDuration returns p50 and p95 of the full fetch, evaluate and notify
// cycle.
func PollDuration() *timeseries.PanelBuilder {
	q := func(p string) string {
		return `histogram_quantile(` + p + `, sum(rate(va_poll_duration_seconds_bucket{` + Job + `}[5m])) by (le))`
	}
	return timeseries.NewPanelBuilder().
		Title("Poll Duration").
		Description("Duration of one poll including notification fan-out").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(q("0.50"), "p50", "A")).
		WithTarget(PromQuery(q("0.95"), "p95", "B")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(5, 15)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ConsecutiveFailures shows the current failed-poll streak.
func ConsecutiveFailures() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Consecutive Failures").
		Description("Polls in a row that failed to fetch or parse").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`max(va_consecutive_failures{`+Job+`})`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// OpenCenters shows how many centers had open capacity at the last
// successful poll.
func OpenCenters() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Open Centers").
		Description("Centers with open capacity in the last successful poll").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`max(va_open_centers{`+Job+`})`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// SkippedPolls shows ticks dropped because the previous poll overran.
func SkippedPolls() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Skipped Ticks (24h)").
		Description("Ticks dropped because the previous poll was still running").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(va_polls_skipped_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 10)).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}

// NextPollCountdown shows seconds until the scheduler fires again.
func NextPollCountdown() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Next Poll In").
		Description("Seconds until the next scheduled poll").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`max(va_scheduler_next_poll_timestamp{`+Job+`}) - time()`, "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}
