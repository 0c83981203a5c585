package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

// HealthzStat returns a stat panel showing the liveness probe.
func HealthzStat() *stat.PanelBuilder {
	return upDownStat("Healthz", "Liveness probe (1 = ok, 0 = failing)", `va_healthz_up`)
}

// ReadyzStat returns a stat panel showing the readiness probe, which fails
// once no poll has succeeded for three intervals.
func ReadyzStat() *stat.PanelBuilder {
	return upDownStat("Readyz", "Readiness probe (1 = polling, 0 = stale)", `va_readyz_up`)
}

// AvailableStat shows whether the last successful poll found open slots.
func AvailableStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Slots Available").
		Description("1 when the last successful poll found open capacity").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`max(va_available{`+Job+`})`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(0.5, 2)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - process_start_time_seconds{`+Job+`}`, "", "A")).
		Unit("s").
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeNone)
}

func upDownStat(title, desc, expr string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(desc).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(expr, "", "A")).
		Thresholds(ThresholdsRedGreen(1)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}
