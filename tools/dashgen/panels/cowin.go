package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/gauge"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// APICallsRate returns a timeseries panel of upstream calls by result.
func APICallsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("CoWIN Calls").
		Description("Availability API calls per second by result").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`va:cowin_api_calls:rate5m`, "{{result}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BudgetGauge returns a gauge of calls left in the current rate-limit
// window.
func BudgetGauge() *gauge.PanelBuilder {
	return gauge.NewPanelBuilder().
		Title("Call Budget Remaining").
		Description(fmt.Sprintf("Calls left in the current window (limit %d per 5 minutes)", CowinWindowCalls)).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`min(va_cowin_budget_remaining{`+Job+`})`, "", "A")).
		Min(0).
		Max(CowinWindowCalls).
		Thresholds(ThresholdsRedGreen(CowinWindowCalls*0.2)).
		ColorScheme(ColorSchemeThresholds())
}

// BudgetExhausted returns a stat panel counting exhausted windows in the
// past 24 hours.
func BudgetExhausted() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Budget Exhausted (24h)").
		Description("Polls skipped because the upstream call budget was used up").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`increase(va_cowin_budget_exhausted_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
