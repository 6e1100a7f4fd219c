package persona

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	chartWidthPx  = 720
	chartHeightPx = 420
)

// RenderChart 把风格/策略分布和各策略胜率渲染为一个 HTML 页面。
func RenderChart(w io.Writer, p Profile) error {
	if p.NoData {
		return fmt.Errorf("persona chart: %s", NoDataMessage)
	}
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = "Trader Persona"
	page.AddCharts(
		distributionPie("Style distribution (%)", p.SummaryLine, p.StyleDistribution),
		distributionPie("Strategy distribution (%)", "", p.StrategyDistribution),
		winRateBar(p.PerformanceByStrategy),
	)
	return page.Render(w)
}

func initOpts() opts.Initialization {
	return opts.Initialization{
		Theme:  types.ThemeWesteros,
		Width:  fmt.Sprintf("%dpx", chartWidthPx),
		Height: fmt.Sprintf("%dpx", chartHeightPx),
	}
}

func distributionPie(title, subtitle string, dist map[string]float64) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts()),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	data := make([]opts.PieData, 0, len(dist))
	for _, k := range sortedFloatKeys(dist) {
		data = append(data, opts.PieData{Name: k, Value: dist[k]})
	}
	pie.AddSeries("share", data)
	return pie
}

func winRateBar(perf map[string]float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts()),
		charts.WithTitleOpts(opts.Title{Title: "Win rate by strategy (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	keys := sortedFloatKeys(perf)
	data := make([]opts.BarData, len(keys))
	for i, k := range keys {
		data[i] = opts.BarData{Value: perf[k]}
	}
	bar.SetXAxis(keys).AddSeries("win rate", data)
	return bar
}

func sortedFloatKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
