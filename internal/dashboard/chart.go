package dashboard

import (
	"errors"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNoChart is returned when a plan has no trend chart to render.
var ErrNoChart = errors.New("no chart for this view")

const chartTimeLayout = "2006-01-02 15:04"

// NewLineChart builds the AQI trend line chart. Points keep their order.
func NewLineChart(c *Chart) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.Title,
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "AQI", Min: 0}),
	)

	labels := make([]string, len(c.Points))
	data := make([]opts.LineData, len(c.Points))
	for i, p := range c.Points {
		labels[i] = p.MeasuredAt.Format(chartTimeLayout)
		if p.AQI == nil {
			// ECharts treats "-" as a gap.
			data[i] = opts.LineData{Value: "-"}
			continue
		}
		data[i] = opts.LineData{Value: *p.AQI}
	}

	line.SetXAxis(labels).
		AddSeries("AQI", data).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))

	return line
}

// RenderChart writes the trend chart page for a plan.
func RenderChart(w io.Writer, plan Plan) error {
	if plan.Chart == nil {
		return ErrNoChart
	}
	return NewLineChart(plan.Chart).Render(w)
}
