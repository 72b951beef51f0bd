package chart

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

// HTMLOptions controls the interactive chart page.
type HTMLOptions struct {
	// Title is the page title.
	Title string
	// Overlay draws all series on one chart over the union of their keys.
	Overlay bool
}

// HTML writes an interactive bar chart page for series to w. Without
// Overlay every series gets its own chart; all charts share one Y scale.
func HTML(w io.Writer, series []models.Series, o HTMLOptions) error {
	if o.Title == "" {
		o.Title = "sheetstats"
	}
	yMax := timeline.GlobalMax(series...)

	page := components.NewPage()
	page.PageTitle = o.Title

	if o.Overlay {
		cmp := timeline.Compare(series...)
		bar := newBar(o.Title, yMax)
		bar.SetXAxis(cmp.Keys)
		for _, name := range cmp.Series {
			bar.AddSeries(name, barData(cmp.Counts[name]))
		}
		page.AddCharts(bar)
		return page.Render(w)
	}

	for _, s := range series {
		bar := newBar(seriesTitle(s), yMax)
		counts := make([]int, len(s.Buckets))
		for i, b := range s.Buckets {
			counts[i] = b.Count
		}
		bar.SetXAxis(s.Keys())
		bar.AddSeries(seriesTitle(s), barData(counts))
		page.AddCharts(bar)
	}
	return page.Render(w)
}

func newBar(title string, yMax int) *charts.Bar {
	if yMax < 1 {
		yMax = 1
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: yMax}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	return bar
}

func barData(counts []int) []opts.BarData {
	items := make([]opts.BarData, len(counts))
	for i, c := range counts {
		items[i] = opts.BarData{Value: c}
	}
	return items
}
