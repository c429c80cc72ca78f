package util

import (
	"io"

	"discover-server/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderViewChart writes an HTML bar chart of the distance and rating of every
// establishment in view, in view order.
func RenderViewChart(w io.Writer, title string, view models.ViewModel) error {
	names := make([]string, 0, view.Len())
	distances := make([]opts.BarData, 0, view.Len())
	ratings := make([]opts.LineData, 0, view.Len())
	for _, e := range view.Establishments {
		names = append(names, e.Name)
		distances = append(distances, opts.BarData{Name: e.Name, Value: int(e.DistanceMeters)})
		ratings = append(ratings, opts.LineData{Name: e.Name, Value: e.AverageRating, YAxisIndex: 1})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "meters"}),
	)
	bar.ExtendYAxis(opts.YAxis{Name: "rating", Min: 0, Max: 5})
	bar.SetXAxis(names).
		AddSeries("Distance", distances)

	line := charts.NewLine()
	line.SetXAxis(names).AddSeries("Rating", ratings)
	bar.Overlap(line)

	return bar.Render(w)
}
