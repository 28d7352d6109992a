package longevity

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	maxPlottedAuthors = 20
	secondsPerDay     = 86400
)

// WritePlot renders stats as a standalone HTML bar chart of per-author
// average line age, limited to the top authors by line count.
func WritePlot(stats *Stats, w io.Writer) error {
	authors := stats.Authors
	if len(authors) > maxPlottedAuthors {
		authors = authors[:maxPlottedAuthors]
	}

	labels := make([]string, len(authors))
	ages := make([]opts.BarData, len(authors))
	lines := make([]opts.BarData, len(authors))

	for i, author := range authors {
		labels[i] = author.Name
		ages[i] = opts.BarData{Value: author.AverageAgeSeconds / secondsPerDay}
		lines[i] = opts.BarData{Value: author.LineCount}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Line longevity by author",
			Subtitle: fmt.Sprintf("repository average: %s", FormatAge(stats.AverageAgeSeconds)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average age (days)"}),
		charts.WithLegendOpts(opts.Legend{}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("Average age (days)", ages)
	bar.AddSeries("Lines", lines)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}
