package export

import (
	"fmt"
	"os"

	"github.com/glassfab/nestcut/internal/session"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteComparisonChartHTML renders an algorithm comparison as a standalone
// HTML bar chart: utilization and material efficiency per algorithm. Failed
// runs are skipped.
func WriteComparisonChartHTML(path string, comparisons []session.Comparison) error {
	var (
		labels     []string
		util       []opts.BarData
		efficiency []opts.BarData
	)
	for _, c := range comparisons {
		if c.Err != nil || c.Record == nil {
			continue
		}
		labels = append(labels, string(c.Algorithm))
		util = append(util, opts.BarData{Value: c.Record.Stats.UtilizationRate})
		efficiency = append(efficiency, opts.BarData{Value: c.Record.Stats.MaterialEfficiency})
	}
	if len(labels) == 0 {
		return fmt.Errorf("no successful runs to chart")
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Algorithm comparison",
			Subtitle: "Sheet utilization and material efficiency per placement strategy",
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "percent", Max: 100}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("Utilization %", util).
		AddSeries("Material efficiency %", efficiency)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
