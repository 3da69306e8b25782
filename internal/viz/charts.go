// Package viz renders agreement analyses as self-contained HTML charts using
// go-echarts. Charts are a convenience view over the report's numbers; all
// authoritative output lives in the text/CSV reports.
package viz

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/triadlab/concord/internal/model"
	"github.com/triadlab/concord/internal/report"
)

// PairwiseKappaChart builds a bar chart of every pairwise Cohen's kappa.
// Pairs whose kappa is undefined are omitted rather than drawn at zero.
func PairwiseKappaChart(results []model.PairwiseResult) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Pairwise Agreement", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Pairwise Cohen's Kappa"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: -0.2, Max: 1.0, Name: "kappa"}),
	)

	var labels []string
	var data []opts.BarData
	for _, r := range results {
		if !r.Defined {
			continue
		}
		labels = append(labels, fmt.Sprintf("%s vs %s", r.A, r.B))
		data = append(data, opts.BarData{Value: r.Kappa, Name: fmt.Sprintf("n=%d", r.N)})
	}

	bar.SetXAxis(labels).AddSeries("kappa", data)
	return bar
}

// PerCategoryChart builds a grouped bar chart of each rater's per-category
// agreement against the reference. Undefined cells are omitted from their
// rater's series.
func PerCategoryChart(comparisons []report.VsReference) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Per-Category Agreement", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Per-Category Agreement", Subtitle: "fraction of reference-labeled samples the rater matched"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1.0, Name: "agreement"}),
	)

	if len(comparisons) == 0 {
		return bar
	}

	var labels []string
	for _, c := range comparisons[0].PerCategory {
		labels = append(labels, string(c.Category))
	}
	bar.SetXAxis(labels)

	for _, v := range comparisons {
		data := make([]opts.BarData, 0, len(v.PerCategory))
		for _, c := range v.PerCategory {
			if !c.Defined {
				data = append(data, opts.BarData{Value: nil, Name: "n/a"})
				continue
			}
			data = append(data, opts.BarData{Value: c.Agreement, Name: fmt.Sprintf("n=%d", c.N)})
		}
		bar.AddSeries(string(v.Rater), data)
	}

	return bar
}

// ConfusionHeatmap builds a heatmap of one rater's confusion matrix against
// the reference: rows are reference truth, columns the rater's assignment.
func ConfusionHeatmap(m model.ConfusionMatrix) *charts.HeatMap {
	hm := charts.NewHeatMap()

	cats := make([]string, len(m.Categories))
	maxCount := 0
	for i, c := range m.Categories {
		cats[i] = string(c)
		for j := range m.Categories {
			if m.Counts[i][j] > maxCount {
				maxCount = m.Counts[i][j]
			}
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Confusion Matrix", Width: "700px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Confusion Matrix: %s", m.Rater),
			Subtitle: fmt.Sprintf("rows: %s truth, n=%d", m.Reference, m.N),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: cats, Name: string(m.Rater)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: cats, Name: string(m.Reference)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxCount),
			InRange:    &opts.VisualMapInRange{Color: []string{"#f2f2f2", "#7B9EFF", "#1f3a93"}},
		}),
	)

	var data []opts.HeatMapData
	for i := range m.Categories {
		for j := range m.Categories {
			// echarts heatmaps take (x, y, value); x is the rater column.
			data = append(data, opts.HeatMapData{Value: [3]any{j, i, m.Counts[i][j]}})
		}
	}
	hm.AddSeries("count", data)

	return hm
}

// WriteDashboard renders the pairwise chart, per-category chart, and one
// heatmap per rater into a single HTML file.
func WriteDashboard(path string, pairwise []model.PairwiseResult, comparisons []report.VsReference) error {
	page := components.NewPage()
	page.AddCharts(PairwiseKappaChart(pairwise), PerCategoryChart(comparisons))
	for _, v := range comparisons {
		page.AddCharts(ConfusionHeatmap(v.Confusion))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}
