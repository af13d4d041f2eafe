// Package charts renders the dashboard's PNG figures with gonum/plot: the
// per-country emissions trend, the country comparison bars, and the reduction
// pathway.
package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/MikeMitch88/carbon-tracker/internal/dataset"
	"github.com/MikeMitch88/carbon-tracker/internal/metrics"
)

var (
	seriesColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	averageColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	targetColor  = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	barColor     = color.RGBA{R: 70, G: 130, B: 180, A: 255}
)

// TrendChart plots the country's historical series against the per-year
// global average. When analysisYear lies beyond the observed series, the
// predicted value is drawn as a separate marker.
func TrendChart(series []dataset.Record, globalByYear []metrics.YearValue,
	country string, analysisYear int, current float64, path string) error {
	if len(series) == 0 {
		return fmt.Errorf("trend chart: empty series for %s", country)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Per Capita CO2 Emissions Trend: %s", country)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "kg CO2 per capita"

	pts := make(plotter.XYs, len(series))
	for i, rec := range series {
		pts[i].X = float64(rec.Year)
		pts[i].Y = rec.PerCapitaCO2Kg
	}
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("trend chart: %w", err)
	}
	line.Color = seriesColor
	scatter.GlyphStyle.Color = seriesColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, scatter)
	p.Legend.Add(country, line)

	if len(globalByYear) > 0 {
		avgPts := make(plotter.XYs, len(globalByYear))
		for i, yv := range globalByYear {
			avgPts[i].X = float64(yv.Year)
			avgPts[i].Y = yv.Value
		}
		avgLine, err := plotter.NewLine(avgPts)
		if err != nil {
			return fmt.Errorf("trend chart: %w", err)
		}
		avgLine.Color = averageColor
		avgLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(avgLine)
		p.Legend.Add("Global Average", avgLine)
	}

	if analysisYear > series[len(series)-1].Year {
		marker, err := plotter.NewScatter(plotter.XYs{{X: float64(analysisYear), Y: current}})
		if err != nil {
			return fmt.Errorf("trend chart: %w", err)
		}
		marker.GlyphStyle.Color = targetColor
		marker.GlyphStyle.Radius = vg.Points(4)
		marker.GlyphStyle.Shape = draw.PyramidGlyph{}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("Prediction: %.1f kg", current), marker)
	}

	p.Add(plotter.NewGrid())
	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save trend chart: %w", err)
	}
	return nil
}

// ComparisonChart draws one bar per country (latest available value) with a
// dashed rule at the global average.
func ComparisonChart(rows []metrics.ComparisonRow, globalAvg float64, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("comparison chart: no rows")
	}

	p := plot.New()
	p.Title.Text = "Per Capita Emissions Comparison (Latest Available Data)"
	p.Y.Label.Text = "kg CO2 per capita"

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	for i, row := range rows {
		values[i] = row.LatestValue
		labels[i] = row.Country
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("comparison chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	avgRule := plotter.NewFunction(func(x float64) float64 { return globalAvg })
	avgRule.Color = averageColor
	avgRule.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(avgRule)
	p.Legend.Add("Global Average", avgRule)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save comparison chart: %w", err)
	}
	return nil
}

// TargetChart draws the reduction pathway: one point per milestone, with a
// dashed rule at the current emissions level.
func TargetChart(targets []metrics.Target, current float64, path string) error {
	if len(targets) == 0 {
		return fmt.Errorf("target chart: no targets")
	}

	p := plot.New()
	p.Title.Text = "Recommended Reduction Pathway"
	p.Y.Label.Text = "kg CO2 per capita"

	pts := make(plotter.XYs, len(targets))
	labels := make([]string, len(targets))
	for i, tgt := range targets {
		pts[i].X = float64(i)
		pts[i].Y = tgt.Value
		labels[i] = tgt.Label
	}
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("target chart: %w", err)
	}
	line.Color = targetColor
	scatter.GlyphStyle.Color = targetColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, scatter)
	p.Legend.Add("Target Emissions", line)
	p.NominalX(labels...)

	currentRule := plotter.NewFunction(func(x float64) float64 { return current })
	currentRule.Color = seriesColor
	currentRule.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(currentRule)
	p.Legend.Add("Current Emissions", currentRule)

	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save target chart: %w", err)
	}
	return nil
}
