// Package charts renders the dashboard figures as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/models"
)

// Name identifies one dashboard chart.
type Name string

const (
	ChartScatter     Name = "scatter"
	ChartBoxPlot     Name = "boxplot"
	ChartTrend       Name = "trend"
	ChartMonthly     Name = "monthly"
	ChartRainfall    Name = "rainfall"
	ChartCorrelation Name = "correlation"
)

// All lists the charts in page order.
var All = []Name{ChartScatter, ChartBoxPlot, ChartTrend, ChartMonthly, ChartRainfall, ChartCorrelation}

// Valid reports whether n names a known chart.
func (n Name) Valid() bool {
	for _, c := range All {
		if c == n {
			return true
		}
	}
	return false
}

// Render draws chart n from the analysis report.
func Render(n Name, r *analysis.Report) ([]byte, error) {
	switch n {
	case ChartScatter:
		return Scatter(r.Filtered)
	case ChartBoxPlot:
		return MonthlyBoxPlot(r.Filtered)
	case ChartTrend:
		return TemperatureTrend(r.Filled)
	case ChartMonthly:
		return MonthlyBars(r.MonthlyTemp)
	case ChartRainfall:
		return RainfallHistogram(r.Filled)
	case ChartCorrelation:
		return CorrelationHeatmap(r.Correlation)
	default:
		return nil, fmt.Errorf("unknown chart %q", n)
	}
}

// Scatter plots temperature against rainfall.
func Scatter(t *models.Table) ([]byte, error) {
	p := newPlot("Temperature vs Rainfall", "Temperature (°C)", "Rainfall (mm)")

	pts := pairs(t.Column(models.ColTemperature), t.Column(models.ColRainfall))
	if len(pts) == 0 {
		emptyRange(p)
		return render(p, 8*vg.Inch, 5*vg.Inch)
	}

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = scatterColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(plotter.NewGrid(), s)
	return render(p, 8*vg.Inch, 5*vg.Inch)
}

// MonthlyBoxPlot draws the temperature distribution of each month present.
func MonthlyBoxPlot(t *models.Table) ([]byte, error) {
	p := newPlot("Monthly Temperature Distribution", "Month", "Temperature (°C)")

	groups := analysis.MonthlyGroups(t, models.ColTemperature)
	if len(groups) == 0 {
		emptyRange(p)
		return render(p, 10*vg.Inch, 5*vg.Inch)
	}

	names := make([]string, len(groups))
	added := 0
	for i, g := range groups {
		names[i] = strconv.Itoa(g.Month)
		if len(g.Values) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("box plot month %d: %w", g.Month, err)
		}
		b.FillColor = boxColor
		p.Add(b)
		added++
	}
	if added == 0 {
		emptyRange(p)
	}
	p.NominalX(names...)
	return render(p, 10*vg.Inch, 5*vg.Inch)
}

// TemperatureTrend draws temperature against date in row order.
func TemperatureTrend(t *models.Table) ([]byte, error) {
	p := newPlot("Daily Temperature Trend", "Date", "Temperature (°C)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}

	dates := t.Column(models.ColDate)
	temps := t.Column(models.ColTemperature)
	var pts plotter.XYs
	if dates != nil && temps != nil {
		for i := range dates.Dates {
			if !dates.Dates[i].Valid || !temps.Numbers[i].Valid {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(dates.Dates[i].Time.Unix()), Y: temps.Numbers[i].Float64})
		}
	}
	if len(pts) == 0 {
		emptyRange(p)
		return render(p, 12*vg.Inch, 6*vg.Inch)
	}

	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("trend line: %w", err)
	}
	l.LineStyle.Color = trendColor
	l.LineStyle.Width = vg.Points(1.5)
	p.Add(plotter.NewGrid(), l)
	return render(p, 12*vg.Inch, 6*vg.Inch)
}

// MonthlyBars draws mean temperature per month. Months without a mean draw
// as empty bars.
func MonthlyBars(monthly []models.MonthlyValue) ([]byte, error) {
	p := newPlot("Average Monthly Temperature", "Month", "Temperature (°C)")
	if len(monthly) == 0 {
		emptyRange(p)
		return render(p, 10*vg.Inch, 5*vg.Inch)
	}

	vals := make(plotter.Values, len(monthly))
	names := make([]string, len(monthly))
	for i, m := range monthly {
		names[i] = strconv.Itoa(m.Month)
		if !math.IsNaN(m.Value) {
			vals[i] = m.Value
		}
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return render(p, 10*vg.Inch, 5*vg.Inch)
}

// RainfallHistogram bins rainfall into a fixed number of buckets and overlays
// a kernel density estimate scaled to counts.
func RainfallHistogram(t *models.Table) ([]byte, error) {
	p := newPlot("Rainfall Distribution", "Rainfall (mm)", "Frequency")

	var vals []float64
	if c := t.Column(models.ColRainfall); c != nil {
		vals = c.Floats()
	}
	bins := analysis.Histogram(vals, analysis.HistogramBins)
	if len(bins) == 0 {
		emptyRange(p)
		return render(p, 10*vg.Inch, 5*vg.Inch)
	}

	width := bins[0].Max - bins[0].Min
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(bins)),
		Width:     width,
		FillColor: histFill,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: float64(b.Count)}
	}
	p.Add(h)

	if density := analysis.KDE(vals); density != nil {
		scaled := analysis.ScaleDensity(density, len(vals), width)
		pts := make(plotter.XYs, len(scaled))
		for i, pt := range scaled {
			pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("density line: %w", err)
		}
		l.LineStyle.Color = kdeColor
		l.LineStyle.Width = vg.Points(2)
		p.Add(l)
	}
	return render(p, 10*vg.Inch, 5*vg.Inch)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// emptyRange gives a plot without data a unit extent so its axes still draw.
func emptyRange(p *plot.Plot) {
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
}

func pairs(xs, ys *models.Column) plotter.XYs {
	if xs == nil || ys == nil {
		return nil
	}
	var pts plotter.XYs
	for i := range xs.Numbers {
		if xs.Numbers[i].Valid && ys.Numbers[i].Valid {
			pts = append(pts, plotter.XY{X: xs.Numbers[i].Float64, Y: ys.Numbers[i].Float64})
		}
	}
	return pts
}

func render(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("create png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
