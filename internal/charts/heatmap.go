package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/weatherdash/internal/models"
)

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 of the matrix
// is drawn at the top.
type corrGrid struct {
	m models.CorrMatrix
}

func (g corrGrid) Dims() (c, r int) {
	n := len(g.m.Columns)
	return n, n
}

func (g corrGrid) Z(c, r int) float64 {
	v := g.m.Values[len(g.m.Columns)-1-r][c]
	if math.IsNaN(v) {
		return v
	}
	return math.Max(-1, math.Min(1, v))
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// CorrelationHeatmap draws the matrix as colored cells annotated with the
// coefficient, on a diverging blue-red scale over [-1, 1].
func CorrelationHeatmap(m models.CorrMatrix) ([]byte, error) {
	p := newPlot("Weather Data Correlation", "", "")
	n := len(m.Columns)
	if n == 0 {
		emptyRange(p)
		return render(p, 8*vg.Inch, 6*vg.Inch)
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMax(1)
	cmap.SetMin(-1)

	hm := plotter.NewHeatMap(corrGrid{m: m}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = nanCellColor
	p.Add(hm)

	var (
		xys    plotter.XYs
		labels []string
	)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := m.Values[r][c]
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(n - 1 - r)})
			if math.IsNaN(v) {
				labels = append(labels, "nan")
			} else {
				labels = append(labels, fmt.Sprintf("%.2f", v))
			}
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
		annotations.TextStyle[i].Font.Size = vg.Points(10)
	}
	p.Add(annotations)

	xTicks := make([]plot.Tick, n)
	yTicks := make([]plot.Tick, n)
	for i, name := range m.Columns {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
		yTicks[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	return render(p, 8*vg.Inch, 6*vg.Inch)
}
