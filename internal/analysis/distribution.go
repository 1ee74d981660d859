package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/weatherdash/internal/models"
)

// HistogramBins is the fixed bin count of the rainfall distribution chart.
const HistogramBins = 30

// kdeSamples is the number of points on the density curve.
const kdeSamples = 200

// Histogram splits vals into n equal-width bins spanning [min, max]. The last
// bin includes max. A constant sample is centred in a one-unit span.
func Histogram(vals []float64, n int) []models.HistogramBin {
	if len(vals) == 0 || n <= 0 {
		return nil
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(n)

	bins := make([]models.HistogramBin, n)
	for i := range bins {
		bins[i].Min = lo + float64(i)*width
		bins[i].Max = lo + float64(i+1)*width
	}
	bins[n-1].Max = hi

	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins
}

// KDE estimates a Gaussian kernel density over the range of vals using Scott's
// rule for the bandwidth. It returns nil when the sample has fewer than two
// points or no spread.
func KDE(vals []float64) []models.Point {
	n := len(vals)
	if n < 2 {
		return nil
	}
	sd := stat.StdDev(vals, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	bw := sd * math.Pow(float64(n), -1.0/5.0)
	lo, hi := floats.Min(vals), floats.Max(vals)

	norm := 1 / (float64(n) * bw * math.Sqrt(2*math.Pi))
	points := make([]models.Point, kdeSamples)
	step := (hi - lo) / float64(kdeSamples-1)
	for i := range points {
		x := lo + float64(i)*step
		sum := 0.0
		for _, v := range vals {
			z := (x - v) / bw
			sum += math.Exp(-0.5 * z * z)
		}
		points[i] = models.Point{X: x, Y: sum * norm}
	}
	return points
}

// ScaleDensity converts a density curve to expected counts per bin.
func ScaleDensity(points []models.Point, n int, binWidth float64) []models.Point {
	out := make([]models.Point, len(points))
	for i, p := range points {
		out[i] = models.Point{X: p.X, Y: p.Y * float64(n) * binWidth}
	}
	return out
}
