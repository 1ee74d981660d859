package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/weatherdash/internal/models"
)

// Describe computes count, mean, sample standard deviation, min, quartiles and
// max for every numeric column. Statistics of an empty column are NaN and the
// standard deviation of a single value is NaN.
func Describe(t *models.Table) []models.Summary {
	cols := t.NumericColumns()
	out := make([]models.Summary, 0, len(cols))
	for _, c := range cols {
		out = append(out, Summarize(c.Name, c.Floats()))
	}
	return out
}

// Summarize describes a single sample.
func Summarize(name string, vals []float64) models.Summary {
	s := models.Summary{Column: name, Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Std = nan
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// Mean returns the mean of the present values of column, or NaN.
func Mean(t *models.Table, column string) float64 {
	c := t.Column(column)
	if c == nil {
		return math.NaN()
	}
	vals := c.Floats()
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// Median returns the median of the present values of column, or NaN.
func Median(t *models.Table, column string) float64 {
	c := t.Column(column)
	if c == nil {
		return math.NaN()
	}
	vals := c.Floats()
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	return quantile(vals, 0.5)
}

// quantile interpolates linearly between the closest ranks of sorted, so the
// p-quantile sits at position p*(n-1).
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
