package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/weatherdash/internal/models"
)

// Correlation computes the Pearson matrix over all numeric columns, using the
// rows where both columns of a pair are present. Pairs with fewer than two
// shared rows or zero variance are NaN.
func Correlation(t *models.Table) models.CorrMatrix {
	cols := t.NumericColumns()
	m := models.CorrMatrix{
		Columns: make([]string, len(cols)),
		Values:  make([][]float64, len(cols)),
	}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(cols))
	}

	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwisePearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwisePearson(a, b *models.Column) float64 {
	var xs, ys []float64
	for k := range a.Numbers {
		if a.Numbers[k].Valid && b.Numbers[k].Valid {
			xs = append(xs, a.Numbers[k].Float64)
			ys = append(ys, b.Numbers[k].Float64)
		}
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

func constant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}
