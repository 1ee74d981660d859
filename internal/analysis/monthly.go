package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/weatherdash/internal/models"
)

// MonthlyGroups collects the present values of column by the table's month
// column, months ascending. Months whose rows all lack the value are kept with
// an empty sample.
func MonthlyGroups(t *models.Table, column string) []models.MonthGroup {
	months := t.Column(models.ColMonth)
	vals := t.Column(column)
	if months == nil || vals == nil {
		return nil
	}

	byMonth := make(map[int][]float64)
	for i, m := range months.Numbers {
		if !m.Valid {
			continue
		}
		key := int(m.Float64)
		if _, ok := byMonth[key]; !ok {
			byMonth[key] = nil
		}
		if vals.Numbers[i].Valid {
			byMonth[key] = append(byMonth[key], vals.Numbers[i].Float64)
		}
	}

	keys := make([]int, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	groups := make([]models.MonthGroup, len(keys))
	for i, k := range keys {
		groups[i] = models.MonthGroup{Month: k, Values: byMonth[k]}
	}
	return groups
}

// MonthlyMean averages column per month, months ascending. A month with no
// present values averages to NaN.
func MonthlyMean(t *models.Table, column string) []models.MonthlyValue {
	groups := MonthlyGroups(t, column)
	out := make([]models.MonthlyValue, len(groups))
	for i, g := range groups {
		mean := math.NaN()
		if len(g.Values) > 0 {
			mean = stat.Mean(g.Values, nil)
		}
		out[i] = models.MonthlyValue{Month: g.Month, Value: mean}
	}
	return out
}
