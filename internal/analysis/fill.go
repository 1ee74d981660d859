package analysis

import "github.com/lox/weatherdash/internal/models"

// ForwardFill returns a copy of t where each missing cell takes the nearest
// preceding present value in its column. Leading missing cells stay missing.
func ForwardFill(t *models.Table) *models.Table {
	out := Clone(t)
	for _, c := range out.Columns {
		switch c.Kind {
		case models.KindNumber:
			for i := 1; i < len(c.Numbers); i++ {
				if !c.Numbers[i].Valid && c.Numbers[i-1].Valid {
					c.Numbers[i] = c.Numbers[i-1]
				}
			}
		case models.KindDate:
			for i := 1; i < len(c.Dates); i++ {
				if !c.Dates[i].Valid && c.Dates[i-1].Valid {
					c.Dates[i] = c.Dates[i-1]
				}
			}
		default:
			for i := 1; i < len(c.Text); i++ {
				if !c.Text[i].Valid && c.Text[i-1].Valid {
					c.Text[i] = c.Text[i-1]
				}
			}
		}
	}
	return out
}

// MissingCount is the number of absent cells in one column.
type MissingCount struct {
	Column string
	Count  int
}

// MissingCounts reports absent cells per column, in column order.
func MissingCounts(t *models.Table) []MissingCount {
	counts := make([]MissingCount, len(t.Columns))
	for ci, c := range t.Columns {
		n := 0
		for i := 0; i < c.Len(); i++ {
			if c.Missing(i) {
				n++
			}
		}
		counts[ci] = MissingCount{Column: c.Name, Count: n}
	}
	return counts
}
