package analysis

import (
	"database/sql"
	"math"
	"time"

	"github.com/lox/weatherdash/internal/models"
)

// ComputeBounds returns the observed extents of date, temperature and rainfall.
// Missing cells are ignored.
func ComputeBounds(t *models.Table) models.Bounds {
	var b models.Bounds
	if dates := t.Column(models.ColDate); dates != nil {
		first := true
		for _, d := range dates.Dates {
			if !d.Valid {
				continue
			}
			if first || d.Time.Before(b.MinDate) {
				b.MinDate = d.Time
			}
			if first || d.Time.After(b.MaxDate) {
				b.MaxDate = d.Time
			}
			first = false
		}
	}
	b.MinTemp, b.MaxTemp = columnRange(t.Column(models.ColTemperature))
	b.MinRain, b.MaxRain = columnRange(t.Column(models.ColRainfall))
	return b
}

func columnRange(c *models.Column) (float64, float64) {
	if c == nil {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range c.Numbers {
		if !v.Valid {
			continue
		}
		lo = math.Min(lo, v.Float64)
		hi = math.Max(hi, v.Float64)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

// DefaultSelection selects the full observed range.
func DefaultSelection(b models.Bounds) models.Selection {
	return models.Selection{
		Start:   b.MinDate,
		End:     b.MaxDate,
		TempMin: b.MinTemp,
		TempMax: b.MaxTemp,
		RainMin: b.MinRain,
		RainMax: b.MaxRain,
	}
}

// Filter returns the rows of t whose date, temperature and rainfall all fall
// inside the selection, with a month column derived from date. Rows missing
// any of the three values never match. The input table is not modified.
func Filter(t *models.Table, sel models.Selection) *models.Table {
	dates := t.Column(models.ColDate)
	temps := t.Column(models.ColTemperature)
	rains := t.Column(models.ColRainfall)

	start := truncateDay(sel.Start)
	end := truncateDay(sel.End)

	var keep []int
	for i := 0; i < t.Len(); i++ {
		d, tv, rv := dates.Dates[i], temps.Numbers[i], rains.Numbers[i]
		if !d.Valid || !tv.Valid || !rv.Valid {
			continue
		}
		day := truncateDay(d.Time)
		if day.Before(start) || day.After(end) {
			continue
		}
		if tv.Float64 < sel.TempMin || tv.Float64 > sel.TempMax {
			continue
		}
		if rv.Float64 < sel.RainMin || rv.Float64 > sel.RainMax {
			continue
		}
		keep = append(keep, i)
	}

	out := Subset(t, keep)
	out.SetColumn(monthColumn(out.Column(models.ColDate)))
	return out
}

// Subset copies the given rows of t, in order, into a new table.
func Subset(t *models.Table, rows []int) *models.Table {
	out := &models.Table{Columns: make([]*models.Column, len(t.Columns))}
	for ci, c := range t.Columns {
		nc := &models.Column{Name: c.Name, Kind: c.Kind}
		switch c.Kind {
		case models.KindNumber:
			nc.Numbers = make([]sql.NullFloat64, len(rows))
			for j, r := range rows {
				nc.Numbers[j] = c.Numbers[r]
			}
		case models.KindDate:
			nc.Dates = make([]sql.NullTime, len(rows))
			for j, r := range rows {
				nc.Dates[j] = c.Dates[r]
			}
		default:
			nc.Text = make([]sql.NullString, len(rows))
			for j, r := range rows {
				nc.Text[j] = c.Text[r]
			}
		}
		out.Columns[ci] = nc
	}
	return out
}

// Clone returns a deep copy of t.
func Clone(t *models.Table) *models.Table {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return Subset(t, rows)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
