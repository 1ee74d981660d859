package analysis

import (
	"database/sql"

	"github.com/lox/weatherdash/internal/models"
)

func monthColumn(dates *models.Column) *models.Column {
	col := &models.Column{Name: models.ColMonth, Kind: models.KindNumber}
	if dates == nil {
		return col
	}
	col.Numbers = make([]sql.NullFloat64, len(dates.Dates))
	for i, d := range dates.Dates {
		if d.Valid {
			col.Numbers[i] = sql.NullFloat64{Float64: float64(d.Time.Month()), Valid: true}
		}
	}
	return col
}

// AddCalendarColumns derives month (1-12) and day (weekday name) from date,
// in place.
func AddCalendarColumns(t *models.Table) {
	dates := t.Column(models.ColDate)
	t.SetColumn(monthColumn(dates))

	day := &models.Column{Name: models.ColDay, Kind: models.KindText}
	if dates != nil {
		day.Text = make([]sql.NullString, len(dates.Dates))
		for i, d := range dates.Dates {
			if d.Valid {
				day.Text[i] = sql.NullString{String: d.Time.Weekday().String(), Valid: true}
			}
		}
	}
	t.SetColumn(day)
}

// EncodeDays maps each distinct weekday name to an integer in order of first
// appearance and appends the codes as Day_encoded. Missing names stay missing.
// The encoding is rebuilt on every call.
func EncodeDays(t *models.Table) models.DayEncoding {
	enc := models.DayEncoding{Codes: make(map[string]int)}
	day := t.Column(models.ColDay)
	if day == nil {
		return enc
	}

	codes := &models.Column{Name: models.ColDayEncoded, Kind: models.KindNumber, Numbers: make([]sql.NullFloat64, len(day.Text))}
	for i, name := range day.Text {
		if !name.Valid {
			continue
		}
		code, ok := enc.Codes[name.String]
		if !ok {
			code = len(enc.Labels)
			enc.Codes[name.String] = code
			enc.Labels = append(enc.Labels, name.String)
		}
		codes.Numbers[i] = sql.NullFloat64{Float64: float64(code), Valid: true}
	}
	t.SetColumn(codes)
	return enc
}
