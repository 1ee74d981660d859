package models

import (
	"database/sql"
	"time"
)

// Required column names in an uploaded dataset.
const (
	ColDate        = "date"
	ColTemperature = "temperature"
	ColRainfall    = "rainfall"
	ColMonth       = "month"
	ColDay         = "day"
	ColDayEncoded  = "Day_encoded"
)

// DateLayout is the day-month-year format used by uploads and downloads.
const DateLayout = "02-01-2006"

type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindDate
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Column holds one column of a Table. Only the slice matching Kind is populated.
type Column struct {
	Name    string
	Kind    ColumnKind
	Numbers []sql.NullFloat64
	Dates   []sql.NullTime
	Text    []sql.NullString
}

func (c *Column) Len() int {
	switch c.Kind {
	case KindNumber:
		return len(c.Numbers)
	case KindDate:
		return len(c.Dates)
	default:
		return len(c.Text)
	}
}

// Missing reports whether the cell at row i has no value.
func (c *Column) Missing(i int) bool {
	switch c.Kind {
	case KindNumber:
		return !c.Numbers[i].Valid
	case KindDate:
		return !c.Dates[i].Valid
	default:
		return !c.Text[i].Valid
	}
}

// Floats returns the numeric cells of the column, skipping missing ones.
func (c *Column) Floats() []float64 {
	vals := make([]float64, 0, len(c.Numbers))
	for _, v := range c.Numbers {
		if v.Valid {
			vals = append(vals, v.Float64)
		}
	}
	return vals
}

// Table is an ordered set of rows stored column by column.
type Table struct {
	Columns []*Column
}

func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NumericColumns returns the number-kind columns in table order.
func (t *Table) NumericColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.Kind == KindNumber {
			cols = append(cols, c)
		}
	}
	return cols
}

// SetColumn replaces a column with the same name or appends it.
func (t *Table) SetColumn(col *Column) {
	for i, c := range t.Columns {
		if c.Name == col.Name {
			t.Columns[i] = col
			return
		}
	}
	t.Columns = append(t.Columns, col)
}

// Row is a single record rendered as display strings, keyed by column order.
type Row struct {
	Index  int
	Cells  []string
	Values map[string]string
}

// Bounds are the observed extents of the filterable columns.
type Bounds struct {
	MinDate time.Time
	MaxDate time.Time
	MinTemp float64
	MaxTemp float64
	MinRain float64
	MaxRain float64
}

// Selection is the active range filter. All bounds are inclusive.
type Selection struct {
	Start   time.Time `json:"start" validate:"required"`
	End     time.Time `json:"end" validate:"required,gtefield=Start"`
	TempMin float64   `json:"temp_min"`
	TempMax float64   `json:"temp_max" validate:"gtefield=TempMin"`
	RainMin float64   `json:"rain_min"`
	RainMax float64   `json:"rain_max" validate:"gtefield=RainMin"`
}

// Clamp limits every bound of the selection to the observed extents.
func (s Selection) Clamp(b Bounds) Selection {
	s.Start = clampTime(s.Start, b.MinDate, b.MaxDate)
	s.End = clampTime(s.End, b.MinDate, b.MaxDate)
	s.TempMin = clampFloat(s.TempMin, b.MinTemp, b.MaxTemp)
	s.TempMax = clampFloat(s.TempMax, b.MinTemp, b.MaxTemp)
	s.RainMin = clampFloat(s.RainMin, b.MinRain, b.MaxRain)
	s.RainMax = clampFloat(s.RainMax, b.MinRain, b.MaxRain)
	return s
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DayEncoding maps weekday names to dense integers in order of first appearance.
type DayEncoding struct {
	Labels []string
	Codes  map[string]int
}

// Summary is the descriptive statistics row set for one numeric column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// MonthlyValue is one group of a by-month aggregate.
type MonthlyValue struct {
	Month int
	Value float64
}

// CorrMatrix is a symmetric Pearson correlation matrix over numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Extremes holds the full rows where temperature and rainfall peak.
type Extremes struct {
	Hottest       *Row
	Coldest       *Row
	MostRainfall  *Row
	LeastRainfall *Row
}

// Dataset is an uploaded file as retained by the session store.
type Dataset struct {
	ID         int64
	SessionID  string
	Filename   string
	Size       int64
	Content    []byte
	UploadedAt time.Time
}

// HistogramBin is one equal-width bucket of a histogram.
type HistogramBin struct {
	Min   float64
	Max   float64
	Count int
}

// Point is an (x, y) sample of a curve.
type Point struct {
	X float64
	Y float64
}

// MonthGroup is the set of values observed in one calendar month.
type MonthGroup struct {
	Month  int
	Values []float64
}
