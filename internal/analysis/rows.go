package analysis

import (
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/lox/weatherdash/internal/models"
)

// FormatCell renders one cell for display and export. Missing cells are empty.
func FormatCell(c *models.Column, i int) string {
	if c.Missing(i) {
		return ""
	}
	switch c.Kind {
	case models.KindNumber:
		return strconv.FormatFloat(c.Numbers[i].Float64, 'f', -1, 64)
	case models.KindDate:
		return c.Dates[i].Time.Format(models.DateLayout)
	default:
		return c.Text[i].String
	}
}

// RowAt returns row i of t as display strings.
func RowAt(t *models.Table, i int) models.Row {
	row := models.Row{
		Index:  i,
		Cells:  make([]string, len(t.Columns)),
		Values: make(map[string]string, len(t.Columns)),
	}
	for ci, c := range t.Columns {
		v := FormatCell(c, i)
		row.Cells[ci] = v
		row.Values[c.Name] = v
	}
	return row
}

// Head returns up to n leading rows.
func Head(t *models.Table, n int) []models.Row {
	if n > t.Len() {
		n = t.Len()
	}
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = RowAt(t, i)
	}
	return rows
}

// Extremes finds the rows holding the highest and lowest temperature and
// rainfall. The first row wins ties; a column with no values yields nil.
func Extremes(t *models.Table) models.Extremes {
	var ex models.Extremes
	if i, ok := argExtreme(t.Column(models.ColTemperature), floats.MaxIdx); ok {
		r := RowAt(t, i)
		ex.Hottest = &r
	}
	if i, ok := argExtreme(t.Column(models.ColTemperature), floats.MinIdx); ok {
		r := RowAt(t, i)
		ex.Coldest = &r
	}
	if i, ok := argExtreme(t.Column(models.ColRainfall), floats.MaxIdx); ok {
		r := RowAt(t, i)
		ex.MostRainfall = &r
	}
	if i, ok := argExtreme(t.Column(models.ColRainfall), floats.MinIdx); ok {
		r := RowAt(t, i)
		ex.LeastRainfall = &r
	}
	return ex
}

// argExtreme applies pick to the present values of c and maps the result back
// to a row index.
func argExtreme(c *models.Column, pick func([]float64) int) (int, bool) {
	if c == nil {
		return 0, false
	}
	var (
		vals []float64
		rows []int
	)
	for i, v := range c.Numbers {
		if v.Valid {
			vals = append(vals, v.Float64)
			rows = append(rows, i)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return rows[pick(vals)], true
}
