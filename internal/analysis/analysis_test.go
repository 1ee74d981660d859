package analysis_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/ingest"
	"github.com/lox/weatherdash/internal/models"
)

func parse(t *testing.T, csv string) *models.Table {
	t.Helper()
	table, err := ingest.ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return table
}

func day(d, m, y int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

const twoRows = `date,temperature,rainfall
01-01-2020,15,0.5
02-01-2020,20,0.0
`

const seasonCSV = `date,temperature,rainfall,humidity
01-01-2020,15,0.5,80
02-01-2020,20,0.0,75
15-01-2020,,3.0,90
01-02-2020,25,1.0,
14-02-2020,10,12.5,95
03-03-2020,18,,60
`

func TestTwoRowScenario(t *testing.T) {
	table := parse(t, twoRows)
	sel := analysis.DefaultSelection(analysis.ComputeBounds(table))
	rep := analysis.Build(table, sel)

	if n := rep.Filtered.Len(); n != 2 {
		t.Fatalf("filtered rows = %d, want 2", n)
	}
	if len(rep.MonthlyTemp) != 1 || rep.MonthlyTemp[0].Month != 1 || rep.MonthlyTemp[0].Value != 17.5 {
		t.Errorf("MonthlyTemp = %+v, want [{1 17.5}]", rep.MonthlyTemp)
	}
	if rep.Extremes.Hottest == nil || rep.Extremes.Hottest.Values[models.ColDate] != "02-01-2020" {
		t.Errorf("Hottest = %+v, want 02-01-2020", rep.Extremes.Hottest)
	}
	if rep.Extremes.Coldest == nil || rep.Extremes.Coldest.Values[models.ColDate] != "01-01-2020" {
		t.Errorf("Coldest = %+v, want 01-01-2020", rep.Extremes.Coldest)
	}
	if rep.Extremes.LeastRainfall.Values[models.ColRainfall] != "0" {
		t.Errorf("LeastRainfall = %+v", rep.Extremes.LeastRainfall)
	}
	if rep.MeanTemp != 17.5 || rep.MedianTemp != 17.5 {
		t.Errorf("mean/median temperature = %v/%v, want 17.5", rep.MeanTemp, rep.MedianTemp)
	}
}

const coldHotCSV = `date,temperature,rainfall
01-01-2020,5,0
02-01-2020,30,50
`

func TestColdHotDataset(t *testing.T) {
	table := parse(t, coldHotCSV)
	sel := analysis.DefaultSelection(analysis.ComputeBounds(table))

	full := analysis.Build(table, sel)
	if n := full.Filtered.Len(); n != 2 {
		t.Fatalf("full range: filtered rows = %d, want 2", n)
	}
	if len(full.MonthlyTemp) != 1 || full.MonthlyTemp[0].Month != 1 || full.MonthlyTemp[0].Value != 17.5 {
		t.Errorf("MonthlyTemp = %+v, want [{1 17.5}]", full.MonthlyTemp)
	}
	if full.Extremes.Hottest == nil || full.Extremes.Hottest.Values[models.ColDate] != "02-01-2020" {
		t.Errorf("Hottest = %+v, want 02-01-2020", full.Extremes.Hottest)
	}
	if full.Extremes.MostRainfall == nil || full.Extremes.MostRainfall.Values[models.ColDate] != "02-01-2020" {
		t.Errorf("MostRainfall = %+v, want 02-01-2020", full.Extremes.MostRainfall)
	}

	sel.TempMin, sel.TempMax = 10, 20
	narrow := analysis.Build(table, sel)
	if n := narrow.Filtered.Len(); n != 0 {
		t.Fatalf("temperature 10..20: filtered rows = %d, want 0", n)
	}
	if len(narrow.FilteredSummary) == 0 {
		t.Fatal("expected a describe row per column on an empty selection")
	}
	for _, s := range narrow.FilteredSummary {
		if s.Count != 0 {
			t.Errorf("%s count = %d, want 0", s.Column, s.Count)
		}
	}
	if !math.IsNaN(narrow.MeanTemp) {
		t.Errorf("mean temperature = %v, want NaN", narrow.MeanTemp)
	}
}

func TestEmptySelection(t *testing.T) {
	table := parse(t, twoRows)
	sel := analysis.DefaultSelection(analysis.ComputeBounds(table))
	sel.TempMin, sel.TempMax = 16, 19

	rep := analysis.Build(table, sel)
	if n := rep.Filtered.Len(); n != 0 {
		t.Fatalf("filtered rows = %d, want 0", n)
	}
	for _, s := range rep.FilteredSummary {
		if s.Count != 0 {
			t.Errorf("%s count = %d, want 0", s.Column, s.Count)
		}
		if !math.IsNaN(s.Mean) {
			t.Errorf("%s mean = %v, want NaN", s.Column, s.Mean)
		}
	}
	if !math.IsNaN(rep.MeanTemp) || !math.IsNaN(rep.MedianRain) {
		t.Error("expected NaN mean and median on an empty selection")
	}
	if len(rep.FilteredPreview) != 0 {
		t.Errorf("preview rows = %d, want 0", len(rep.FilteredPreview))
	}
	// The unfiltered sections still describe the whole upload.
	if rep.Rows != 2 || rep.Extremes.Hottest == nil {
		t.Error("expected full-table analytics on an empty selection")
	}
}

func TestFilter(t *testing.T) {
	table := parse(t, seasonCSV)
	bounds := analysis.ComputeBounds(table)

	tests := []struct {
		name  string
		mod   func(*models.Selection)
		dates []string
	}{
		{
			name:  "full range drops rows with missing values",
			mod:   func(*models.Selection) {},
			dates: []string{"01-01-2020", "02-01-2020", "01-02-2020", "14-02-2020"},
		},
		{
			name: "inclusive date bounds",
			mod: func(s *models.Selection) {
				s.Start = day(2, 1, 2020)
				s.End = day(1, 2, 2020)
			},
			dates: []string{"02-01-2020", "01-02-2020"},
		},
		{
			name: "inclusive temperature bounds",
			mod: func(s *models.Selection) {
				s.TempMin, s.TempMax = 15, 20
			},
			dates: []string{"01-01-2020", "02-01-2020"},
		},
		{
			name: "rainfall bounds",
			mod: func(s *models.Selection) {
				s.RainMin, s.RainMax = 0.5, 1
			},
			dates: []string{"01-01-2020", "01-02-2020"},
		},
		{
			name: "inverted range",
			mod: func(s *models.Selection) {
				s.TempMin, s.TempMax = 30, 0
			},
			dates: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := analysis.DefaultSelection(bounds)
			tt.mod(&sel)
			out := analysis.Filter(table, sel)

			var got []string
			for i := 0; i < out.Len(); i++ {
				got = append(got, analysis.FormatCell(out.Column(models.ColDate), i))
			}
			if strings.Join(got, " ") != strings.Join(tt.dates, " ") {
				t.Errorf("dates = %v, want %v", got, tt.dates)
			}

			for i := 0; i < out.Len(); i++ {
				d := out.Column(models.ColDate).Dates[i].Time
				temp := out.Column(models.ColTemperature).Numbers[i].Float64
				rain := out.Column(models.ColRainfall).Numbers[i].Float64
				if d.Before(sel.Start) || d.After(sel.End) || temp < sel.TempMin || temp > sel.TempMax || rain < sel.RainMin || rain > sel.RainMax {
					t.Errorf("row %d violates the selection", i)
				}
				if got := out.Column(models.ColMonth).Numbers[i].Float64; got != float64(d.Month()) {
					t.Errorf("row %d month = %v, want %d", i, got, d.Month())
				}
			}
		})
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	table := parse(t, seasonCSV)
	sel := analysis.DefaultSelection(analysis.ComputeBounds(table))
	sel.RainMax = 5

	once := analysis.Filter(table, sel)
	twice := analysis.Filter(once, sel)

	if once.Len() != twice.Len() {
		t.Fatalf("rows %d then %d", once.Len(), twice.Len())
	}
	if strings.Join(once.Names(), ",") != strings.Join(twice.Names(), ",") {
		t.Errorf("columns %v then %v", once.Names(), twice.Names())
	}
	for i := 0; i < once.Len(); i++ {
		a, b := analysis.RowAt(once, i), analysis.RowAt(twice, i)
		if strings.Join(a.Cells, ",") != strings.Join(b.Cells, ",") {
			t.Errorf("row %d: %v then %v", i, a.Cells, b.Cells)
		}
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	table := parse(t, seasonCSV)
	cols := len(table.Columns)
	analysis.Filter(table, analysis.DefaultSelection(analysis.ComputeBounds(table)))
	if len(table.Columns) != cols {
		t.Errorf("input gained columns: %v", table.Names())
	}
}

func TestComputeBounds(t *testing.T) {
	b := analysis.ComputeBounds(parse(t, seasonCSV))
	if !b.MinDate.Equal(day(1, 1, 2020)) || !b.MaxDate.Equal(day(3, 3, 2020)) {
		t.Errorf("date bounds = %v..%v", b.MinDate, b.MaxDate)
	}
	if b.MinTemp != 10 || b.MaxTemp != 25 {
		t.Errorf("temperature bounds = %v..%v", b.MinTemp, b.MaxTemp)
	}
	if b.MinRain != 0 || b.MaxRain != 12.5 {
		t.Errorf("rainfall bounds = %v..%v", b.MinRain, b.MaxRain)
	}
}

func TestSelectionClamp(t *testing.T) {
	b := analysis.ComputeBounds(parse(t, seasonCSV))
	sel := models.Selection{
		Start: day(1, 1, 1999), End: day(1, 1, 2030),
		TempMin: -40, TempMax: 60,
		RainMin: 2, RainMax: 3,
	}.Clamp(b)

	if !sel.Start.Equal(b.MinDate) || !sel.End.Equal(b.MaxDate) {
		t.Errorf("dates not clamped: %v..%v", sel.Start, sel.End)
	}
	if sel.TempMin != 10 || sel.TempMax != 25 {
		t.Errorf("temperature not clamped: %v..%v", sel.TempMin, sel.TempMax)
	}
	if sel.RainMin != 2 || sel.RainMax != 3 {
		t.Errorf("in-range rainfall changed: %v..%v", sel.RainMin, sel.RainMax)
	}
}

func TestForwardFill(t *testing.T) {
	csv := `date,temperature,rainfall,note
01-01-2020,,1,a
02-01-2020,12,,
03-01-2020,,,b
04-01-2020,14,2,
`
	table := parse(t, csv)
	filled := analysis.ForwardFill(table)

	temps := filled.Column(models.ColTemperature).Numbers
	if temps[0].Valid {
		t.Error("leading missing value should stay missing")
	}
	if !temps[2].Valid || temps[2].Float64 != 12 {
		t.Errorf("temperature[2] = %+v, want 12", temps[2])
	}
	rains := filled.Column(models.ColRainfall).Numbers
	if rains[1].Float64 != 1 || rains[2].Float64 != 1 {
		t.Errorf("rainfall = %+v, want 1 carried forward", rains)
	}
	notes := filled.Column("note").Text
	if notes[1].String != "a" || notes[3].String != "b" {
		t.Errorf("note = %+v", notes)
	}

	// Present values are never changed and the input keeps its gaps.
	for _, c := range table.Columns {
		fc := filled.Column(c.Name)
		for i := 0; i < c.Len(); i++ {
			if !c.Missing(i) && analysis.FormatCell(c, i) != analysis.FormatCell(fc, i) {
				t.Errorf("%s[%d] changed", c.Name, i)
			}
		}
	}
	if table.Column(models.ColTemperature).Numbers[2].Valid {
		t.Error("ForwardFill modified its input")
	}
}

func TestMissingCounts(t *testing.T) {
	counts := analysis.MissingCounts(parse(t, seasonCSV))
	want := map[string]int{"date": 0, "temperature": 1, "rainfall": 1, "humidity": 1}
	if len(counts) != len(want) {
		t.Fatalf("counts = %+v", counts)
	}
	for _, c := range counts {
		if c.Count != want[c.Column] {
			t.Errorf("%s missing = %d, want %d", c.Column, c.Count, want[c.Column])
		}
	}
}

func TestSummarize(t *testing.T) {
	s := analysis.Summarize("x", []float64{4, 1, 3, 2})
	checks := []struct {
		name      string
		got, want float64
	}{
		{"mean", s.Mean, 2.5},
		{"min", s.Min, 1},
		{"25%", s.Q25, 1.75},
		{"50%", s.Median, 2.5},
		{"75%", s.Q75, 3.25},
		{"max", s.Max, 4},
		{"std", s.Std, math.Sqrt(5.0 / 3.0)},
	}
	if s.Count != 4 {
		t.Errorf("count = %d, want 4", s.Count)
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	one := analysis.Summarize("x", []float64{7})
	if one.Mean != 7 || one.Median != 7 || !math.IsNaN(one.Std) {
		t.Errorf("single value summary = %+v", one)
	}
}

func TestDescribeCoversNumericColumns(t *testing.T) {
	table := parse(t, "date,temperature,rainfall,station\n01-01-2020,1,2,x\n")
	var names []string
	for _, s := range analysis.Describe(table) {
		names = append(names, s.Column)
	}
	if strings.Join(names, ",") != "temperature,rainfall" {
		t.Errorf("described columns = %v", names)
	}
}

func TestCalendarColumns(t *testing.T) {
	table := parse(t, "date,temperature,rainfall\n06-01-2020,1,0\n07-01-2020,2,0\n13-01-2020,3,0\n01-02-2020,4,0\n")
	filled := analysis.Prepare(table)

	days := filled.Column(models.ColDay).Text
	want := []string{"Monday", "Tuesday", "Monday", "Saturday"}
	for i, w := range want {
		if days[i].String != w {
			t.Errorf("day[%d] = %q, want %q", i, days[i].String, w)
		}
	}
	if got := filled.Column(models.ColMonth).Numbers[3].Float64; got != 2 {
		t.Errorf("month[3] = %v, want 2", got)
	}

	enc := analysis.EncodeDays(filled)
	if strings.Join(enc.Labels, ",") != "Monday,Tuesday,Saturday" {
		t.Errorf("labels = %v", enc.Labels)
	}
	codes := filled.Column(models.ColDayEncoded).Numbers
	wantCodes := []float64{0, 1, 0, 2}
	for i, w := range wantCodes {
		if codes[i].Float64 != w {
			t.Errorf("Day_encoded[%d] = %v, want %v", i, codes[i].Float64, w)
		}
	}

	// Re-encoding replaces the column instead of adding another.
	cols := len(filled.Columns)
	analysis.EncodeDays(filled)
	if len(filled.Columns) != cols {
		t.Errorf("columns grew from %d to %d", cols, len(filled.Columns))
	}
}

func TestCorrelation(t *testing.T) {
	table := parse(t, `date,temperature,rainfall,flat
01-01-2020,1,2,5
02-01-2020,2,4,5
03-01-2020,3,6,5
04-01-2020,4,9,5
`)
	m := analysis.Correlation(table)
	if strings.Join(m.Columns, ",") != "temperature,rainfall,flat" {
		t.Fatalf("columns = %v", m.Columns)
	}
	if m.Values[0][0] != 1 || m.Values[1][1] != 1 {
		t.Errorf("diagonal = %v, %v", m.Values[0][0], m.Values[1][1])
	}
	if m.Values[0][1] != m.Values[1][0] {
		t.Error("matrix is not symmetric")
	}
	if r := m.Values[0][1]; r <= 0.9 || r > 1 {
		t.Errorf("temperature/rainfall r = %v", r)
	}
	if !math.IsNaN(m.Values[0][2]) || !math.IsNaN(m.Values[2][2]) {
		t.Error("expected NaN for a constant column")
	}
}

func TestMonthlyMean(t *testing.T) {
	table := analysis.Prepare(parse(t, seasonCSV))
	got := analysis.MonthlyMean(table, models.ColTemperature)

	// January's missing value is forward filled from 02-01-2020.
	want := []models.MonthlyValue{{Month: 1, Value: 55.0 / 3}, {Month: 2, Value: 17.5}, {Month: 3, Value: 18}}
	if len(got) != len(want) {
		t.Fatalf("MonthlyMean = %+v", got)
	}
	for i := range want {
		if got[i].Month != want[i].Month || math.Abs(got[i].Value-want[i].Value) > 1e-9 {
			t.Errorf("MonthlyMean[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtremesTiesPickFirstRow(t *testing.T) {
	table := parse(t, `date,temperature,rainfall
01-01-2020,30,0
02-01-2020,30,5
03-01-2020,-2,5
`)
	ex := analysis.Extremes(table)
	if ex.Hottest.Values[models.ColDate] != "01-01-2020" {
		t.Errorf("Hottest = %v", ex.Hottest.Values)
	}
	if ex.MostRainfall.Values[models.ColDate] != "02-01-2020" {
		t.Errorf("MostRainfall = %v", ex.MostRainfall.Values)
	}
	if ex.Coldest.Values[models.ColTemperature] != "-2" {
		t.Errorf("Coldest = %v", ex.Coldest.Values)
	}
}

func TestHistogram(t *testing.T) {
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	bins := analysis.Histogram(vals, 5)
	if len(bins) != 5 {
		t.Fatalf("bins = %d, want 5", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(vals) {
		t.Errorf("binned %d values, want %d", total, len(vals))
	}
	if bins[0].Min != 0 || bins[4].Max != 10 {
		t.Errorf("range = %v..%v", bins[0].Min, bins[4].Max)
	}
	if bins[4].Count != 3 {
		t.Errorf("last bin count = %d, want 3 (8, 9 and 10)", bins[4].Count)
	}

	flat := analysis.Histogram([]float64{2, 2, 2}, analysis.HistogramBins)
	if len(flat) != analysis.HistogramBins || flat[0].Min != 1.5 || flat[len(flat)-1].Max != 2.5 {
		t.Errorf("constant sample bins = %d, %v..%v", len(flat), flat[0].Min, flat[len(flat)-1].Max)
	}

	if analysis.Histogram(nil, 10) != nil {
		t.Error("expected no bins for an empty sample")
	}
}

func TestKDE(t *testing.T) {
	vals := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	points := analysis.KDE(vals)
	if len(points) == 0 {
		t.Fatal("expected a density curve")
	}
	if points[0].X != 1 || math.Abs(points[len(points)-1].X-5) > 1e-9 {
		t.Errorf("curve spans %v..%v, want 1..5", points[0].X, points[len(points)-1].X)
	}
	peak := 0
	for i, p := range points {
		if p.Y < 0 {
			t.Fatalf("negative density at %v", p.X)
		}
		if p.Y > points[peak].Y {
			peak = i
		}
	}
	if math.Abs(points[peak].X-3) > 0.1 {
		t.Errorf("peak at %v, want near 3", points[peak].X)
	}

	if analysis.KDE([]float64{1}) != nil || analysis.KDE([]float64{2, 2}) != nil {
		t.Error("expected no curve for degenerate samples")
	}
}

func TestHead(t *testing.T) {
	table := parse(t, seasonCSV)
	rows := analysis.Head(table, analysis.PreviewRows)
	if len(rows) != analysis.PreviewRows {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[2].Cells[1] != "" {
		t.Errorf("missing cell rendered as %q", rows[2].Cells[1])
	}
	if len(analysis.Head(parse(t, twoRows), analysis.PreviewRows)) != 2 {
		t.Error("Head should stop at the table length")
	}
}
