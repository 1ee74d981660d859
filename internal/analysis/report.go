package analysis

import "github.com/lox/weatherdash/internal/models"

// PreviewRows is how many leading rows the dataset previews show.
const PreviewRows = 5

// Report is everything the dashboard displays for one table and selection.
type Report struct {
	Bounds    models.Bounds
	Selection models.Selection

	// Filtered view.
	Filtered        *models.Table
	FilteredPreview []models.Row
	FilteredSummary []models.Summary
	MeanTemp        float64
	MedianTemp      float64
	MeanRain        float64
	MedianRain      float64

	// Full table as uploaded.
	Rows    int
	Preview []models.Row
	Summary []models.Summary
	Missing []MissingCount

	// Full table after forward filling and calendar derivation.
	Filled      *models.Table
	Days        models.DayEncoding
	Correlation models.CorrMatrix
	MonthlyTemp []models.MonthlyValue
	Extremes    models.Extremes
}

// Build runs the full analysis for t under sel. The selection is used as given;
// callers clamp it to the table bounds first.
func Build(t *models.Table, sel models.Selection) *Report {
	r := &Report{
		Bounds:    ComputeBounds(t),
		Selection: sel,
		Rows:      t.Len(),
	}

	r.Filtered = Filter(t, sel)
	r.FilteredPreview = Head(r.Filtered, PreviewRows)
	r.FilteredSummary = Describe(r.Filtered)
	r.MeanTemp = Mean(r.Filtered, models.ColTemperature)
	r.MedianTemp = Median(r.Filtered, models.ColTemperature)
	r.MeanRain = Mean(r.Filtered, models.ColRainfall)
	r.MedianRain = Median(r.Filtered, models.ColRainfall)

	r.Preview = Head(t, PreviewRows)
	r.Summary = Describe(t)
	r.Missing = MissingCounts(t)

	r.Filled = Prepare(t)
	r.Days = EncodeDays(r.Filled)
	r.Correlation = Correlation(r.Filled)
	r.MonthlyTemp = MonthlyMean(r.Filled, models.ColTemperature)
	r.Extremes = Extremes(r.Filled)
	return r
}

// Prepare forward fills t and derives the month and day columns.
func Prepare(t *models.Table) *models.Table {
	filled := ForwardFill(t)
	AddCalendarColumns(filled)
	return filled
}
