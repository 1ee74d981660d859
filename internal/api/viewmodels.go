package api

import (
	"html/template"
	"math"
	"time"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/charts"
	"github.com/lox/weatherdash/internal/models"
	"github.com/lox/weatherdash/internal/store"
)

// DashboardData is everything the index template renders.
type DashboardData struct {
	Title   string
	Palette charts.Palette
	Error   string

	HasData    bool
	Filename   string
	UploadedAt time.Time
	IsDefault  bool

	Bounds    models.Bounds
	Selection models.Selection
	query     string

	Report *analysis.Report

	FilteredColumns []string
	Columns         []string
	FilledColumns   []string
	Insights        []Insight
	Charts          []ChartLink
}

// ChartLink is one figure of the visualizations section.
type ChartLink struct {
	Name  charts.Name
	Title string
	URL   template.URL
}

// Insight is one extremum row of the insights section.
type Insight struct {
	Label string
	Row   *models.Row
}

// TablePreview pairs a header with its rows for the preview partial.
type TablePreview struct {
	Columns []string
	Rows    []models.Row
}

// ChartURL links a chart image for the active selection.
func (d *DashboardData) ChartURL(name string) template.URL {
	return template.URL("/charts/" + name + ".png?" + d.query)
}

// DownloadURL links the filtered CSV for the active selection.
func (d *DashboardData) DownloadURL() template.URL {
	return template.URL("/download?" + d.query)
}

// DownloadXLSXURL links the filtered workbook for the active selection.
func (d *DashboardData) DownloadXLSXURL() template.URL {
	return template.URL("/download.xlsx?" + d.query)
}

func (d *DashboardData) FilteredPreview() TablePreview {
	return TablePreview{Columns: d.FilteredColumns, Rows: d.Report.FilteredPreview}
}

func (d *DashboardData) Preview() TablePreview {
	return TablePreview{Columns: d.Columns, Rows: d.Report.Preview}
}

// FilteredRows is the number of rows matching the selection.
func (d *DashboardData) FilteredRows() int {
	return d.Report.Filtered.Len()
}

var chartTitles = map[charts.Name]string{
	charts.ChartScatter:     "Temperature vs Rainfall Scatter Plot",
	charts.ChartBoxPlot:     "Monthly Temperature Boxplot",
	charts.ChartTrend:       "Temperature Trend Over Time",
	charts.ChartMonthly:     "Average Monthly Temperature",
	charts.ChartRainfall:    "Rainfall Distribution",
	charts.ChartCorrelation: "Correlation Heatmap",
}

func (s *Server) newDashboard() *DashboardData {
	return &DashboardData{
		Title:   PageTitle,
		Palette: s.cfg.Palette,
	}
}

func (s *Server) dashboardFor(rn *run) *DashboardData {
	d := s.newDashboard()
	if rn == nil {
		return d
	}
	rep := rn.Report
	d.HasData = true
	d.Filename = rn.Dataset.Filename
	d.UploadedAt = rn.Dataset.UploadedAt
	d.IsDefault = rn.Dataset.SessionID == store.DefaultSession
	d.Bounds = rep.Bounds
	d.Selection = rep.Selection
	d.query = selectionQuery(rep.Selection).Encode()
	d.Report = rep
	d.FilteredColumns = rep.Filtered.Names()
	d.Columns = rn.Table.Names()
	d.FilledColumns = rep.Filled.Names()
	d.Insights = []Insight{
		{Label: "Hottest Day", Row: rep.Extremes.Hottest},
		{Label: "Coldest Day", Row: rep.Extremes.Coldest},
		{Label: "Day with Most Rainfall", Row: rep.Extremes.MostRainfall},
		{Label: "Day with Least Rainfall", Row: rep.Extremes.LeastRainfall},
	}
	for _, n := range charts.All {
		d.Charts = append(d.Charts, ChartLink{Name: n, Title: chartTitles[n], URL: d.ChartURL(string(n))})
	}
	return d
}

// SummaryResponse is the JSON form of a report. Undefined statistics are null.
type SummaryResponse struct {
	Dataset      string             `json:"dataset"`
	Rows         int                `json:"rows"`
	FilteredRows int                `json:"filtered_rows"`
	Bounds       BoundsJSON         `json:"bounds"`
	Selection    models.Selection   `json:"selection"`
	MeanTemp     *float64           `json:"mean_temperature"`
	MedianTemp   *float64           `json:"median_temperature"`
	MeanRain     *float64           `json:"mean_rainfall"`
	MedianRain   *float64           `json:"median_rainfall"`
	Filtered     []SummaryJSON      `json:"filtered_describe"`
	Describe     []SummaryJSON      `json:"describe"`
	Missing      map[string]int     `json:"missing"`
	MonthlyTemp  []MonthlyJSON      `json:"monthly_mean_temperature"`
	Correlation  CorrJSON           `json:"correlation"`
	DayEncoding  map[string]int     `json:"day_encoding"`
	Extremes     map[string]RowJSON `json:"extremes"`
}

type BoundsJSON struct {
	MinDate string  `json:"min_date"`
	MaxDate string  `json:"max_date"`
	MinTemp float64 `json:"min_temperature"`
	MaxTemp float64 `json:"max_temperature"`
	MinRain float64 `json:"min_rainfall"`
	MaxRain float64 `json:"max_rainfall"`
}

type SummaryJSON struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"25%"`
	Median *float64 `json:"50%"`
	Q75    *float64 `json:"75%"`
	Max    *float64 `json:"max"`
}

type MonthlyJSON struct {
	Month int      `json:"month"`
	Value *float64 `json:"value"`
}

type CorrJSON struct {
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

type RowJSON map[string]string

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func summariesJSON(in []models.Summary) []SummaryJSON {
	out := make([]SummaryJSON, len(in))
	for i, s := range in {
		out[i] = SummaryJSON{
			Column: s.Column,
			Count:  s.Count,
			Mean:   nullable(s.Mean),
			Std:    nullable(s.Std),
			Min:    nullable(s.Min),
			Q25:    nullable(s.Q25),
			Median: nullable(s.Median),
			Q75:    nullable(s.Q75),
			Max:    nullable(s.Max),
		}
	}
	return out
}

func summaryResponse(rn *run) SummaryResponse {
	rep := rn.Report
	resp := SummaryResponse{
		Dataset:      rn.Dataset.Filename,
		Rows:         rep.Rows,
		FilteredRows: rep.Filtered.Len(),
		Bounds: BoundsJSON{
			MinDate: rep.Bounds.MinDate.Format(models.DateLayout),
			MaxDate: rep.Bounds.MaxDate.Format(models.DateLayout),
			MinTemp: rep.Bounds.MinTemp,
			MaxTemp: rep.Bounds.MaxTemp,
			MinRain: rep.Bounds.MinRain,
			MaxRain: rep.Bounds.MaxRain,
		},
		Selection:   rep.Selection,
		MeanTemp:    nullable(rep.MeanTemp),
		MedianTemp:  nullable(rep.MedianTemp),
		MeanRain:    nullable(rep.MeanRain),
		MedianRain:  nullable(rep.MedianRain),
		Filtered:    summariesJSON(rep.FilteredSummary),
		Describe:    summariesJSON(rep.Summary),
		Missing:     make(map[string]int, len(rep.Missing)),
		DayEncoding: rep.Days.Codes,
		Extremes:    make(map[string]RowJSON),
		Correlation: CorrJSON{Columns: rep.Correlation.Columns},
	}
	for _, m := range rep.Missing {
		resp.Missing[m.Column] = m.Count
	}
	for _, m := range rep.MonthlyTemp {
		resp.MonthlyTemp = append(resp.MonthlyTemp, MonthlyJSON{Month: m.Month, Value: nullable(m.Value)})
	}
	for _, row := range rep.Correlation.Values {
		vals := make([]*float64, len(row))
		for j, v := range row {
			vals[j] = nullable(v)
		}
		resp.Correlation.Values = append(resp.Correlation.Values, vals)
	}
	extremes := map[string]*models.Row{
		"hottest":        rep.Extremes.Hottest,
		"coldest":        rep.Extremes.Coldest,
		"most_rainfall":  rep.Extremes.MostRainfall,
		"least_rainfall": rep.Extremes.LeastRainfall,
	}
	for k, row := range extremes {
		if row != nil {
			resp.Extremes[k] = row.Values
		}
	}
	return resp
}
