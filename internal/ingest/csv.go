package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lox/weatherdash/internal/models"
)

// ErrInvalidDataset marks uploads that cannot be turned into an observation table.
var ErrInvalidDataset = errors.New("invalid dataset")

// missingTokens are cell values treated as absent, matching common CSV exports.
var missingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

// dateParseLayout accepts both padded and unpadded day and month numbers.
const dateParseLayout = "2-1-2006"

// RequiredColumns must be present in every upload.
var RequiredColumns = []string{models.ColDate, models.ColTemperature, models.ColRainfall}

// ParseCSV reads a delimited weather table. The date column is parsed as
// day-month-year; temperature and rainfall must be numeric. Other columns are
// kept in upload order, typed as numbers when every present cell is numeric.
// A leading byte order mark is dropped.
func ParseCSV(r io.Reader) (*models.Table, error) {
	r = transform.NewReader(r, unicode.BOMOverride(encoding.Nop.NewDecoder()))
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingTokens),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", ErrInvalidDataset, df.Err)
	}

	names := df.Names()
	if err := ValidateColumns(names); err != nil {
		return nil, err
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDataset)
	}

	table := &models.Table{}
	for _, name := range names {
		cells := df.Col(name).Records()
		col, err := buildColumn(name, cells)
		if err != nil {
			return nil, err
		}
		table.Columns = append(table.Columns, col)
	}
	return table, nil
}

// ValidateColumns checks that every required column is present.
func ValidateColumns(names []string) error {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	var missing []string
	for _, req := range RequiredColumns {
		if !have[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required column(s): %s", ErrInvalidDataset, strings.Join(missing, ", "))
	}
	return nil
}

func buildColumn(name string, cells []string) (*models.Column, error) {
	switch name {
	case models.ColDate:
		dates, err := parseDates(cells)
		if err != nil {
			return nil, err
		}
		return &models.Column{Name: name, Kind: models.KindDate, Dates: dates}, nil
	case models.ColTemperature, models.ColRainfall:
		nums, ok, bad := parseNumbers(cells)
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d: %q is not a number", ErrInvalidDataset, name, bad+1, cells[bad])
		}
		return &models.Column{Name: name, Kind: models.KindNumber, Numbers: nums}, nil
	}

	if nums, ok, _ := parseNumbers(cells); ok {
		return &models.Column{Name: name, Kind: models.KindNumber, Numbers: nums}, nil
	}
	text := make([]sql.NullString, len(cells))
	for i, c := range cells {
		if !isMissing(c) {
			text[i] = sql.NullString{String: c, Valid: true}
		}
	}
	return &models.Column{Name: name, Kind: models.KindText, Text: text}, nil
}

func parseDates(cells []string) ([]sql.NullTime, error) {
	dates := make([]sql.NullTime, len(cells))
	for i, c := range cells {
		if isMissing(c) {
			return nil, fmt.Errorf("%w: column %q row %d: empty date", ErrInvalidDataset, models.ColDate, i+1)
		}
		t, err := time.Parse(dateParseLayout, strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q does not match DD-MM-YYYY", ErrInvalidDataset, models.ColDate, i+1, c)
		}
		dates[i] = sql.NullTime{Time: t, Valid: true}
	}
	return dates, nil
}

// parseNumbers returns ok=false and the offending index when a present cell
// is not a finite number.
func parseNumbers(cells []string) ([]sql.NullFloat64, bool, int) {
	nums := make([]sql.NullFloat64, len(cells))
	for i, c := range cells {
		if isMissing(c) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, false, i
		}
		nums[i] = sql.NullFloat64{Float64: v, Valid: true}
	}
	return nums, true, -1
}

func isMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	for _, tok := range missingTokens {
		if s == tok {
			return true
		}
	}
	return false
}
