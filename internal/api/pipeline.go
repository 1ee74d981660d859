package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/ingest"
	"github.com/lox/weatherdash/internal/models"
)

// queryDateLayout is the value format of HTML date inputs.
const queryDateLayout = "2006-01-02"

// errSelection marks filter parameters that cannot be applied.
var errSelection = errors.New("invalid filter selection")

// run is one pass of the dashboard pipeline for a request.
type run struct {
	Dataset *models.Dataset
	Table   *models.Table
	Report  *analysis.Report
}

// runPipeline loads the caller's dataset, applies the selection from the query
// string and computes the report. It returns nil without error when there is
// no dataset to show.
func (s *Server) runPipeline(r *http.Request) (*run, error) {
	ds, err := s.store.ResolveDataset(sessionID(r))
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}

	table, err := ingest.ParseCSV(bytes.NewReader(ds.Content))
	if err != nil {
		return nil, err
	}

	bounds := analysis.ComputeBounds(table)
	sel, err := s.parseSelection(r.URL.Query(), bounds)
	if err != nil {
		return nil, err
	}

	return &run{
		Dataset: ds,
		Table:   table,
		Report:  analysis.Build(table, sel),
	}, nil
}

// parseSelection reads start, end, tmin, tmax, rmin and rmax. Absent values
// default to the dataset bounds and present ones are clamped into them.
func (s *Server) parseSelection(q url.Values, b models.Bounds) (models.Selection, error) {
	sel := analysis.DefaultSelection(b)

	dates := []struct {
		key string
		dst *time.Time
	}{
		{"start", &sel.Start},
		{"end", &sel.End},
	}
	for _, d := range dates {
		v := q.Get(d.key)
		if v == "" {
			continue
		}
		t, err := time.Parse(queryDateLayout, v)
		if err != nil {
			return sel, fmt.Errorf("%w: %s: %q is not a date", errSelection, d.key, v)
		}
		*d.dst = t
	}

	nums := []struct {
		key string
		dst *float64
	}{
		{"tmin", &sel.TempMin},
		{"tmax", &sel.TempMax},
		{"rmin", &sel.RainMin},
		{"rmax", &sel.RainMax},
	}
	for _, n := range nums {
		v := q.Get(n.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return sel, fmt.Errorf("%w: %s: %q is not a number", errSelection, n.key, v)
		}
		*n.dst = f
	}

	sel = sel.Clamp(b)
	if err := s.validate.Struct(sel); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return sel, fmt.Errorf("%w: %s must not be below its lower bound", errSelection, verrs[0].Field())
		}
		return sel, fmt.Errorf("%w: %v", errSelection, err)
	}
	return sel, nil
}

// selectionQuery encodes sel back into query parameters.
func selectionQuery(sel models.Selection) url.Values {
	q := url.Values{}
	q.Set("start", sel.Start.Format(queryDateLayout))
	q.Set("end", sel.End.Format(queryDateLayout))
	q.Set("tmin", strconv.FormatFloat(sel.TempMin, 'f', -1, 64))
	q.Set("tmax", strconv.FormatFloat(sel.TempMax, 'f', -1, 64))
	q.Set("rmin", strconv.FormatFloat(sel.RainMin, 'f', -1, 64))
	q.Set("rmax", strconv.FormatFloat(sel.RainMax, 'f', -1, 64))
	return q
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidDataset), errors.Is(err, errSelection):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
