package api

import (
	"embed"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/lox/weatherdash/internal/models"
)

//go:embed templates/*
var templateFS embed.FS

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		// num shows undefined statistics as "n/a".
		"num": func(f float64) string {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return "n/a"
			}
			return strconv.FormatFloat(f, 'f', 2, 64)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(models.DateLayout)
		},
		"dateInput": func(t time.Time) string {
			return t.Format(queryDateLayout)
		},
		"input": func(f float64) string {
			return strconv.FormatFloat(f, 'f', -1, 64)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
