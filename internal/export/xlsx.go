package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/models"
)

const (
	XLSXFilename    = "filtered_weather.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName       = "Filtered"
)

// WriteXLSX writes t as a single-sheet workbook. Numbers are stored as numeric
// cells, dates as DD-MM-YYYY text and missing cells are left blank.
func WriteXLSX(w io.Writer, t *models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}

	for i := 0; i < t.Len(); i++ {
		row := make([]interface{}, len(t.Columns))
		for ci, c := range t.Columns {
			switch {
			case c.Missing(i):
				row[ci] = nil
			case c.Kind == models.KindNumber:
				row[ci] = c.Numbers[i].Float64
			default:
				row[ci] = analysis.FormatCell(c, i)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
