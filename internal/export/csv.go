package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/lox/weatherdash/internal/analysis"
	"github.com/lox/weatherdash/internal/models"
)

// Filename is the suggested name of the filtered download.
const Filename = "filtered_weather.csv"

// ContentType is the MIME type of the download.
const ContentType = "text/csv; charset=utf-8"

// WriteCSV serialises t as comma-separated UTF-8 text with a header row and
// no index column. Dates use the upload layout so the file can be re-uploaded.
func WriteCSV(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for i := 0; i < t.Len(); i++ {
		for ci, c := range t.Columns {
			record[ci] = analysis.FormatCell(c, i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
