package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lox/weatherdash/internal/models"
)

const sampleCSV = `date,temperature,rainfall,humidity,station
01-01-2020,15,0.5,80,north
02-01-2020,20,,75,north
3-2-2020,,2.0,NA,south
`

func TestParseCSV(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	want := []string{"date", "temperature", "rainfall", "humidity", "station"}
	if got := table.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	dates := table.Column(models.ColDate)
	if dates.Kind != models.KindDate {
		t.Fatalf("date kind = %v, want date", dates.Kind)
	}
	wantDate := time.Date(2020, time.February, 3, 0, 0, 0, 0, time.UTC)
	if !dates.Dates[2].Time.Equal(wantDate) {
		t.Errorf("unpadded date = %v, want %v", dates.Dates[2].Time, wantDate)
	}

	temps := table.Column(models.ColTemperature)
	if temps.Numbers[1].Float64 != 20 || !temps.Numbers[1].Valid {
		t.Errorf("temperature[1] = %+v, want 20", temps.Numbers[1])
	}
	if temps.Numbers[2].Valid {
		t.Error("expected empty temperature to be missing")
	}
	if table.Column(models.ColRainfall).Numbers[1].Valid {
		t.Error("expected empty rainfall to be missing")
	}

	if k := table.Column("humidity").Kind; k != models.KindNumber {
		t.Errorf("humidity kind = %v, want number", k)
	}
	if table.Column("humidity").Numbers[2].Valid {
		t.Error("expected NA humidity to be missing")
	}
	if k := table.Column("station").Kind; k != models.KindText {
		t.Errorf("station kind = %v, want text", k)
	}
}

func TestParseCSV_ByteOrderMark(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("\ufeffdate,temperature,rainfall\n01-01-2020,5,0\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if got := table.Names()[0]; got != models.ColDate {
		t.Errorf("first column = %q, want %q", got, models.ColDate)
	}
	if d := table.Column(models.ColDate).Dates[0].Time; !d.Equal(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v, want 2020-01-01", d)
	}
}

func TestParseCSV_NonFiniteExtraColumnIsText(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("date,temperature,rainfall,note\n01-01-2020,5,0,inf\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if k := table.Column("note").Kind; k != models.KindText {
		t.Errorf("note kind = %v, want text", k)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{
			name:    "missing rainfall column",
			input:   "date,temperature\n01-01-2020,15\n",
			wantMsg: "rainfall",
		},
		{
			name:    "missing every required column",
			input:   "a,b\n1,2\n",
			wantMsg: "date, temperature, rainfall",
		},
		{
			name:    "iso date",
			input:   "date,temperature,rainfall\n2020-01-01,15,0\n",
			wantMsg: "DD-MM-YYYY",
		},
		{
			name:    "empty date",
			input:   "date,temperature,rainfall\n01-01-2020,15,0\n,16,1\n",
			wantMsg: "row 2",
		},
		{
			name:    "text temperature",
			input:   "date,temperature,rainfall\n01-01-2020,warm,0\n",
			wantMsg: `"warm"`,
		},
		{
			name:    "infinite temperature",
			input:   "date,temperature,rainfall\n01-01-2020,inf,0\n",
			wantMsg: `"inf"`,
		},
		{
			name:    "infinite rainfall",
			input:   "date,temperature,rainfall\n01-01-2020,5,+Infinity\n",
			wantMsg: `"+Infinity"`,
		},
		{
			name:    "nan spelled out",
			input:   "date,temperature,rainfall\n01-01-2020,5,NAN\n",
			wantMsg: `"NAN"`,
		},
		{
			name:  "header only",
			input: "date,temperature,rainfall\n",
		},
		{
			name:  "empty file",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidDataset) {
				t.Errorf("error %v does not wrap ErrInvalidDataset", err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateColumns(t *testing.T) {
	if err := ValidateColumns([]string{"rainfall", "extra", "date", "temperature"}); err != nil {
		t.Errorf("ValidateColumns: %v", err)
	}
	if err := ValidateColumns([]string{"Date", "temperature", "rainfall"}); err == nil {
		t.Error("expected column names to be case sensitive")
	}
}
