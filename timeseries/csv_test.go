package timeseries

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestLoadFrameFromReader(t *testing.T) {
	csvData := `Data,Julgamentos,Saldo de Entradas
2021-06-01,15865,17753
2021-07-01,17767,17365
2021-08-01,18126,18103
2021-09-01,15152,16760`

	frame, err := LoadFrameFromReader(strings.NewReader(csvData), nil)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if frame.Len() != 4 {
		t.Errorf("Expected 4 rows, got %d", frame.Len())
	}
	if len(frame.Names) != 2 || frame.Names[0] != "Julgamentos" {
		t.Errorf("Expected value columns [Julgamentos Saldo de Entradas], got %v", frame.Names)
	}

	series, err := frame.Series("Julgamentos")
	if err != nil {
		t.Fatalf("Failed to select series: %v", err)
	}
	expected := []float64{15865, 17767, 18126, 15152}
	for i, v := range expected {
		if series.Values[i] != v {
			t.Errorf("Value at index %d: expected %f, got %f", i, v, series.Values[i])
		}
	}
	if err := series.ValidateMonthly(); err != nil {
		t.Errorf("Expected monthly series, got %v", err)
	}

	exog, err := frame.Matrix("Saldo de Entradas")
	if err != nil {
		t.Fatalf("Failed to select matrix: %v", err)
	}
	if exog.Len() != 4 || exog.Width() != 1 || exog.Rows[0][0] != 17753 {
		t.Errorf("Unexpected exogenous matrix %v", exog.Rows)
	}

	if _, err := frame.Series("Acervo"); err == nil {
		t.Errorf("Expected error for unknown column")
	}
}

func TestLoadFrameSelectedColumns(t *testing.T) {
	csvData := `date,a,b,c
2020-01-31,1,2,3
2020-02-29,4,5,6`

	opts := DefaultCSVOptions()
	opts.Columns = []string{"c", "a"}

	frame, err := LoadFrameFromReader(strings.NewReader(csvData), opts)
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if len(frame.Names) != 2 || frame.Names[0] != "c" || frame.Names[1] != "a" {
		t.Errorf("Expected columns [c a], got %v", frame.Names)
	}

	// End-of-month dates are normalized to the month start.
	if got := frame.Timestamps[1].Format("2006-01-02"); got != "2020-02-01" {
		t.Errorf("Expected 2020-02-01, got %s", got)
	}

	opts.Columns = []string{"missing"}
	if _, err := LoadFrameFromReader(strings.NewReader(csvData), opts); err == nil {
		t.Errorf("Expected error for missing column")
	}
}

func TestLoadFrameWithNAValues(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-02-01,NA
2020-03-01,
2020-04-01,103`

	frame, err := LoadFrameFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("Failed to load CSV: %v", err)
	}

	if frame.Len() != 4 {
		t.Fatalf("Expected 4 rows (NA kept in place), got %d", frame.Len())
	}
	y := frame.Columns["y"]
	if !math.IsNaN(y[1]) || !math.IsNaN(y[2]) {
		t.Errorf("Expected NaN placeholders, got %v", y)
	}

	series, _ := frame.Series("y")
	if err := series.ValidateMonthly(); err == nil {
		t.Errorf("Expected validation error for NaN values")
	}
}

func TestLoadFrameDateFormats(t *testing.T) {
	tests := []struct {
		name    string
		csvData string
		want    string
	}{
		{"iso", "date,y\n2020-01-15,1\n", "2020-01-01"},
		{"slash", "date,y\n2020/03/05,1\n", "2020-03-01"},
		{"month only", "date,y\n2021-06,1\n", "2021-06-01"},
		{"quoted", "\"date\",\"y\"\n\"2022-07-01\",\"1\"\n", "2022-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := LoadFrameFromReader(strings.NewReader(tt.csvData), nil)
			if err != nil {
				t.Fatalf("Failed to load CSV: %v", err)
			}
			if got := frame.Timestamps[0].Format("2006-01-02"); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestLoadFrameErrors(t *testing.T) {
	tests := []struct {
		name    string
		csvData string
	}{
		{"no date column", "x,y\n1,2\n"},
		{"bad date", "date,y\nyesterday,2\n"},
		{"bad value", "date,y\n2020-01-01,abc\n"},
		{"header only", "date,y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrameFromReader(strings.NewReader(tt.csvData), nil); err == nil {
				t.Errorf("Expected error")
			}
		})
	}
}

func TestWriteFrameCSV(t *testing.T) {
	s := New([]float64{1.5, 2})
	frame := &Frame{
		Timestamps: s.Timestamps,
		Names:      []string{"y"},
		Columns:    map[string][]float64{"y": s.Values},
	}

	var buf bytes.Buffer
	if err := WriteFrameCSV(&buf, frame); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	expected := "date,y\n2000-01-01,1.5\n2000-02-01,2\n"
	if buf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, buf.String())
	}

	back, err := LoadFrameFromReader(&buf, nil)
	if err != nil {
		t.Fatalf("Failed to read back CSV: %v", err)
	}
	if back.Columns["y"][0] != 1.5 {
		t.Errorf("Expected 1.5 after reading back, got %f", back.Columns["y"][0])
	}
}
