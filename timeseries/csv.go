package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn string   // Column name for dates (default: first of "date", "Date", "Data", "ds", "Month")
	Columns    []string // Value columns to keep (default: every non-date column)
	DateFormat string   // Date format tried first (default: "2006-01-02")
	Delimiter  rune     // Field delimiter (default: ',')
	SkipRows   int      // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: "2006-01-02",
		Delimiter:  ',',
	}
}

var dateHeaders = []string{"date", "Date", "Data", "ds", "Month"}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
	"2006 Jan",
}

// Frame is a set of named monthly columns sharing one timestamp index.
type Frame struct {
	Timestamps []time.Time
	Names      []string
	Columns    map[string][]float64
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return len(f.Timestamps)
}

// Series returns the named column as a Series. Values are copied.
func (f *Frame) Series(name string) (*Series, error) {
	col, ok := f.Columns[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(f.Names, ", "))
	}
	values := make([]float64, len(col))
	copy(values, col)
	timestamps := make([]time.Time, len(f.Timestamps))
	copy(timestamps, f.Timestamps)
	return &Series{Timestamps: timestamps, Values: values, Name: name}, nil
}

// Matrix returns the named columns as an exogenous matrix. An empty name
// list yields a nil matrix.
func (f *Frame) Matrix(names ...string) (*Matrix, error) {
	if len(names) == 0 {
		return nil, nil
	}
	cols := make([][]float64, len(names))
	for j, name := range names {
		col, ok := f.Columns[name]
		if !ok {
			return nil, fmt.Errorf("column %q not found (have %s)", name, strings.Join(f.Names, ", "))
		}
		cols[j] = col
	}
	return MatrixFromColumns(names, cols...)
}

// LoadFrameCSV loads a dated multi-column table from a CSV file.
func LoadFrameCSV(filename string, opts *CSVOptions) (*Frame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadFrameFromReader(file, opts)
}

// LoadFrameFromReader loads a dated multi-column table from an io.Reader.
// Missing values ("", "NA", "NaN", "null") are kept as NaN so that rows stay
// aligned with their month; validation is left to the consumer.
func LoadFrameFromReader(r io.Reader, opts *CSVOptions) (*Frame, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.Trim(h, "\""))
	}

	dateIdx := -1
	for i, h := range header {
		if opts.DateColumn != "" {
			if h == opts.DateColumn {
				dateIdx = i
			}
			continue
		}
		for _, cand := range dateHeaders {
			if h == cand && dateIdx == -1 {
				dateIdx = i
			}
		}
	}
	if dateIdx == -1 {
		return nil, errors.New("date column not found in CSV header")
	}

	var names []string
	var idx []int
	if len(opts.Columns) > 0 {
		for _, want := range opts.Columns {
			found := -1
			for i, h := range header {
				if h == want {
					found = i
				}
			}
			if found == -1 {
				return nil, fmt.Errorf("column %q not found in CSV header", want)
			}
			names = append(names, want)
			idx = append(idx, found)
		}
	} else {
		for i, h := range header {
			if i != dateIdx {
				names = append(names, h)
				idx = append(idx, i)
			}
		}
	}

	frame := &Frame{
		Names:   names,
		Columns: make(map[string][]float64, len(names)),
	}

	line := opts.SkipRows + 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if dateIdx >= len(record) {
			return nil, fmt.Errorf("line %d: missing date field", line)
		}
		ts, err := parseDate(strings.TrimSpace(strings.Trim(record[dateIdx], "\"")), opts.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frame.Timestamps = append(frame.Timestamps, MonthStart(ts))

		for j, ci := range idx {
			v := math.NaN()
			if ci < len(record) {
				v, err = parseValue(record[ci])
				if err != nil {
					return nil, fmt.Errorf("line %d column %q: %w", line, names[j], err)
				}
			}
			frame.Columns[names[j]] = append(frame.Columns[names[j]], v)
		}
	}

	if frame.Len() == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	return frame, nil
}

func parseDate(s, preferred string) (time.Time, error) {
	formats := dateFormats
	if preferred != "" {
		formats = append([]string{preferred}, dateFormats...)
	}
	for _, layout := range formats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseValue(raw string) (float64, error) {
	s := strings.TrimSpace(strings.Trim(raw, "\""))
	switch s {
	case "", "NA", "NaN", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteFrameCSV writes the frame as CSV with a leading "date" column.
func WriteFrameCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)

	header := append([]string{"date"}, f.Names...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, ts := range f.Timestamps {
		record[0] = ts.Format("2006-01-02")
		for j, name := range f.Names {
			record[j+1] = strconv.FormatFloat(f.Columns[name][i], 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
