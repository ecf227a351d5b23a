// Package io provides CSV input/output for datasets.
//
// Reading is tolerant of malformed input via a documented fallback chain:
// a strict parse is attempted first, then a cleaned-text retry (rows padded
// or truncated to the header width), then a skip-bad-rows retry, and
// finally a most-flexible retry that sniffs the delimiter. Type inference
// produces numeric columns where every non-missing value parses as a
// number; everything else stays categorical text. Missing-value tokens
// ("", NA, NaN, N/A, null) become nulls.
package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/dataset"
	"github.com/prepio/janitor/internal/series"
)

// missingTokens are the cell values read as nulls.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
}

// sniffDelimiters are tried, in order, by the most-flexible parse attempt.
var sniffDelimiters = []rune{',', ';', '\t', '|'}

// Options configures CSV parsing.
type Options struct {
	Delimiter rune
	Header    bool
}

// DefaultOptions returns comma-delimited parsing with a header row.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Header: true}
}

// Reader reads CSV data into a Dataset.
type Reader struct {
	reader  io.Reader
	options Options
	mem     memory.Allocator
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, options Options, mem memory.Allocator) *Reader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &Reader{reader: r, options: options, mem: mem}
}

// Read parses the input strictly: every record must have the header's
// field count.
func (r *Reader) Read() (*dataset.Dataset, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return r.fromRecords(records)
}

func (r *Reader) fromRecords(records [][]string) (*dataset.Dataset, error) {
	if len(records) == 0 {
		return dataset.New()
	}

	var headers []string
	var rows [][]string
	if r.options.Header {
		headers = records[0]
		rows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		rows = records
	}

	cols := make([]*series.Series, len(headers))
	for j, header := range headers {
		values := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		cols[j] = inferSeries(header, values, r.mem)
	}
	return dataset.New(cols...)
}

// inferSeries builds a numeric column when every non-missing value parses
// as a float, otherwise a string column. Missing tokens become nulls.
func inferSeries(name string, raw []string, mem memory.Allocator) *series.Series {
	numeric := true
	sawValue := false
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if missingTokens[v] {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}

	if numeric && sawValue {
		values := make([]float64, len(raw))
		valid := make([]bool, len(raw))
		for i, v := range raw {
			v = strings.TrimSpace(v)
			if missingTokens[v] {
				continue
			}
			f, _ := strconv.ParseFloat(v, 64)
			values[i] = f
			valid[i] = true
		}
		return series.NewFloat(name, values, valid, mem)
	}

	values := make([]string, len(raw))
	valid := make([]bool, len(raw))
	for i, v := range raw {
		trimmed := strings.TrimSpace(v)
		if missingTokens[trimmed] {
			continue
		}
		values[i] = v
		valid[i] = true
	}
	return series.NewString(name, values, valid, mem)
}

// ReadFlexible runs the fallback chain over raw CSV text and returns the
// dataset plus warnings describing which recovery steps were needed.
func ReadFlexible(text string, mem memory.Allocator) (*dataset.Dataset, []string, error) {
	var warnings []string

	// First attempt: strict parsing.
	ds, firstErr := NewReader(strings.NewReader(text), DefaultOptions(), mem).Read()
	if firstErr == nil {
		return ds, nil, nil
	}

	// Second attempt: clean the text and retry strictly.
	cleaned := CleanText(text)
	if ds, err := NewReader(strings.NewReader(cleaned), DefaultOptions(), mem).Read(); err == nil {
		warnings = append(warnings, "CSV required cleaning due to format issues")
		return ds, warnings, nil
	}

	// Third attempt: skip rows whose field count disagrees with the header.
	if ds, skipped, err := readSkippingBadRows(text, ',', mem); err == nil {
		warnings = append(warnings, fmt.Sprintf("%d malformed rows were skipped", skipped))
		return ds, warnings, nil
	}

	// Fourth attempt: sniff the delimiter and parse as loosely as possible.
	for _, delim := range sniffDelimiters {
		if ds, skipped, err := readSkippingBadRows(text, delim, mem); err == nil {
			warnings = append(warnings, fmt.Sprintf(
				"used flexible parsing with delimiter %q; %d malformed rows were skipped", delim, skipped))
			return ds, warnings, nil
		}
	}

	return nil, nil, fmt.Errorf("CSV parsing failed after multiple attempts: %w", firstErr)
}

// readSkippingBadRows parses record by record, dropping rows whose field
// count differs from the header's.
func readSkippingBadRows(text string, delimiter rune, mem memory.Allocator) (*dataset.Dataset, int, error) {
	csvReader := csv.NewReader(strings.NewReader(text))
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1

	var records [][]string
	skipped := 0
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(records) > 0 && len(record) != len(records[0]) {
			skipped++
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, 0, fmt.Errorf("no parseable rows with delimiter %q", delimiter)
	}

	r := NewReader(nil, Options{Delimiter: delimiter, Header: true}, mem)
	ds, err := r.fromRecords(records)
	return ds, skipped, err
}

// CleanText repairs the common structural CSV defects before a re-parse:
// empty lines are dropped, trailing commas stripped, and every row padded
// or truncated to the header's field count.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 {
		return text
	}
	header := lines[0]
	expected := len(strings.Split(header, ","))

	cleaned := []string{header}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != expected {
			line = strings.TrimRight(line, ",")
			fields = strings.Split(line, ",")
			if len(fields) < expected {
				for len(fields) < expected {
					fields = append(fields, "")
				}
			} else if len(fields) > expected {
				fields = fields[:expected]
			}
			line = strings.Join(fields, ",")
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// Writer writes a Dataset as CSV.
type Writer struct {
	writer  io.Writer
	options Options
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer, options Options) *Writer {
	return &Writer{writer: w, options: options}
}

// Write renders the dataset. Nulls render as empty fields.
func (w *Writer) Write(ds *dataset.Dataset) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(ds.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	columns := ds.Columns()
	for i := 0; i < ds.Len(); i++ {
		row := make([]string, len(columns))
		for j, name := range columns {
			col, _ := ds.Column(name)
			row[j] = col.ValueString(i)
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteString renders the dataset to a CSV string.
func WriteString(ds *dataset.Dataset) (string, error) {
	var sb strings.Builder
	if err := NewWriter(&sb, DefaultOptions()).Write(ds); err != nil {
		return "", err
	}
	return sb.String(), nil
}
