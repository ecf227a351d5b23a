// Package janitor provides automated data quality assessment and preprocessing
// for tabular datasets. This package is the sole public API for the library.
//
// A dataset flows through up to twelve cleaning stages in a fixed order:
// missing values, duplicates, invalid data, type mismatches, inconsistent
// formats, outliers, high cardinality, low variance, feature correlation,
// mean-median drift, range violations, and class imbalance. Each stage can be
// disabled or tuned through Config, and every run produces a Report describing
// what was done. A failed stage is logged and skipped; the pipeline never
// raises, and a total failure returns the original dataset untouched.
package janitor

import (
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/dataset"
	csvio "github.com/prepio/janitor/internal/io"
	"github.com/prepio/janitor/pipeline"
)

// Dataset is an immutable column-oriented table backed by Apache Arrow.
type Dataset = dataset.Dataset

// Classification partitions a dataset's columns by role.
type Classification = dataset.Classification

// Config selects and tunes the pipeline stages.
type Config = pipeline.Config

// Report describes everything a pipeline run did.
type Report = pipeline.Report

// Preprocessor runs the cleaning pipeline over one dataset.
type Preprocessor = pipeline.Preprocessor

// DefaultConfig returns the stage defaults used when no overrides are given.
func DefaultConfig() Config {
	return pipeline.DefaultConfig()
}

// ParseConfig resolves a raw stage->settings map, as accepted over the API,
// into a validated Config.
func ParseConfig(raw map[string]any) (Config, error) {
	return pipeline.ParseConfig(raw)
}

// Classify partitions the dataset's columns into numeric, categorical, and
// datetime groups, excluding the target column.
func Classify(ds *Dataset, target string) Classification {
	return dataset.Classify(ds, target)
}

// Preprocess runs the full pipeline with the given config and returns the
// cleaned dataset along with the run report.
func Preprocess(ds *Dataset, target string, cfg Config) (*Dataset, Report) {
	return pipeline.New(ds, target, cfg, nil).Run()
}

// PreprocessCSV parses CSV text, runs the pipeline, and renders the cleaned
// dataset back to CSV. Malformed input goes through the parsing fallback
// chain; any recovery warnings are prepended to the report log.
func PreprocessCSV(text, target string, raw map[string]any) (string, Report, error) {
	cfg, err := pipeline.ParseConfig(raw)
	if err != nil {
		return "", Report{}, err
	}

	ds, warnings, err := csvio.ReadFlexible(text, nil)
	if err != nil {
		return "", Report{}, err
	}

	cleaned, report := pipeline.New(ds, target, cfg, nil).Run()
	report.Log = append(warnings, report.Log...)

	out, err := csvio.WriteString(cleaned)
	if err != nil {
		return "", report, err
	}
	return out, report, nil
}

// ReadCSV parses strict comma-delimited CSV with a header row.
func ReadCSV(r io.Reader) (*Dataset, error) {
	return csvio.NewReader(r, csvio.DefaultOptions(), nil).Read()
}

// ReadCSVString parses CSV text through the fallback chain, returning any
// recovery warnings alongside the dataset.
func ReadCSVString(text string) (*Dataset, []string, error) {
	return csvio.ReadFlexible(text, nil)
}

// WriteCSV renders the dataset as comma-delimited CSV with a header row.
func WriteCSV(w io.Writer, ds *Dataset) error {
	return csvio.NewWriter(w, csvio.DefaultOptions()).Write(ds)
}

// WriteCSVString renders the dataset to a CSV string.
func WriteCSVString(ds *Dataset) (string, error) {
	return csvio.WriteString(ds)
}

// CleanCSVText repairs common structural CSV defects (empty lines, trailing
// commas, ragged rows) without parsing the data.
func CleanCSVText(text string) string {
	return csvio.CleanText(strings.TrimSpace(text))
}

// NewAllocator returns the default Arrow allocator used when callers pass nil.
func NewAllocator() memory.Allocator {
	return memory.NewGoAllocator()
}
