// Package testutil provides common testing utilities to reduce code
// duplication across test files in the janitor pipeline.
//
// This package consolidates the patterns most tests share:
// - Memory allocator setup and cleanup
// - Standard test dataset creation
// - Common dataset assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/dataset"
	"github.com/prepio/janitor/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test datasets.
	defaultRowCount = 6
)

// TestMemoryContext provides a memory allocator with automatic cleanup.
type TestMemoryContext struct {
	Allocator memory.Allocator
	cleanup   func()
}

// Release performs cleanup of the memory context.
func (tmc *TestMemoryContext) Release() {
	if tmc.cleanup != nil {
		tmc.cleanup()
	}
}

// SetupMemoryTest creates a memory allocator with automatic cleanup for tests.
// Returns a TestMemoryContext that should be released with defer.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	allocator := memory.NewGoAllocator()

	return &TestMemoryContext{
		Allocator: allocator,
		cleanup:   func() {},
	}
}

// TestDatasetOption configures test dataset creation.
type TestDatasetOption func(*testDatasetConfig)

type testDatasetConfig struct {
	rowCount     int
	includeNulls bool
	withTarget   bool
}

// WithRowCount sets the number of rows in the test dataset.
func WithRowCount(count int) TestDatasetOption {
	return func(cfg *testDatasetConfig) {
		cfg.rowCount = count
	}
}

// WithNulls punches nulls into the age column.
func WithNulls() TestDatasetOption {
	return func(cfg *testDatasetConfig) {
		cfg.includeNulls = true
	}
}

// WithTargetColumn includes a binary 'churned' label column.
func WithTargetColumn() TestDatasetOption {
	return func(cfg *testDatasetConfig) {
		cfg.withTarget = true
	}
}

// CreateTestDataset creates a standard customer dataset for pipeline tests.
//
// Default columns:
// - name (string)
// - age (float64)
// - city (string)
// - spend (float64)
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
//	ds := testutil.CreateTestDataset(t, mem.Allocator)
func CreateTestDataset(tb testing.TB, allocator memory.Allocator, opts ...TestDatasetOption) *dataset.Dataset {
	tb.Helper()

	cfg := &testDatasetConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	names := cycleStrings([]string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank"}, cfg.rowCount)
	ages := cycleFloats([]float64{25, 30, 35, 28, 41, 33}, cfg.rowCount)
	cities := cycleStrings([]string{"Tokyo", "Osaka", "Tokyo", "Nagoya", "Tokyo", "Osaka"}, cfg.rowCount)
	spends := cycleFloats([]float64{120.5, 80, 240.75, 60.25, 310, 95.5}, cfg.rowCount)

	var ageValid []bool
	if cfg.includeNulls {
		ageValid = make([]bool, cfg.rowCount)
		for i := range ageValid {
			ageValid[i] = i%3 != 1
		}
	}

	cols := []*series.Series{
		series.NewString("name", names, nil, allocator),
		series.NewFloat("age", ages, ageValid, allocator),
		series.NewString("city", cities, nil, allocator),
		series.NewFloat("spend", spends, nil, allocator),
	}

	if cfg.withTarget {
		labels := make([]string, cfg.rowCount)
		for i := range labels {
			if i%4 == 0 {
				labels[i] = "yes"
			} else {
				labels[i] = "no"
			}
		}
		cols = append(cols, series.NewString("churned", labels, nil, allocator))
	}

	ds, err := dataset.New(cols...)
	require.NoError(tb, err)
	return ds
}

// NumericDataset builds a dataset of float columns from name/value pairs.
func NumericDataset(tb testing.TB, allocator memory.Allocator, columns map[string][]float64, order []string) *dataset.Dataset {
	tb.Helper()

	cols := make([]*series.Series, 0, len(order))
	for _, name := range order {
		values, ok := columns[name]
		require.True(tb, ok, "column %s missing from values map", name)
		cols = append(cols, series.NewFloat(name, values, nil, allocator))
	}
	ds, err := dataset.New(cols...)
	require.NoError(tb, err)
	return ds
}

// AssertDatasetEqual performs deep equality comparison of datasets.
func AssertDatasetEqual(t *testing.T, expected, actual *dataset.Dataset) {
	t.Helper()

	require.NotNil(t, expected, "expected dataset should not be nil")
	require.NotNil(t, actual, "actual dataset should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "dataset lengths should match")
	assert.Equal(t, expected.Width(), actual.Width(), "dataset widths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "dataset columns should match")
	assert.True(t, expected.Equal(actual), "dataset contents should match")
}

// AssertDatasetHasColumns verifies that a dataset has exactly the expected columns.
func AssertDatasetHasColumns(t *testing.T, ds *dataset.Dataset, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, ds, "dataset should not be nil")

	actualColumns := ds.Columns()
	assert.Len(t, actualColumns, len(expectedColumns), "column count should match")
	for _, col := range expectedColumns {
		assert.True(t, ds.HasColumn(col), "dataset should have column %s", col)
	}
}

// AssertDatasetNotEmpty verifies that a dataset has rows and columns.
func AssertDatasetNotEmpty(t *testing.T, ds *dataset.Dataset) {
	t.Helper()

	require.NotNil(t, ds, "dataset should not be nil")
	assert.Positive(t, ds.Len(), "dataset should not be empty")
	assert.Positive(t, ds.Width(), "dataset should have columns")
}

func cycleStrings(base []string, count int) []string {
	out := make([]string, count)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out
}

func cycleFloats(base []float64, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = base[i%len(base)]
	}
	return out
}
