package pipeline

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/dataset"
	"github.com/prepio/janitor/internal/series"
	"github.com/stretchr/testify/require"
)

// newTestContext builds the per-stage view a stage function receives,
// mirroring what Run assembles before each stage.
func newTestContext(t *testing.T, ds *dataset.Dataset, target string, cfg Config) *runContext {
	t.Helper()
	return &runContext{
		ds:     ds,
		class:  dataset.Classify(ds, target),
		target: target,
		cfg:    cfg,
		mem:    memory.NewGoAllocator(),
	}
}

func floatColumn(t *testing.T, name string, values []float64, valid []bool) *series.Series {
	t.Helper()
	return series.NewFloat(name, values, valid, nil)
}

func stringColumn(t *testing.T, name string, values []string, valid []bool) *series.Series {
	t.Helper()
	return series.NewString(name, values, valid, nil)
}

func mustDataset(t *testing.T, cols ...*series.Series) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(cols...)
	require.NoError(t, err)
	return ds
}

func floatValues(t *testing.T, ds *dataset.Dataset, name string) ([]float64, []bool) {
	t.Helper()
	col, ok := ds.Column(name)
	require.True(t, ok, "column %s must exist", name)
	return col.Floats()
}

func stringValues(t *testing.T, ds *dataset.Dataset, name string) ([]string, []bool) {
	t.Helper()
	col, ok := ds.Column(name)
	require.True(t, ok, "column %s must exist", name)
	return col.Strings()
}
