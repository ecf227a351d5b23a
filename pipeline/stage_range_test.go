package pipeline

import (
	"testing"

	"github.com/prepio/janitor/internal/mathutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestRangeViolationsCapsAtThreeSigma(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}
	ds := mustDataset(t, floatColumn(t, "x", values, nil))
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runRangeViolations(ctx)
	require.NoError(t, err)

	mean := stat.Mean(values, nil)
	upper := mean + 3*stat.StdDev(values, nil)

	out, _ := floatValues(t, outcome.Dataset, "x")
	assert.InDelta(t, upper, out[10], 1e-9, "violation capped at the upper bound")
	assert.Equal(t, 1.0, out[0], "in-range values untouched")

	stats := outcome.Stats.(RangeViolationsStats)
	assert.Equal(t, 1, stats.ViolationsFixed)
	assert.Contains(t, outcome.Log[0], "range violations in x")
	assert.Equal(t, ds.Len(), outcome.Dataset.Len())
}

func TestRangeViolationsCleanColumnUntouched(t *testing.T) {
	ds := mustDataset(t, floatColumn(t, "x", []float64{1, 2, 3, 4, 5}, nil))
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runRangeViolations(ctx)
	require.NoError(t, err)

	assert.Zero(t, outcome.Stats.(RangeViolationsStats).ViolationsFixed)
	assert.Empty(t, outcome.Log)
}

func TestRangeViolationsNullsIgnored(t *testing.T) {
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1000}
	valid := []bool{true, true, true, true, true, true, true, true, true, true, false, true}
	ds := mustDataset(t, floatColumn(t, "x", values, valid))
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runRangeViolations(ctx)
	require.NoError(t, err)

	out, outValid := floatValues(t, outcome.Dataset, "x")
	assert.False(t, outValid[10], "null positions stay null")

	observed := mathutil.Compact(values, valid)
	upper := stat.Mean(observed, nil) + 3*stat.StdDev(observed, nil)
	assert.InDelta(t, upper, out[11], 1e-9)
}
