package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLowVarianceDropsConstantColumns(t *testing.T) {
	ds := mustDataset(t,
		floatColumn(t, "constant", []float64{5, 5, 5, 5}, nil),
		floatColumn(t, "varying", []float64{1, 9, 3, 7}, nil),
		stringColumn(t, "label", []string{"a", "b", "c", "d"}, nil),
	)
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runLowVariance(ctx)
	require.NoError(t, err)

	assert.False(t, outcome.Dataset.HasColumn("constant"))
	assert.True(t, outcome.Dataset.HasColumn("varying"))
	assert.True(t, outcome.Dataset.HasColumn("label"), "categorical columns are never variance-pruned")
	assert.True(t, outcome.Reclassify)

	stats := outcome.Stats.(FeatureRemovalStats)
	assert.Equal(t, 1, stats.FeaturesRemoved)
	assert.Equal(t, []string{"constant"}, stats.RemovedFeatures)
}

func TestLowVarianceThresholdIsInclusive(t *testing.T) {
	// Sample variance of {1,1,1,1.2,1} is ~0.008: below the 0.01 default.
	ds := mustDataset(t,
		floatColumn(t, "near_constant", []float64{1, 1, 1, 1.2, 1}, nil),
		floatColumn(t, "anchor", []float64{1, 2, 3, 4, 5}, nil),
	)
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runLowVariance(ctx)
	require.NoError(t, err)

	assert.False(t, outcome.Dataset.HasColumn("near_constant"))
}

func TestLowVarianceTooFewObservationsDropped(t *testing.T) {
	ds := mustDataset(t,
		floatColumn(t, "sparse", []float64{1, 0, 0}, []bool{true, false, false}),
		floatColumn(t, "anchor", []float64{1, 2, 3}, nil),
	)
	ctx := newTestContext(t, ds, "", DefaultConfig())

	outcome, err := runLowVariance(ctx)
	require.NoError(t, err)

	assert.False(t, outcome.Dataset.HasColumn("sparse"))
	assert.True(t, outcome.Dataset.HasColumn("anchor"))
}
