package pipeline

import (
	"testing"

	"github.com/prepio/janitor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disabledConfig returns a config with every stage switched off.
func disabledConfig() Config {
	cfg := DefaultConfig()
	cfg.MissingValues.Enabled = false
	cfg.Duplicates.Enabled = false
	cfg.InvalidData.Enabled = false
	cfg.DataTypeMismatch.Enabled = false
	cfg.InconsistentFormats.Enabled = false
	cfg.Outliers.Enabled = false
	cfg.Cardinality.Enabled = false
	cfg.LowVariance.Enabled = false
	cfg.FeatureCorrelation.Enabled = false
	cfg.MeanMedianDrift.Enabled = false
	cfg.RangeViolations.Enabled = false
	cfg.ClassImbalance.Enabled = false
	return cfg
}

func TestRunAllStagesDisabledIsIdentity(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()
	ds := testutil.CreateTestDataset(t, mem.Allocator, testutil.WithNulls())
	defer ds.Release()

	result, report := New(ds, "", disabledConfig(), mem.Allocator).Run()

	assert.True(t, ds.Equal(result), "disabled stages leave every cell untouched")
	assert.Empty(t, report.Log)
	assert.Len(t, report.Stats, 1, "only the summary entry is recorded")
	assert.Contains(t, report.Stats, "summary")
}

func TestRunDeduplicatesThroughPipeline(t *testing.T) {
	ds := mustDataset(t, stringColumn(t, "v", []string{"A", "A", "B", "A"}, nil))

	cfg := disabledConfig()
	cfg.Duplicates.Enabled = true
	result, report := New(ds, "", cfg, nil).Run()

	values, _ := stringValues(t, result, "v")
	assert.Equal(t, []string{"A", "B"}, values)

	summary := report.Stats["summary"].(SummaryStats)
	assert.Equal(t, [2]int{4, 1}, summary.OriginalShape)
	assert.Equal(t, [2]int{2, 1}, summary.FinalShape)
	assert.Equal(t, 2, summary.RowsChanged)
	assert.Equal(t, 2, summary.TotalChanges)
}

func TestRunCleanDatasetIsStable(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()
	ds := testutil.CreateTestDataset(t, mem.Allocator)
	defer ds.Release()

	cfg := DefaultConfig()
	cfg.Outliers.Enabled = false       // too few rows for the flagged fraction to bite anyway
	cfg.ClassImbalance.Enabled = false // no target column

	once, _ := New(ds, "", cfg, mem.Allocator).Run()
	twice, _ := New(once, "", cfg, mem.Allocator).Run()

	assert.True(t, once.Equal(twice), "a cleaned dataset passes through unchanged")
}

func TestRunStageErrorIsLoggedAndSkipped(t *testing.T) {
	// Outliers reject numeric nulls when imputation is off; the pipeline
	// must log the failure and keep going.
	ds := mustDataset(t,
		floatColumn(t, "x", []float64{1, 0, 3, 4}, []bool{true, false, true, true}),
	)
	cfg := disabledConfig()
	cfg.Outliers.Enabled = true
	cfg.Duplicates.Enabled = true

	result, report := New(ds, "", cfg, nil).Run()

	require.NotEmpty(t, report.Log)
	assert.Contains(t, report.Log[0], "Error in outliers stage")
	assert.Contains(t, report.Log[0], "stage skipped")
	assert.NotContains(t, report.Stats, StageOutliers, "failed stages record no stats")

	assert.Equal(t, 4, result.Len(), "later stages still ran on the untouched dataset")
	assert.Contains(t, report.Stats, StageDuplicates)
}

func TestRunEmptyDatasetDoesNotPanic(t *testing.T) {
	ds := mustDataset(t)

	result, report := New(ds, "", DefaultConfig(), nil).Run()

	assert.Zero(t, result.Width())
	assert.NotNil(t, report.Stats)
	assert.Contains(t, report.Stats, "summary")
}

func TestRunReportShape(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()
	ds := testutil.CreateTestDataset(t, mem.Allocator, testutil.WithNulls(), testutil.WithTargetColumn())
	defer ds.Release()

	_, report := New(ds, "churned", DefaultConfig(), mem.Allocator).Run()

	assert.Contains(t, report.Stats, StageMissingValues)
	assert.Contains(t, report.Stats, StageDuplicates)
	assert.Contains(t, report.Stats, "summary")

	info := report.FinalDatasetInfo
	assert.Equal(t, info.Shape[1], len(info.Columns))
	assert.NotNil(t, info.DataTypes)
}

func TestRunTargetColumnSurvives(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()
	ds := testutil.CreateTestDataset(t, mem.Allocator, testutil.WithTargetColumn())
	defer ds.Release()

	result, _ := New(ds, "churned", DefaultConfig(), mem.Allocator).Run()

	assert.True(t, result.HasColumn("churned"))
}
