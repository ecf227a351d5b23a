package janitor_test

import (
	"strings"
	"testing"

	janitor "github.com/prepio/janitor"
	"github.com/prepio/janitor/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessCSV(t *testing.T) {
	csv := "name,age\nAlice,25\nAlice,25\nBob,30\nCharlie,35\n"

	out, report, err := janitor.PreprocessCSV(csv, "", nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4, "header plus three deduplicated rows")
	assert.Equal(t, "name,age", lines[0])

	summary := report.Stats["summary"].(pipeline.SummaryStats)
	assert.Equal(t, [2]int{4, 2}, summary.OriginalShape)
	assert.Equal(t, [2]int{3, 2}, summary.FinalShape)
}

func TestPreprocessCSVInvalidConfig(t *testing.T) {
	_, _, err := janitor.PreprocessCSV("a\n1\n", "", map[string]any{
		"duplicates": map[string]any{"keep": "middle"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep")
}

func TestPreprocessCSVPrependsRecoveryWarnings(t *testing.T) {
	csv := "name,age\nAlice,25\nBob,30,extra\n"

	_, report, err := janitor.PreprocessCSV(csv, "", map[string]any{"duplicates": false})
	require.NoError(t, err)
	require.NotEmpty(t, report.Log)
	assert.Contains(t, strings.ToLower(report.Log[0]), "csv")
}

func TestReadCSVString(t *testing.T) {
	ds, warnings, err := janitor.ReadCSVString("a,b\n1,x\n2,y\n")
	require.NoError(t, err)
	defer ds.Release()

	assert.Empty(t, warnings)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"a", "b"}, ds.Columns())
}

func TestReadCSVRoundTrip(t *testing.T) {
	ds, err := janitor.ReadCSV(strings.NewReader("a,b\n1,x\n2,y\n"))
	require.NoError(t, err)
	defer ds.Release()

	out, err := janitor.WriteCSVString(ds)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,y\n", out)
}

func TestPreprocessKeepsTargetColumn(t *testing.T) {
	ds, _, err := janitor.ReadCSVString("x,label\n1,a\n2,a\n3,b\n4,b\n")
	require.NoError(t, err)
	defer ds.Release()

	cleaned, report := janitor.Preprocess(ds, "label", janitor.DefaultConfig())

	assert.True(t, cleaned.HasColumn("label"))
	assert.Contains(t, report.Stats, "summary")
}

func TestClassify(t *testing.T) {
	ds, _, err := janitor.ReadCSVString("x,city,label\n1,Tokyo,a\n2,Osaka,b\n")
	require.NoError(t, err)
	defer ds.Release()

	class := janitor.Classify(ds, "label")
	assert.Equal(t, []string{"x"}, class.Numeric)
	assert.Equal(t, []string{"city"}, class.Categorical)
}

func TestCleanCSVText(t *testing.T) {
	cleaned := janitor.CleanCSVText("a,b\n1,2,\n3\n4,5,6\n")
	assert.Equal(t, "a,b\n1,2\n3,\n4,5", cleaned)
}
