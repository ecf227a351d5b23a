package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigEnablesEveryStage(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.MissingValues.Enabled)
	assert.True(t, cfg.Duplicates.Enabled)
	assert.True(t, cfg.InvalidData.Enabled)
	assert.True(t, cfg.DataTypeMismatch.Enabled)
	assert.True(t, cfg.InconsistentFormats.Enabled)
	assert.True(t, cfg.Outliers.Enabled)
	assert.True(t, cfg.Cardinality.Enabled)
	assert.True(t, cfg.LowVariance.Enabled)
	assert.True(t, cfg.FeatureCorrelation.Enabled)
	assert.True(t, cfg.MeanMedianDrift.Enabled)
	assert.True(t, cfg.RangeViolations.Enabled)
	assert.True(t, cfg.ClassImbalance.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestParseConfigBooleanToggles(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{
		StageOutliers:   false,
		StageDuplicates: true,
	})
	require.NoError(t, err)

	assert.False(t, cfg.Outliers.Enabled)
	assert.True(t, cfg.Duplicates.Enabled)
	assert.Equal(t, "hash_fingerprint", cfg.Duplicates.Method, "true keeps defaults")
}

func TestParseConfigParameterObjectMergesOverDefaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{
		StageMissingValues: map[string]any{"max_missing_threshold": 0.3},
		StageCardinality:   map[string]any{"max_cardinality": 10},
	})
	require.NoError(t, err)

	assert.True(t, cfg.MissingValues.Enabled)
	assert.Equal(t, 0.3, cfg.MissingValues.MaxMissingThreshold)
	assert.Equal(t, "mice", cfg.MissingValues.Method, "unspecified keys keep defaults")
	assert.Equal(t, 10, cfg.Cardinality.MaxCardinality)
}

func TestParseConfigIgnoresUnknownStages(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{"not_a_stage": false})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigRejectsBadSettingType(t *testing.T) {
	_, err := ParseConfig(map[string]any{StageOutliers: "yes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boolean or a parameter object")
}

func TestValidateRejectsOutOfRangeThresholds(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"missing threshold above one", map[string]any{StageMissingValues: map[string]any{"max_missing_threshold": 1.5}}},
		{"bad keep policy", map[string]any{StageDuplicates: map[string]any{"keep": "middle"}}},
		{"confidence out of range", map[string]any{StageInvalidData: map[string]any{"confidence_level": 1.0}}},
		{"contamination too high", map[string]any{StageOutliers: map[string]any{"contamination": 0.9}}},
		{"zero cardinality", map[string]any{StageCardinality: map[string]any{"max_cardinality": 0}}},
		{"negative variance threshold", map[string]any{StageLowVariance: map[string]any{"threshold": -0.1}}},
		{"correlation threshold above one", map[string]any{StageFeatureCorrelation: map[string]any{"threshold": 1.2}}},
		{"zero drift threshold", map[string]any{StageMeanMedianDrift: map[string]any{"threshold": 0.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestLoadFromJSON(t *testing.T) {
	cfg, err := LoadFromJSON([]byte(`{"outliers": {"contamination": 0.2}, "low_variance": false}`))
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.Outliers.Contamination)
	assert.False(t, cfg.LowVariance.Enabled)

	_, err = LoadFromJSON([]byte("{not json"))
	require.Error(t, err)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "outliers:\n  contamination: 0.25\nduplicates: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Outliers.Contamination)
	assert.False(t, cfg.Duplicates.Enabled)
}

func TestLoadFromFileUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JANITOR_STAGE_OUTLIERS", "false")
	t.Setenv("JANITOR_STAGE_DUPLICATES", "true")
	t.Setenv("JANITOR_STAGE_CARDINALITY", "not-a-bool")

	cfg := LoadFromEnv()
	assert.False(t, cfg.Outliers.Enabled)
	assert.True(t, cfg.Duplicates.Enabled)
	assert.True(t, cfg.Cardinality.Enabled, "unparseable values are ignored")
}

func TestRawDefaultCoversEveryStage(t *testing.T) {
	raw := RawDefault()
	descriptions := Descriptions()

	for _, name := range StageOrder {
		assert.Contains(t, raw, name)
		assert.Contains(t, descriptions, name)
	}
	assert.Len(t, raw, len(StageOrder))

	// The served defaults must resolve back to the built-in defaults.
	cfg, err := ParseConfig(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
