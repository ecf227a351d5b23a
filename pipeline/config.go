// Package pipeline implements the automated data-quality and preprocessing
// engine: twelve independently configurable cleaning stages executed in a
// fixed order over a dataset, producing a cleaned dataset plus an audit
// report of what changed and why.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical stage names in execution order. Order matters: later stages
// depend on column typing and classification decisions made by earlier ones
// (outlier detection needs numeric coercion committed, class balancing needs
// the final cleaned feature set).
const (
	StageMissingValues       = "missing_values"
	StageDuplicates          = "duplicates"
	StageInvalidData         = "invalid_data"
	StageDataTypeMismatch    = "data_type_mismatch"
	StageInconsistentFormats = "inconsistent_formats"
	StageOutliers            = "outliers"
	StageCardinality         = "cardinality"
	StageLowVariance         = "low_variance"
	StageFeatureCorrelation  = "feature_correlation"
	StageMeanMedianDrift     = "mean_median_drift"
	StageRangeViolations     = "range_violations"
	StageClassImbalance      = "class_imbalance"
)

// StageOrder lists the twelve stages in their fixed execution order.
var StageOrder = []string{
	StageMissingValues,
	StageDuplicates,
	StageInvalidData,
	StageDataTypeMismatch,
	StageInconsistentFormats,
	StageOutliers,
	StageCardinality,
	StageLowVariance,
	StageFeatureCorrelation,
	StageMeanMedianDrift,
	StageRangeViolations,
	StageClassImbalance,
}

// Mode is the tagged state of a single stage's raw setting.
type Mode int

const (
	// DefaultEnabled runs the stage with built-in default parameters.
	DefaultEnabled Mode = iota
	// Disabled makes the stage a complete no-op: dataset untouched, no log
	// entries, no stats entry.
	Disabled
	// Configured runs the stage with explicit parameters merged over defaults.
	Configured
)

// Setting is the raw, untyped per-stage configuration value: false, true,
// or a parameter object. It is resolved once, at pipeline start, into the
// strongly-typed Config record.
type Setting struct {
	Mode   Mode
	Params map[string]any
}

// Per-stage parameter records. Zero values are never used directly; build
// from DefaultConfig and override.

// MissingValuesConfig controls missing-value imputation.
type MissingValuesConfig struct {
	Enabled             bool
	Method              string  // mice, median, mean, mode
	MaxMissingThreshold float64 // drop columns above this missing fraction
}

// DuplicatesConfig controls duplicate-record removal.
type DuplicatesConfig struct {
	Enabled bool
	Method  string
	Keep    string // first or last
}

// InvalidDataConfig controls statistical invalid-data correction.
type InvalidDataConfig struct {
	Enabled         bool
	Method          string
	ConfidenceLevel float64 // p-value gate for the uniformity test
}

// DataTypeMismatchConfig controls type coercion of string columns.
type DataTypeMismatchConfig struct {
	Enabled     bool
	Method      string
	AutoConvert bool
}

// InconsistentFormatsConfig controls text-format normalization.
type InconsistentFormatsConfig struct {
	Enabled bool
	Method  string
	AutoFix bool
}

// OutliersConfig controls isolation-forest outlier handling.
type OutliersConfig struct {
	Enabled       bool
	Method        string
	Contamination float64 // expected anomalous row fraction
}

// CardinalityConfig controls categorical cardinality reduction.
type CardinalityConfig struct {
	Enabled        bool
	Method         string
	MaxCardinality int
}

// LowVarianceConfig controls low-variance feature removal.
type LowVarianceConfig struct {
	Enabled   bool
	Method    string
	Threshold float64
}

// FeatureCorrelationConfig controls correlated-feature pruning.
type FeatureCorrelationConfig struct {
	Enabled   bool
	Method    string
	Threshold float64
}

// MeanMedianDriftConfig controls skew correction via log transform.
type MeanMedianDriftConfig struct {
	Enabled   bool
	Method    string
	Threshold float64 // relative |mean-median|/|mean| drift
}

// RangeViolationsConfig controls mean±3σ value capping.
type RangeViolationsConfig struct {
	Enabled    bool
	Method     string
	AutoBounds bool
}

// ClassImbalanceConfig controls minority-class oversampling.
type ClassImbalanceConfig struct {
	Enabled     bool
	Method      string
	TargetRatio string
}

// Config is the fully resolved pipeline configuration: one typed record per
// stage.
type Config struct {
	MissingValues       MissingValuesConfig
	Duplicates          DuplicatesConfig
	InvalidData         InvalidDataConfig
	DataTypeMismatch    DataTypeMismatchConfig
	InconsistentFormats InconsistentFormatsConfig
	Outliers            OutliersConfig
	Cardinality         CardinalityConfig
	LowVariance         LowVarianceConfig
	FeatureCorrelation  FeatureCorrelationConfig
	MeanMedianDrift     MeanMedianDriftConfig
	RangeViolations     RangeViolationsConfig
	ClassImbalance      ClassImbalanceConfig
}

// DefaultConfig returns the configuration with every stage enabled and its
// documented default parameters.
func DefaultConfig() Config {
	return Config{
		MissingValues:       MissingValuesConfig{Enabled: true, Method: "mice", MaxMissingThreshold: 0.5},
		Duplicates:          DuplicatesConfig{Enabled: true, Method: "hash_fingerprint", Keep: "first"},
		InvalidData:         InvalidDataConfig{Enabled: true, Method: "statistical_tests", ConfidenceLevel: 0.05},
		DataTypeMismatch:    DataTypeMismatchConfig{Enabled: true, Method: "schema_enforcement", AutoConvert: true},
		InconsistentFormats: InconsistentFormatsConfig{Enabled: true, Method: "regex_validation", AutoFix: true},
		Outliers:            OutliersConfig{Enabled: true, Method: "isolation_forest", Contamination: 0.1},
		Cardinality:         CardinalityConfig{Enabled: true, Method: "hashed_counting", MaxCardinality: 100},
		LowVariance:         LowVarianceConfig{Enabled: true, Method: "variance_threshold", Threshold: 0.01},
		FeatureCorrelation:  FeatureCorrelationConfig{Enabled: true, Method: "pearson", Threshold: 0.9},
		MeanMedianDrift:     MeanMedianDriftConfig{Enabled: true, Method: "percentage_drift", Threshold: 0.2},
		RangeViolations:     RangeViolationsConfig{Enabled: true, Method: "auto_bounds", AutoBounds: true},
		ClassImbalance:      ClassImbalanceConfig{Enabled: true, Method: "smote", TargetRatio: "auto"},
	}
}

// ParseConfig resolves a raw stage-name → setting mapping into a Config.
// Absent stages default to enabled with built-in parameters; false disables
// a stage; a parameter object merges over the defaults (explicit keys win).
// Unknown stage names are ignored so partial configs from older clients
// keep working.
func ParseConfig(raw map[string]any) (Config, error) {
	cfg := DefaultConfig()
	for name, value := range raw {
		setting, err := settingOf(value)
		if err != nil {
			return Config{}, fmt.Errorf("stage %q: %w", name, err)
		}
		if err := cfg.apply(name, setting); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func settingOf(value any) (Setting, error) {
	switch v := value.(type) {
	case nil:
		return Setting{Mode: DefaultEnabled}, nil
	case bool:
		if v {
			return Setting{Mode: DefaultEnabled}, nil
		}
		return Setting{Mode: Disabled}, nil
	case map[string]any:
		return Setting{Mode: Configured, Params: v}, nil
	default:
		return Setting{}, fmt.Errorf("setting must be a boolean or a parameter object, got %T", value)
	}
}

func (c *Config) apply(name string, s Setting) error {
	switch name {
	case StageMissingValues:
		c.MissingValues.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.MissingValues.Method = stringParam(s.Params, "method", c.MissingValues.Method)
			c.MissingValues.MaxMissingThreshold = floatParam(s.Params, "max_missing_threshold", c.MissingValues.MaxMissingThreshold)
		}
	case StageDuplicates:
		c.Duplicates.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.Duplicates.Method = stringParam(s.Params, "method", c.Duplicates.Method)
			c.Duplicates.Keep = stringParam(s.Params, "keep", c.Duplicates.Keep)
		}
	case StageInvalidData:
		c.InvalidData.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.InvalidData.Method = stringParam(s.Params, "method", c.InvalidData.Method)
			c.InvalidData.ConfidenceLevel = floatParam(s.Params, "confidence_level", c.InvalidData.ConfidenceLevel)
		}
	case StageDataTypeMismatch:
		c.DataTypeMismatch.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.DataTypeMismatch.Method = stringParam(s.Params, "method", c.DataTypeMismatch.Method)
			c.DataTypeMismatch.AutoConvert = boolParam(s.Params, "auto_convert", c.DataTypeMismatch.AutoConvert)
		}
	case StageInconsistentFormats:
		c.InconsistentFormats.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.InconsistentFormats.Method = stringParam(s.Params, "method", c.InconsistentFormats.Method)
			c.InconsistentFormats.AutoFix = boolParam(s.Params, "auto_fix", c.InconsistentFormats.AutoFix)
		}
	case StageOutliers:
		c.Outliers.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.Outliers.Method = stringParam(s.Params, "method", c.Outliers.Method)
			c.Outliers.Contamination = floatParam(s.Params, "contamination", c.Outliers.Contamination)
		}
	case StageCardinality:
		c.Cardinality.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.Cardinality.Method = stringParam(s.Params, "method", c.Cardinality.Method)
			c.Cardinality.MaxCardinality = intParam(s.Params, "max_cardinality", c.Cardinality.MaxCardinality)
		}
	case StageLowVariance:
		c.LowVariance.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.LowVariance.Method = stringParam(s.Params, "method", c.LowVariance.Method)
			c.LowVariance.Threshold = floatParam(s.Params, "threshold", c.LowVariance.Threshold)
		}
	case StageFeatureCorrelation:
		c.FeatureCorrelation.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.FeatureCorrelation.Method = stringParam(s.Params, "method", c.FeatureCorrelation.Method)
			c.FeatureCorrelation.Threshold = floatParam(s.Params, "threshold", c.FeatureCorrelation.Threshold)
		}
	case StageMeanMedianDrift:
		c.MeanMedianDrift.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.MeanMedianDrift.Method = stringParam(s.Params, "method", c.MeanMedianDrift.Method)
			c.MeanMedianDrift.Threshold = floatParam(s.Params, "threshold", c.MeanMedianDrift.Threshold)
		}
	case StageRangeViolations:
		c.RangeViolations.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.RangeViolations.Method = stringParam(s.Params, "method", c.RangeViolations.Method)
			c.RangeViolations.AutoBounds = boolParam(s.Params, "auto_bounds", c.RangeViolations.AutoBounds)
		}
	case StageClassImbalance:
		c.ClassImbalance.Enabled = s.Mode != Disabled
		if s.Mode == Configured {
			c.ClassImbalance.Method = stringParam(s.Params, "method", c.ClassImbalance.Method)
			c.ClassImbalance.TargetRatio = stringParam(s.Params, "target_ratio", c.ClassImbalance.TargetRatio)
		}
	}
	return nil
}

// Validate checks every threshold is inside its sane range.
func (c *Config) Validate() error {
	if t := c.MissingValues.MaxMissingThreshold; t < 0 || t > 1 {
		return fmt.Errorf("missing_values.max_missing_threshold must be in [0,1], got %g", t)
	}
	if k := c.Duplicates.Keep; k != "first" && k != "last" {
		return fmt.Errorf("duplicates.keep must be \"first\" or \"last\", got %q", k)
	}
	if l := c.InvalidData.ConfidenceLevel; l <= 0 || l >= 1 {
		return fmt.Errorf("invalid_data.confidence_level must be in (0,1), got %g", l)
	}
	if ct := c.Outliers.Contamination; ct <= 0 || ct > 0.5 {
		return fmt.Errorf("outliers.contamination must be in (0,0.5], got %g", ct)
	}
	if m := c.Cardinality.MaxCardinality; m <= 0 {
		return fmt.Errorf("cardinality.max_cardinality must be positive, got %d", m)
	}
	if t := c.LowVariance.Threshold; t < 0 {
		return fmt.Errorf("low_variance.threshold must be non-negative, got %g", t)
	}
	if t := c.FeatureCorrelation.Threshold; t <= 0 || t > 1 {
		return fmt.Errorf("feature_correlation.threshold must be in (0,1], got %g", t)
	}
	if t := c.MeanMedianDrift.Threshold; t <= 0 {
		return fmt.Errorf("mean_median_drift.threshold must be positive, got %g", t)
	}
	return nil
}

// LoadFromJSON resolves a JSON configuration document.
func LoadFromJSON(data []byte) (Config, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return ParseConfig(raw)
}

// LoadFromFile resolves a configuration file (JSON or YAML, by extension).
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var raw map[string]any
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}
	return ParseConfig(raw)
}

// LoadFromEnv returns the default configuration with stages toggled by
// JANITOR_STAGE_<NAME>=true/false environment variables, e.g.
// JANITOR_STAGE_OUTLIERS=false.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	for _, name := range StageOrder {
		key := "JANITOR_STAGE_" + strings.ToUpper(name)
		val := os.Getenv(key)
		if val == "" {
			continue
		}
		if enabled, err := strconv.ParseBool(val); err == nil {
			if enabled {
				_ = cfg.apply(name, Setting{Mode: DefaultEnabled})
			} else {
				_ = cfg.apply(name, Setting{Mode: Disabled})
			}
		}
	}
	return cfg
}

// RawDefault renders the default configuration in its raw map form, as
// served by the configuration endpoint.
func RawDefault() map[string]any {
	return map[string]any{
		StageMissingValues:       map[string]any{"method": "mice", "max_missing_threshold": 0.5},
		StageDuplicates:          map[string]any{"method": "hash_fingerprint", "keep": "first"},
		StageInvalidData:         map[string]any{"method": "statistical_tests", "confidence_level": 0.05},
		StageDataTypeMismatch:    map[string]any{"method": "schema_enforcement", "auto_convert": true},
		StageInconsistentFormats: map[string]any{"method": "regex_validation", "auto_fix": true},
		StageOutliers:            map[string]any{"method": "isolation_forest", "contamination": 0.1},
		StageCardinality:         map[string]any{"method": "hashed_counting", "max_cardinality": 100},
		StageLowVariance:         map[string]any{"method": "variance_threshold", "threshold": 0.01},
		StageFeatureCorrelation:  map[string]any{"method": "pearson", "threshold": 0.9},
		StageMeanMedianDrift:     map[string]any{"method": "percentage_drift", "threshold": 0.2},
		StageRangeViolations:     map[string]any{"method": "auto_bounds", "auto_bounds": true},
		StageClassImbalance:      map[string]any{"method": "smote", "target_ratio": "auto"},
	}
}

// Descriptions maps each stage to the one-line summary served by the
// configuration endpoint.
func Descriptions() map[string]string {
	return map[string]string{
		StageMissingValues:       "Handle missing data using iterative multivariate imputation",
		StageDuplicates:          "Remove duplicate records using hashed row fingerprints",
		StageInvalidData:         "Fix invalid data using statistical tests (chi-square)",
		StageDataTypeMismatch:    "Fix data types using schema enforcement",
		StageInconsistentFormats: "Standardize formats using regex validation",
		StageOutliers:            "Handle outliers using an isolation forest",
		StageCardinality:         "Manage high cardinality using hashed distinct counting",
		StageLowVariance:         "Remove low variance features",
		StageFeatureCorrelation:  "Remove highly correlated features using Pearson correlation",
		StageMeanMedianDrift:     "Handle skewed distributions using mean-median drift analysis",
		StageRangeViolations:     "Cap range violations at mean±3σ bounds",
		StageClassImbalance:      "Balance classes using SMOTE oversampling",
	}
}

// Parameter coercion helpers. JSON decodes numbers as float64 and YAML as
// int; accept both for every numeric parameter.

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

func boolParam(params map[string]any, key string, fallback bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return fallback
}

func floatParam(params map[string]any, key string, fallback float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func intParam(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}
