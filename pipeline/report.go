package pipeline

import (
	"github.com/prepio/janitor/dataset"
)

// Stats maps stage names to the structured metrics each executed stage
// recorded. Skipped and disabled stages leave no entry.
type Stats map[string]any

// Report is the audit trail returned alongside the processed dataset:
// an ordered, append-only log of every corrective action, per-stage stats,
// and a final dataset summary.
type Report struct {
	Log              []string    `json:"preprocessing_log"`
	Stats            Stats       `json:"preprocessing_stats"`
	FinalDatasetInfo DatasetInfo `json:"final_dataset_info"`
}

// DatasetInfo summarizes the shape and typing of the dataset a pipeline run
// ended with.
type DatasetInfo struct {
	Shape              [2]int            `json:"shape"` // rows, columns
	Columns            []string          `json:"columns"`
	NumericColumns     []string          `json:"numeric_columns"`
	CategoricalColumns []string          `json:"categorical_columns"`
	DatetimeColumns    []string          `json:"datetime_columns"`
	MissingValues      int               `json:"missing_values"`
	DataTypes          map[string]string `json:"data_types"`
}

// MissingValuesStats records the imputation stage outcome.
type MissingValuesStats struct {
	Before         int `json:"before"`
	After          int `json:"after"`
	ColumnsDropped int `json:"columns_dropped"`
}

// DuplicatesStats records the deduplication stage outcome.
type DuplicatesStats struct {
	BeforeCount int `json:"before_count"`
	AfterCount  int `json:"after_count"`
	Removed     int `json:"removed"`
}

// InvalidDataStats records how many cell values were corrected.
type InvalidDataStats struct {
	InvalidValuesFixed int `json:"invalid_values_fixed"`
}

// DataTypeMismatchStats records how many columns changed type.
type DataTypeMismatchStats struct {
	ColumnsConverted int `json:"columns_converted"`
}

// InconsistentFormatsStats records how many columns matched a conditional
// normalization heuristic.
type InconsistentFormatsStats struct {
	ColumnsFixed int `json:"columns_fixed"`
}

// OutliersStats records how many rows the anomaly detector flagged.
type OutliersStats struct {
	OutliersDetected int    `json:"outliers_detected"`
	Method           string `json:"method"`
}

// CardinalityStats records which columns had their cardinality reduced.
type CardinalityStats struct {
	HighCardinalityColumns int      `json:"high_cardinality_columns"`
	ColumnsModified        []string `json:"columns_modified"`
}

// FeatureRemovalStats records columns dropped by the variance and
// correlation stages.
type FeatureRemovalStats struct {
	FeaturesRemoved int      `json:"features_removed"`
	RemovedFeatures []string `json:"removed_features"`
}

// MeanMedianDriftStats records skewed columns. TransformedColumns lists
// every column whose drift crossed the threshold, including columns with
// non-positive values that were flagged but left untransformed.
type MeanMedianDriftStats struct {
	ColumnsWithDrift   int      `json:"columns_with_drift"`
	TransformedColumns []string `json:"transformed_columns"`
}

// RangeViolationsStats records the total count of capped values.
type RangeViolationsStats struct {
	ViolationsFixed int `json:"violations_fixed"`
}

// ClassImbalanceStats records an oversampling run. The sample counts are
// keyed as shapes in the serialized report.
type ClassImbalanceStats struct {
	OriginalRatio   float64 `json:"original_ratio"`
	Method          string  `json:"method"`
	OriginalSamples int     `json:"original_shape"`
	NewSamples      int     `json:"new_shape"`
}

// SummaryStats aggregates the run under the "summary" stats key.
type SummaryStats struct {
	OriginalShape      [2]int `json:"original_shape"`
	FinalShape         [2]int `json:"final_shape"`
	RowsChanged        int    `json:"rows_changed"`
	ColumnsChanged     int    `json:"columns_changed"`
	PreprocessingSteps int    `json:"preprocessing_steps"`
	TotalChanges       int    `json:"total_changes"`
}

// datasetInfo builds the final summary block from a dataset and its
// classification.
func datasetInfo(ds *dataset.Dataset, class dataset.Classification) DatasetInfo {
	return DatasetInfo{
		Shape:              [2]int{ds.Len(), ds.Width()},
		Columns:            ds.Columns(),
		NumericColumns:     class.Numeric,
		CategoricalColumns: class.Categorical,
		DatetimeColumns:    class.Datetime,
		MissingValues:      ds.MissingCells(),
		DataTypes:          ds.DataTypes(),
	}
}
