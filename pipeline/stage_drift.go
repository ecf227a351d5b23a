package pipeline

import (
	"fmt"
	"math"

	"github.com/prepio/janitor/internal/mathutil"
	"github.com/prepio/janitor/internal/series"
	"gonum.org/v1/gonum/stat"
)

// runMeanMedianDrift measures |mean−median|/|mean| per numeric column as a
// skewness proxy. Columns crossing the threshold get a log(1+x) transform
// when all values are present and strictly positive; columns that cross the
// threshold but contain non-positive or missing values are flagged in the
// stats and left untransformed, since no safe log transform exists without
// a shift.
func runMeanMedianDrift(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.MeanMedianDrift
	ds := ctx.ds
	var flagged []string
	var logLines []string

	for _, name := range ctx.class.Numeric {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Floats()
		observed := mathutil.Compact(values, valid)
		if len(observed) == 0 {
			continue
		}
		mean := stat.Mean(observed, nil)
		if mean == 0 {
			continue
		}
		median := mathutil.Median(observed)
		drift := math.Abs(mean-median) / math.Abs(mean)
		if drift <= cfg.Threshold {
			continue
		}
		flagged = append(flagged, name)

		if !strictlyPositive(values, valid) {
			continue
		}
		for i := range values {
			values[i] = math.Log1p(values[i])
		}
		var err error
		ds, err = ds.SetColumn(series.NewFloat(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}
		logLines = append(logLines, fmt.Sprintf(
			"Applied log transformation to %s due to high mean-median drift (%.2f%%)", name, drift*100))
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats: MeanMedianDriftStats{
			ColumnsWithDrift:   len(flagged),
			TransformedColumns: flagged,
		},
	}, nil
}

// strictlyPositive requires every row to be non-null and greater than zero;
// a single null blocks the transform the same way a non-positive value does.
func strictlyPositive(values []float64, valid []bool) bool {
	for i, v := range values {
		if !valid[i] || v <= 0 {
			return false
		}
	}
	return true
}
