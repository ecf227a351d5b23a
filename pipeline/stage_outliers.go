package pipeline

import (
	"fmt"

	jerrors "github.com/prepio/janitor/internal/errors"
	"github.com/prepio/janitor/internal/mathutil"
	"github.com/prepio/janitor/internal/ml"
	"github.com/prepio/janitor/internal/series"
)

// runOutliers fits an isolation forest over all numeric columns jointly and
// replaces every numeric value of a flagged row with that column's median.
// Rows are never dropped, so downstream stages see an unchanged row count.
func runOutliers(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.Outliers
	ds := ctx.ds
	numeric := ctx.class.Numeric

	if len(numeric) == 0 || ds.Len() == 0 {
		return &Outcome{Stats: OutliersStats{Method: cfg.Method}}, nil
	}

	data := make([][]float64, ds.Len())
	for i := range data {
		data[i] = make([]float64, len(numeric))
	}
	for j, name := range numeric {
		col, _ := ds.Column(name)
		values, valid := col.Floats()
		for i := range values {
			if !valid[i] {
				return nil, jerrors.NewColumnError(StageOutliers, name, "numeric data contains missing values")
			}
			data[i][j] = values[i]
		}
	}

	forest := &ml.IsolationForest{Contamination: cfg.Contamination}
	flagged := forest.FitPredict(data)

	count := 0
	for _, f := range flagged {
		if f {
			count++
		}
	}

	var logLines []string
	if count > 0 {
		for _, name := range numeric {
			col, _ := ds.Column(name)
			values, valid := col.Floats()
			median := mathutil.Median(mathutil.Compact(values, valid))
			for i := range values {
				if flagged[i] {
					values[i] = median
				}
			}
			var err error
			ds, err = ds.SetColumn(series.NewFloat(name, values, valid, ctx.mem))
			if err != nil {
				return nil, err
			}
		}
		logLines = append(logLines, fmt.Sprintf("Handled %d outlier records using isolation forest", count))
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats:   OutliersStats{OutliersDetected: count, Method: cfg.Method},
	}, nil
}
