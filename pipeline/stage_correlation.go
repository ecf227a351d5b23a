package pipeline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// runFeatureCorrelation drops numeric columns involved in a highly
// correlated pair. Only the upper triangle of the absolute Pearson matrix
// is inspected: column j is marked when any earlier column i<j correlates
// with it above the threshold, and all marked columns are dropped in one
// batch without re-evaluating the matrix. The single-pass marking can prune
// more columns than an iterative re-evaluation would; that conservative
// behavior is intentional and keeps the recorded stats stable.
func runFeatureCorrelation(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.FeatureCorrelation
	ds := ctx.ds
	numeric := ctx.class.Numeric

	var removed []string
	if len(numeric) > 1 {
		columns := make([][]float64, len(numeric))
		masks := make([][]bool, len(numeric))
		for j, name := range numeric {
			col, _ := ds.Column(name)
			columns[j], masks[j] = col.Floats()
		}

		for j := 1; j < len(numeric); j++ {
			for i := 0; i < j; i++ {
				if pairwiseAbsCorrelation(columns[i], masks[i], columns[j], masks[j]) > cfg.Threshold {
					removed = append(removed, numeric[j])
					break
				}
			}
		}
	}

	var logLines []string
	if len(removed) > 0 {
		ds = ds.Drop(removed...)
		logLines = append(logLines, fmt.Sprintf("Removed %d highly correlated features: %v", len(removed), removed))
	}

	return &Outcome{
		Dataset:    ds,
		Reclassify: true,
		Log:        logLines,
		Stats: FeatureRemovalStats{
			FeaturesRemoved: len(removed),
			RemovedFeatures: removed,
		},
	}, nil
}

// pairwiseAbsCorrelation computes |Pearson r| over rows observed in both
// columns. Pairs with fewer than two complete observations, or a constant
// side, contribute zero correlation.
func pairwiseAbsCorrelation(a []float64, avalid []bool, b []float64, bvalid []bool) float64 {
	var x, y []float64
	for i := range a {
		if avalid[i] && bvalid[i] {
			x = append(x, a[i])
			y = append(y, b[i])
		}
	}
	if len(x) < 2 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return math.Abs(r)
}
