package pipeline

import (
	"fmt"

	"github.com/prepio/janitor/internal/mathutil"
	"gonum.org/v1/gonum/stat"
)

// runLowVariance drops numeric columns whose variance is at or below the
// threshold. Variances are computed over one snapshot of the column set and
// the drops applied in a single batch, so removal order cannot influence
// which columns qualify.
func runLowVariance(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.LowVariance
	ds := ctx.ds

	var removed []string
	for _, name := range ctx.class.Numeric {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Floats()
		observed := mathutil.Compact(values, valid)
		if len(observed) < 2 {
			removed = append(removed, name)
			continue
		}
		if stat.Variance(observed, nil) <= cfg.Threshold {
			removed = append(removed, name)
		}
	}

	var logLines []string
	if len(removed) > 0 {
		ds = ds.Drop(removed...)
		logLines = append(logLines, fmt.Sprintf("Removed %d low variance features: %v", len(removed), removed))
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
