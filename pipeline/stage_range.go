package pipeline

import (
	"fmt"

	"github.com/prepio/janitor/internal/mathutil"
	"github.com/prepio/janitor/internal/series"
	"gonum.org/v1/gonum/stat"
)

// runRangeViolations clamps numeric values to mean±3σ bounds per column.
// Violating values are capped at the nearest bound rather than removed, so
// the row count is preserved.
func runRangeViolations(ctx *runContext) (*Outcome, error) {
	ds := ctx.ds
	total := 0
	var logLines []string

	for _, name := range ctx.class.Numeric {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Floats()
		observed := mathutil.Compact(values, valid)
		if len(observed) < 2 {
			continue
		}
		mean := stat.Mean(observed, nil)
		std := stat.StdDev(observed, nil)
		lower := mean - 3*std
		upper := mean + 3*std

		violations := 0
		for i, v := range values {
			if !valid[i] {
				continue
			}
			if v < lower || v > upper {
				values[i] = mathutil.Clamp(v, lower, upper)
				violations++
			}
		}
		if violations == 0 {
			continue
		}
		var err error
		ds, err = ds.SetColumn(series.NewFloat(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}
		total += violations
		logLines = append(logLines, fmt.Sprintf("Fixed %d range violations in %s", violations, name))
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats:   RangeViolationsStats{ViolationsFixed: total},
	}, nil
}
