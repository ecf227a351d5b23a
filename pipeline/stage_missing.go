package pipeline

import (
	"fmt"
	"sort"

	"github.com/prepio/janitor/dataset"
	"github.com/prepio/janitor/internal/ml"
	"github.com/prepio/janitor/internal/series"
)

// runMissingValues drops columns whose missing fraction exceeds the
// configured threshold, then fills the remaining gaps: numeric columns via
// one batched iterative-imputation pass, categorical columns with their
// mode (falling back to "Unknown" when a surviving column is all null).
func runMissingValues(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.MissingValues
	ds := ctx.ds
	rows := ds.Len()
	before := ds.MissingCells()
	var logLines []string

	var dropped []string
	if rows > 0 {
		for _, name := range ds.Columns() {
			col, _ := ds.Column(name)
			if float64(col.NullCount())/float64(rows) > cfg.MaxMissingThreshold {
				dropped = append(dropped, name)
			}
		}
	}
	if len(dropped) > 0 {
		ds = ds.Drop(dropped...)
		logLines = append(logLines, fmt.Sprintf(
			"Dropped %d columns with >%.0f%% missing values: %v",
			len(dropped), cfg.MaxMissingThreshold*100, dropped))
	}

	// Column drops may have emptied a bucket; work from a fresh snapshot.
	class := dataset.Classify(ds, ctx.target)

	var numericMissing []string
	for _, name := range class.Numeric {
		if col, _ := ds.Column(name); col.NullCount() > 0 {
			numericMissing = append(numericMissing, name)
		}
	}
	if len(numericMissing) > 0 {
		var err error
		ds, err = imputeNumeric(ds, numericMissing, ctx)
		if err != nil {
			return nil, err
		}
		logLines = append(logLines, fmt.Sprintf(
			"Applied iterative imputation to %d numeric columns", len(numericMissing)))
	}

	categoricalFilled := 0
	for _, name := range class.Categorical {
		col, _ := ds.Column(name)
		if col.NullCount() == 0 {
			continue
		}
		values, valid := col.Strings()
		fill := modeValue(values, valid)
		for i := range values {
			if !valid[i] {
				values[i] = fill
			}
		}
		var err error
		ds, err = ds.SetColumn(series.NewString(name, values, nil, ctx.mem))
		if err != nil {
			return nil, err
		}
		categoricalFilled++
	}
	if categoricalFilled > 0 {
		logLines = append(logLines, fmt.Sprintf(
			"Applied mode imputation to %d categorical columns", categoricalFilled))
	}

	return &Outcome{
		Dataset:    ds,
		Reclassify: true,
		Log:        logLines,
		Stats: MissingValuesStats{
			Before:         before,
			After:          ds.MissingCells(),
			ColumnsDropped: len(dropped),
		},
	}, nil
}

// imputeNumeric runs one batched iterative-imputation pass over the numeric
// columns that have gaps; within the batch the columns predict each other
// and the fitted round-robin regressions fill the missing cells.
func imputeNumeric(ds *dataset.Dataset, columns []string, ctx *runContext) (*dataset.Dataset, error) {
	rows := ds.Len()
	data := make([][]float64, rows)
	missing := make([][]bool, rows)
	for i := range data {
		data[i] = make([]float64, len(columns))
		missing[i] = make([]bool, len(columns))
	}
	for j, name := range columns {
		col, _ := ds.Column(name)
		values, valid := col.Floats()
		for i := range values {
			data[i][j] = values[i]
			missing[i][j] = !valid[i]
		}
	}

	imputer := &ml.IterativeImputer{}
	imputer.Impute(data, missing)

	for j, name := range columns {
		values := make([]float64, rows)
		for i := range values {
			values[i] = data[i][j]
		}
		var err error
		ds, err = ds.SetColumn(series.NewFloat(name, values, nil, ctx.mem))
		if err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// modeValue returns the most frequent non-null value, breaking count ties
// on the smaller value for determinism. Returns "Unknown" when every value
// is null.
func modeValue(values []string, valid []bool) string {
	counts := make(map[string]int)
	for i, v := range values {
		if valid[i] {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return "Unknown"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
