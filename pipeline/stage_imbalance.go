package pipeline

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/prepio/janitor/dataset"
	jerrors "github.com/prepio/janitor/internal/errors"
	"github.com/prepio/janitor/internal/ml"
	"github.com/prepio/janitor/internal/series"
)

// maxLabelCardinality is the distinct-value ceiling under which a numeric
// target still counts as a class label.
const maxLabelCardinality = 10

// imbalanceRatioFloor triggers oversampling when minority/majority falls
// below it.
const imbalanceRatioFloor = 0.5

// runClassImbalance balances the target classes by synthesizing minority
// samples along line segments between nearest minority neighbors. The
// interpolation operates on numeric vectors, so categorical feature columns
// are one-hot expanded first; the balanced dataset keeps that encoded
// feature set. This stage runs last because every prior stage may have
// changed which columns exist and how they are typed.
func runClassImbalance(ctx *runContext) (*Outcome, error) {
	ds := ctx.ds
	if ctx.target == "" || !ds.HasColumn(ctx.target) {
		return &Outcome{}, nil
	}
	targetCol, _ := ds.Column(ctx.target)

	labels, ok, err := classLabels(targetCol)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Outcome{}, nil
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[l]++
	}
	if len(counts) < 2 {
		return &Outcome{}, nil
	}
	minority, majority := -1, 0
	for _, c := range counts {
		if minority < 0 || c < minority {
			minority = c
		}
		if c > majority {
			majority = c
		}
	}
	ratio := float64(minority) / float64(majority)
	if ratio >= imbalanceRatioFloor {
		return &Outcome{}, nil
	}

	if len(ctx.class.Datetime) > 0 {
		return nil, jerrors.NewStageError(StageClassImbalance, "datetime feature columns are not supported for oversampling")
	}

	featureNames, features, err := encodeFeatures(ds, ctx.class)
	if err != nil {
		return nil, err
	}

	smote := &ml.SMOTE{}
	outFeatures, outLabels, err := smote.Resample(features, labels)
	if err != nil {
		return nil, jerrors.NewStageError(StageClassImbalance, err.Error())
	}

	balanced, err := rebuildDataset(featureNames, outFeatures, ctx.target, targetCol.Kind(), outLabels, ctx)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Dataset:    balanced,
		Reclassify: true,
		Log: []string{fmt.Sprintf(
			"Applied SMOTE to balance target variable. New shape: (%d, %d)",
			balanced.Len(), balanced.Width())},
		Stats: ClassImbalanceStats{
			OriginalRatio:   ratio,
			Method:          "smote",
			OriginalSamples: len(labels),
			NewSamples:      len(outLabels),
		},
	}, nil
}

// classLabels renders the target column as class labels. A numeric target
// only qualifies when its distinct-value count is at most
// maxLabelCardinality; anything else means the stage does not apply.
func classLabels(col *series.Series) ([]string, bool, error) {
	if col.NullCount() > 0 {
		return nil, false, jerrors.NewColumnError(StageClassImbalance, col.Name(), "target column contains missing values")
	}
	labels := make([]string, col.Len())
	distinct := make(map[string]bool)
	for i := range labels {
		labels[i] = col.ValueString(i)
		distinct[labels[i]] = true
	}
	if col.Kind() == series.KindFloat && len(distinct) > maxLabelCardinality {
		return nil, false, nil
	}
	if col.Kind() == series.KindDatetime {
		return nil, false, nil
	}
	return labels, true, nil
}

// encodeFeatures builds the numeric feature matrix: numeric columns pass
// through in place, then each categorical column expands into indicator
// columns named <column>_<value>, with the first category (sorted) dropped
// as the reference level.
func encodeFeatures(ds *dataset.Dataset, class dataset.Classification) ([]string, [][]float64, error) {
	rows := ds.Len()
	var names []string
	var columns [][]float64

	for _, name := range class.Numeric {
		col, _ := ds.Column(name)
		values, valid := col.Floats()
		for i := range values {
			if !valid[i] {
				return nil, nil, jerrors.NewColumnError(StageClassImbalance, name, "feature columns contain missing values")
			}
		}
		names = append(names, name)
		columns = append(columns, values)
	}

	for _, name := range class.Categorical {
		col, _ := ds.Column(name)
		values, valid := col.Strings()
		distinct := make(map[string]bool)
		for i, v := range values {
			if !valid[i] {
				return nil, nil, jerrors.NewColumnError(StageClassImbalance, name, "feature columns contain missing values")
			}
			distinct[v] = true
		}
		categories := make([]string, 0, len(distinct))
		for v := range distinct {
			categories = append(categories, v)
		}
		sort.Strings(categories)
		// Drop the first category as the reference level.
		for _, category := range categories[1:] {
			indicator := make([]float64, rows)
			for i, v := range values {
				if v == category {
					indicator[i] = 1
				}
			}
			names = append(names, name+"_"+category)
			columns = append(columns, indicator)
		}
	}

	features := make([][]float64, rows)
	for i := range features {
		features[i] = make([]float64, len(columns))
		for j := range columns {
			features[i][j] = columns[j][i]
		}
	}
	return names, features, nil
}

// rebuildDataset assembles the balanced dataset: encoded feature columns in
// order, then the target restored to its original kind.
func rebuildDataset(featureNames []string, features [][]float64, target string, targetKind series.Kind, labels []string, ctx *runContext) (*dataset.Dataset, error) {
	cols := make([]*series.Series, 0, len(featureNames)+1)
	for j, name := range featureNames {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][j]
		}
		cols = append(cols, series.NewFloat(name, values, nil, ctx.mem))
	}

	if targetKind == series.KindFloat {
		values := make([]float64, len(labels))
		for i, l := range labels {
			f, err := strconv.ParseFloat(l, 64)
			if err != nil {
				return nil, jerrors.NewColumnError(StageClassImbalance, target, "failed to restore numeric target")
			}
			values[i] = f
		}
		cols = append(cols, series.NewFloat(target, values, nil, ctx.mem))
	} else {
		cols = append(cols, series.NewString(target, labels, nil, ctx.mem))
	}

	return dataset.New(cols...)
}
