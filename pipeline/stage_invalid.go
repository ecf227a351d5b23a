package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/prepio/janitor/internal/series"
	"gonum.org/v1/gonum/stat/distuv"
)

// rareValueFraction is the share of total rows below which a categorical
// value counts as rare enough to collapse into "Other". The chi-square
// uniformity test only gates whether collapsing is attempted at all; it
// does not influence this threshold.
const rareValueFraction = 0.001

// runInvalidData performs two independent checks: categorical columns whose
// value distribution is significantly non-uniform get their extremely rare
// values collapsed into "Other", and infinite numeric values are replaced
// with nulls for a later imputation pass to handle.
func runInvalidData(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.InvalidData
	ds := ctx.ds
	rows := ds.Len()
	fixed := 0
	var logLines []string

	for _, name := range ctx.class.Categorical {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Strings()
		counts := make(map[string]int)
		for i, v := range values {
			if valid[i] {
				counts[v]++
			}
		}
		if len(counts) < 2 {
			continue
		}
		if uniformityPValue(counts, rows) >= cfg.ConfidenceLevel {
			continue
		}
		rare := make(map[string]bool)
		for v, c := range counts {
			if float64(c) < float64(rows)*rareValueFraction {
				rare[v] = true
			}
		}
		if len(rare) == 0 {
			continue
		}
		for i, v := range values {
			if valid[i] && rare[v] {
				values[i] = "Other"
			}
		}
		var err error
		ds, err = ds.SetColumn(series.NewString(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}
		fixed += len(rare)
		logLines = append(logLines, fmt.Sprintf("Replaced %d rare values in %s with 'Other'", len(rare), name))
	}

	for _, name := range ctx.class.Numeric {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Floats()
		infs := 0
		for i, v := range values {
			if valid[i] && math.IsInf(v, 0) {
				valid[i] = false
				infs++
			}
		}
		if infs == 0 {
			continue
		}
		var err error
		ds, err = ds.SetColumn(series.NewFloat(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}
		fixed += infs
		logLines = append(logLines, fmt.Sprintf("Replaced %d infinite values in %s with null", infs, name))
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats:   InvalidDataStats{InvalidValuesFixed: fixed},
	}, nil
}

// uniformityPValue runs a chi-square goodness-of-fit test of the observed
// value frequencies against a uniform expected distribution over the same
// categories. The expected count per category uses the full row count, so
// null cells weigh against uniformity the same way the source logic did.
func uniformityPValue(counts map[string]int, rows int) float64 {
	k := len(counts)
	expected := float64(rows) / float64(k)
	if expected <= 0 {
		return 1
	}
	// Deterministic iteration keeps the statistic reproducible.
	values := make([]string, 0, k)
	for v := range counts {
		values = append(values, v)
	}
	sort.Strings(values)

	chi2 := 0.0
	for _, v := range values {
		d := float64(counts[v]) - expected
		chi2 += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(k - 1)}
	return 1 - dist.CDF(chi2)
}
