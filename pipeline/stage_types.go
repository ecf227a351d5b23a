package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prepio/janitor/internal/series"
)

// coercionThreshold is the fraction of non-null values that must convert
// successfully before a column commits to the new type.
const coercionThreshold = 0.8

// datetimeLayouts are tried per value, most common first.
var datetimeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
}

// runDataTypeMismatch attempts numeric, then datetime, coercion on every
// string column except the target. A column converts when at least 80% of
// its non-null values parse; unparseable values become nulls. This stage
// must run before the outlier, variance, and correlation stages, which all
// require correctly typed numeric columns.
func runDataTypeMismatch(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.DataTypeMismatch
	ds := ctx.ds
	converted := 0
	var logLines []string

	if !cfg.AutoConvert {
		return &Outcome{Stats: DataTypeMismatchStats{}}, nil
	}

	for _, name := range ds.Columns() {
		if name == ctx.target {
			continue
		}
		col, _ := ds.Column(name)
		if col.Kind() != series.KindString {
			continue
		}
		values, valid := col.Strings()
		nonNull := 0
		for _, v := range valid {
			if v {
				nonNull++
			}
		}
		if nonNull == 0 {
			continue
		}

		if floats, fvalid, ok := coerceNumeric(values, valid, nonNull); ok {
			var err error
			ds, err = ds.SetColumn(series.NewFloat(name, floats, fvalid, ctx.mem))
			if err != nil {
				return nil, err
			}
			converted++
			logLines = append(logLines, fmt.Sprintf("Converted %s from string to numeric", name))
			continue
		}

		if times, tvalid, ok := coerceDatetime(values, valid, nonNull); ok {
			var err error
			ds, err = ds.SetColumn(series.NewDatetime(name, times, tvalid, ctx.mem))
			if err != nil {
				return nil, err
			}
			converted++
			logLines = append(logLines, fmt.Sprintf("Converted %s from string to datetime", name))
		}
	}

	return &Outcome{
		Dataset:    ds,
		Reclassify: true,
		Log:        logLines,
		Stats:      DataTypeMismatchStats{ColumnsConverted: converted},
	}, nil
}

func coerceNumeric(values []string, valid []bool, nonNull int) ([]float64, []bool, bool) {
	floats := make([]float64, len(values))
	fvalid := make([]bool, len(values))
	parsed := 0
	for i, v := range values {
		if !valid[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		floats[i] = f
		fvalid[i] = true
		parsed++
	}
	return floats, fvalid, float64(parsed)/float64(nonNull) >= coercionThreshold
}

func coerceDatetime(values []string, valid []bool, nonNull int) ([]time.Time, []bool, bool) {
	times := make([]time.Time, len(values))
	tvalid := make([]bool, len(values))
	parsed := 0
	for i, v := range values {
		if !valid[i] {
			continue
		}
		if t, ok := parseDatetime(strings.TrimSpace(v)); ok {
			times[i] = t
			tvalid[i] = true
			parsed++
		}
	}
	return times, tvalid, float64(parsed)/float64(nonNull) >= coercionThreshold
}

func parseDatetime(v string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
