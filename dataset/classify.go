package dataset

import (
	"github.com/prepio/janitor/internal/series"
)

// Classification partitions the dataset's columns into the three roles the
// pipeline stages operate on. It is an immutable snapshot: any stage that
// changes the column set or a column's kind must call Classify again rather
// than patching an existing value, so stale buckets cannot leak between
// stages.
type Classification struct {
	Numeric     []string
	Categorical []string
	Datetime    []string
}

// Classify inspects every column's kind and buckets its name. The target
// column, when set, is excluded from all buckets; stages never treat the
// label as a feature.
func Classify(d *Dataset, target string) Classification {
	var c Classification
	for _, name := range d.Columns() {
		if target != "" && name == target {
			continue
		}
		col, _ := d.Column(name)
		switch col.Kind() {
		case series.KindFloat:
			c.Numeric = append(c.Numeric, name)
		case series.KindDatetime:
			c.Datetime = append(c.Datetime, name)
		default:
			c.Categorical = append(c.Categorical, name)
		}
	}
	return c
}

// IsNumeric reports whether name is in the numeric bucket.
func (c Classification) IsNumeric(name string) bool {
	return contains(c.Numeric, name)
}

// IsCategorical reports whether name is in the categorical bucket.
func (c Classification) IsCategorical(name string) bool {
	return contains(c.Categorical, name)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
