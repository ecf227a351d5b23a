package pipeline

import (
	"fmt"
	"sort"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/prepio/janitor/internal/series"
)

// valueCount is one distinct categorical value with its occurrence count.
type valueCount struct {
	value string
	count int
}

// countDistinct tallies distinct non-null values using xxhash-keyed buckets,
// so wide high-cardinality columns avoid rehashing long strings on every
// probe. Collisions fall back to comparing the stored value.
func countDistinct(values []string, valid []bool) []valueCount {
	buckets := make(map[uint64][]*valueCount)
	var entries []*valueCount
	for i, v := range values {
		if !valid[i] {
			continue
		}
		h := xxhash.Sum64String(v)
		found := false
		for _, e := range buckets[h] {
			if e.value == v {
				e.count++
				found = true
				break
			}
		}
		if !found {
			e := &valueCount{value: v, count: 1}
			buckets[h] = append(buckets[h], e)
			entries = append(entries, e)
		}
	}
	out := make([]valueCount, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out
}

// runCardinality caps the distinct-value count of each categorical column:
// when a column exceeds the ceiling, only the top-N most frequent values
// survive and everything else is remapped to "Other".
func runCardinality(ctx *runContext) (*Outcome, error) {
	cfg := ctx.cfg.Cardinality
	ds := ctx.ds
	var modified []string
	var logLines []string

	for _, name := range ctx.class.Categorical {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values, valid := col.Strings()
		entries := countDistinct(values, valid)
		cardinality := len(entries)
		if cardinality <= cfg.MaxCardinality {
			continue
		}

		sort.Slice(entries, func(a, b int) bool {
			if entries[a].count != entries[b].count {
				return entries[a].count > entries[b].count
			}
			return entries[a].value < entries[b].value
		})
		top := make(map[string]bool, cfg.MaxCardinality)
		for _, e := range entries[:cfg.MaxCardinality] {
			top[e.value] = true
		}

		for i, v := range values {
			if valid[i] && !top[v] {
				values[i] = "Other"
			}
		}
		var err error
		ds, err = ds.SetColumn(series.NewString(name, values, valid, ctx.mem))
		if err != nil {
			return nil, err
		}

		newCol, _ := ds.Column(name)
		newValues, newValid := newCol.Strings()
		after := len(countDistinct(newValues, newValid))
		modified = append(modified, name)
		logLines = append(logLines, fmt.Sprintf("Reduced cardinality in %s from %d to %d", name, cardinality, after))
	}

	return &Outcome{
		Dataset: ds,
		Log:     logLines,
		Stats: CardinalityStats{
			HighCardinalityColumns: len(modified),
			ColumnsModified:        modified,
		},
	}, nil
}
