// Package mathutil provides small numeric helpers shared by the
// preprocessing stages.
package mathutil

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to the inclusive range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Median returns the median of values. It sorts a copy; the input is not
// modified. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Compact returns the values at positions where valid is true.
func Compact[T any](values []T, valid []bool) []T {
	out := make([]T, 0, len(values))
	for i, v := range values {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}
