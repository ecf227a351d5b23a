// Package series provides null-aware column storage with an Apache Arrow backend.
package series

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Kind identifies the logical role of a column. It is derived from the
// physical Arrow type, not from how the values were declared on input.
type Kind int

const (
	// KindString holds categorical (free text) values.
	KindString Kind = iota
	// KindFloat holds numeric values as float64.
	KindFloat
	// KindDatetime holds timestamps with microsecond precision.
	KindDatetime
)

// String returns the dtype name reported in dataset summaries.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float64"
	case KindDatetime:
		return "timestamp"
	default:
		return "string"
	}
}

// timestampType is the Arrow type used for all datetime columns.
var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond}

// Series represents a single named column backed by an Arrow array.
// A Series is immutable; transformations build a replacement via the
// New* constructors and swap it into the owning dataset.
type Series struct {
	name  string
	kind  Kind
	array arrow.Array
}

// NewString creates a string Series. valid marks non-null positions; a nil
// valid slice means every value is present.
func NewString(name string, values []string, valid []bool, mem memory.Allocator) *Series {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	builder := array.NewStringBuilder(mem)
	defer builder.Release()
	for i, v := range values {
		if valid != nil && !valid[i] {
			builder.AppendNull()
			continue
		}
		builder.Append(v)
	}
	return &Series{name: name, kind: KindString, array: builder.NewArray()}
}

// NewFloat creates a numeric Series.
func NewFloat(name string, values []float64, valid []bool, mem memory.Allocator) *Series {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	builder := array.NewFloat64Builder(mem)
	defer builder.Release()
	for i, v := range values {
		if valid != nil && !valid[i] {
			builder.AppendNull()
			continue
		}
		builder.Append(v)
	}
	return &Series{name: name, kind: KindFloat, array: builder.NewArray()}
}

// NewDatetime creates a timestamp Series.
func NewDatetime(name string, values []time.Time, valid []bool, mem memory.Allocator) *Series {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	builder := array.NewTimestampBuilder(mem, timestampType)
	defer builder.Release()
	for i, v := range values {
		if valid != nil && !valid[i] {
			builder.AppendNull()
			continue
		}
		builder.Append(arrow.Timestamp(v.UnixMicro()))
	}
	return &Series{name: name, kind: KindDatetime, array: builder.NewArray()}
}

// Name returns the column name.
func (s *Series) Name() string { return s.name }

// Kind returns the logical column kind.
func (s *Series) Kind() Kind { return s.kind }

// Len returns the number of rows.
func (s *Series) Len() int { return s.array.Len() }

// NullCount returns the number of null positions.
func (s *Series) NullCount() int { return s.array.NullN() }

// IsNull reports whether the value at index is null.
func (s *Series) IsNull(index int) bool { return s.array.IsNull(index) }

// DataType returns the underlying Arrow data type.
func (s *Series) DataType() arrow.DataType { return s.array.DataType() }

// Rename returns a Series sharing the same storage under a new name.
func (s *Series) Rename(name string) *Series {
	s.array.Retain()
	return &Series{name: name, kind: s.kind, array: s.array}
}

// Strings extracts the values and validity mask of a string Series.
func (s *Series) Strings() ([]string, []bool) {
	arr, ok := s.array.(*array.String)
	if !ok {
		panic(fmt.Sprintf("series %q: Strings called on %s column", s.name, s.kind))
	}
	values := make([]string, arr.Len())
	valid := make([]bool, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		values[i] = arr.Value(i)
		valid[i] = true
	}
	return values, valid
}

// Floats extracts the values and validity mask of a numeric Series.
func (s *Series) Floats() ([]float64, []bool) {
	arr, ok := s.array.(*array.Float64)
	if !ok {
		panic(fmt.Sprintf("series %q: Floats called on %s column", s.name, s.kind))
	}
	values := make([]float64, arr.Len())
	valid := make([]bool, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		values[i] = arr.Value(i)
		valid[i] = true
	}
	return values, valid
}

// Times extracts the values and validity mask of a datetime Series.
func (s *Series) Times() ([]time.Time, []bool) {
	arr, ok := s.array.(*array.Timestamp)
	if !ok {
		panic(fmt.Sprintf("series %q: Times called on %s column", s.name, s.kind))
	}
	values := make([]time.Time, arr.Len())
	valid := make([]bool, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			continue
		}
		values[i] = arr.Value(i).ToTime(arrow.Microsecond)
		valid[i] = true
	}
	return values, valid
}

// ValueString renders the value at index as text. Nulls render as the empty
// string; this is the representation used by the CSV writer and by row
// fingerprinting.
func (s *Series) ValueString(index int) string {
	if s.array.IsNull(index) {
		return ""
	}
	switch arr := s.array.(type) {
	case *array.String:
		return arr.Value(index)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(index), 'g', -1, 64)
	case *array.Timestamp:
		return arr.Value(index).ToTime(arrow.Microsecond).Format(time.RFC3339)
	default:
		return ""
	}
}

// Filter returns a new Series keeping only rows where mask is true.
func (s *Series) Filter(mask []bool, mem memory.Allocator) *Series {
	switch s.kind {
	case KindFloat:
		values, valid := s.Floats()
		return NewFloat(s.name, filterVals(values, mask), filterVals(valid, mask), mem)
	case KindDatetime:
		values, valid := s.Times()
		return NewDatetime(s.name, filterVals(values, mask), filterVals(valid, mask), mem)
	default:
		values, valid := s.Strings()
		return NewString(s.name, filterVals(values, mask), filterVals(valid, mask), mem)
	}
}

func filterVals[T any](values []T, mask []bool) []T {
	out := make([]T, 0, len(values))
	for i, keep := range mask {
		if keep {
			out = append(out, values[i])
		}
	}
	return out
}

// Equal reports whether two Series have the same name, kind, length, and
// cell-for-cell values (nulls compare equal to nulls).
func (s *Series) Equal(other *Series) bool {
	if s.name != other.name || s.kind != other.kind || s.Len() != other.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) != other.IsNull(i) {
			return false
		}
		if !s.IsNull(i) && s.ValueString(i) != other.ValueString(i) {
			return false
		}
	}
	return true
}

// String returns a short description of the series.
func (s *Series) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d, nulls=%d)", s.kind, s.name, s.Len(), s.NullCount())
}

// Array returns the underlying Arrow array (retains a reference).
func (s *Series) Array() arrow.Array {
	if s.array != nil {
		s.array.Retain()
		return s.array
	}
	return nil
}

// Release releases the underlying Arrow memory.
func (s *Series) Release() {
	if s.array != nil {
		s.array.Release()
	}
}
