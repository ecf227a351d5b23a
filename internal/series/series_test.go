package series_test

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prepio/janitor/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "string", series.KindString.String())
	assert.Equal(t, "float64", series.KindFloat.String())
	assert.Equal(t, "timestamp", series.KindDatetime.String())
}

func TestNewFloatWithNulls(t *testing.T) {
	mem := memory.NewGoAllocator()
	s := series.NewFloat("age", []float64{25, 0, 35}, []bool{true, false, true}, mem)
	defer s.Release()

	assert.Equal(t, "age", s.Name())
	assert.Equal(t, series.KindFloat, s.Kind())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.NullCount())
	assert.False(t, s.IsNull(0))
	assert.True(t, s.IsNull(1))

	values, valid := s.Floats()
	assert.Equal(t, []float64{25, 0, 35}, values)
	assert.Equal(t, []bool{true, false, true}, valid)
}

func TestNewStringNilValidMeansAllPresent(t *testing.T) {
	s := series.NewString("name", []string{"Alice", "Bob"}, nil, nil)
	defer s.Release()

	assert.Equal(t, 2, s.Len())
	assert.Zero(t, s.NullCount())
}

func TestNewDatetime(t *testing.T) {
	ts := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	s := series.NewDatetime("created", []time.Time{ts, {}}, []bool{true, false}, nil)
	defer s.Release()

	assert.Equal(t, series.KindDatetime, s.Kind())
	values, valid := s.Times()
	require.Len(t, values, 2)
	assert.True(t, values[0].Equal(ts))
	assert.Equal(t, []bool{true, false}, valid)
}

func TestValueString(t *testing.T) {
	floats := series.NewFloat("x", []float64{1.5, 0}, []bool{true, false}, nil)
	defer floats.Release()
	strs := series.NewString("s", []string{"hello"}, nil, nil)
	defer strs.Release()

	assert.Equal(t, "1.5", floats.ValueString(0))
	assert.Equal(t, "", floats.ValueString(1), "nulls render as empty text")
	assert.Equal(t, "hello", strs.ValueString(0))
}

func TestFilter(t *testing.T) {
	s := series.NewFloat("x", []float64{1, 2, 3, 4}, []bool{true, false, true, true}, nil)
	defer s.Release()

	filtered := s.Filter([]bool{true, true, false, true}, nil)
	defer filtered.Release()

	require.Equal(t, 3, filtered.Len())
	values, valid := filtered.Floats()
	assert.Equal(t, []float64{1, 0, 4}, values)
	assert.Equal(t, []bool{true, false, true}, valid)
}

func TestEqual(t *testing.T) {
	a := series.NewFloat("x", []float64{1, 2}, nil, nil)
	defer a.Release()
	b := series.NewFloat("x", []float64{1, 2}, nil, nil)
	defer b.Release()
	c := series.NewFloat("x", []float64{1, 3}, nil, nil)
	defer c.Release()
	d := series.NewFloat("y", []float64{1, 2}, nil, nil)
	defer d.Release()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d), "name participates in equality")
}

func TestRenameSharesStorage(t *testing.T) {
	s := series.NewString("old", []string{"v"}, nil, nil)
	defer s.Release()

	renamed := s.Rename("new")
	defer renamed.Release()

	assert.Equal(t, "new", renamed.Name())
	assert.Equal(t, "v", renamed.ValueString(0))
}
