package io

import (
	"strings"
	"testing"

	"github.com/prepio/janitor/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStrict(t *testing.T) {
	csv := "name,age\nAlice,25\nBob,30\n"

	ds, err := NewReader(strings.NewReader(csv), DefaultOptions(), nil).Read()
	require.NoError(t, err)
	defer ds.Release()

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"name", "age"}, ds.Columns())

	age, _ := ds.Column("age")
	assert.Equal(t, series.KindFloat, age.Kind(), "all-numeric column is inferred as float")
	name, _ := ds.Column("name")
	assert.Equal(t, series.KindString, name.Kind())
}

func TestReadStrictRejectsRaggedRows(t *testing.T) {
	csv := "a,b\n1,2\n3,4,5\n"

	_, err := NewReader(strings.NewReader(csv), DefaultOptions(), nil).Read()
	require.Error(t, err)
}

func TestMissingTokensBecomeNulls(t *testing.T) {
	csv := "x,label\n1,a\nNA,b\n3,null\nNaN,d\n"

	ds, err := NewReader(strings.NewReader(csv), DefaultOptions(), nil).Read()
	require.NoError(t, err)
	defer ds.Release()

	x, _ := ds.Column("x")
	assert.Equal(t, series.KindFloat, x.Kind(), "missing tokens do not block numeric inference")
	assert.Equal(t, 2, x.NullCount())

	label, _ := ds.Column("label")
	assert.Equal(t, 1, label.NullCount())
}

func TestReadNoHeader(t *testing.T) {
	ds, err := NewReader(strings.NewReader("1,a\n2,b\n"), Options{Delimiter: ',', Header: false}, nil).Read()
	require.NoError(t, err)
	defer ds.Release()

	assert.Equal(t, []string{"column_0", "column_1"}, ds.Columns())
	assert.Equal(t, 2, ds.Len())
}

func TestReadFlexibleCleanInputNoWarnings(t *testing.T) {
	ds, warnings, err := ReadFlexible("a,b\n1,2\n", nil)
	require.NoError(t, err)
	defer ds.Release()

	assert.Empty(t, warnings)
	assert.Equal(t, 1, ds.Len())
}

func TestReadFlexibleRecoversRaggedRows(t *testing.T) {
	csv := "name,age\nAlice,25\nBob,30,extra\nCharlie\n"

	ds, warnings, err := ReadFlexible(csv, nil)
	require.NoError(t, err)
	defer ds.Release()

	require.NotEmpty(t, warnings, "recovery must be reported")
	assert.Equal(t, 3, ds.Len(), "cleaning pads and truncates rather than dropping")
	assert.Equal(t, 2, ds.Width())
}

func TestReadFlexibleSkipsUnterminatedQuotes(t *testing.T) {
	csv := "name,age\nAlice,25\n\"Bob,30\n"

	ds, warnings, err := ReadFlexible(csv, nil)
	require.NoError(t, err)
	defer ds.Release()

	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "skipped")
}

func TestReadSkippingBadRowsSniffedDelimiter(t *testing.T) {
	csv := "name;age\nAlice;25\nBob;30\n"

	ds, skipped, err := readSkippingBadRows(csv, ';', nil)
	require.NoError(t, err)
	defer ds.Release()

	assert.Zero(t, skipped)
	assert.Equal(t, []string{"name", "age"}, ds.Columns())
	assert.Equal(t, 2, ds.Len())
}

func TestReadFlexibleEmptyInput(t *testing.T) {
	ds, warnings, err := ReadFlexible("", nil)
	require.NoError(t, err)

	// An empty document parses to an empty dataset; callers reject it upstream.
	assert.Empty(t, warnings)
	assert.Zero(t, ds.Width())
}

func TestCleanText(t *testing.T) {
	in := "a,b\n1,2,\n\n3\n4,5,6,7\n"
	out := CleanText(in)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, "1,2", lines[1], "trailing comma stripped")
	assert.Equal(t, "3,", lines[2], "short row padded to header width")
	assert.Equal(t, "4,5", lines[3], "long row truncated to header width")
}

func TestWriteRoundTrip(t *testing.T) {
	csv := "name,score\nAlice,1.5\nBob,\n"

	ds, err := NewReader(strings.NewReader(csv), DefaultOptions(), nil).Read()
	require.NoError(t, err)
	defer ds.Release()

	out, err := WriteString(ds)
	require.NoError(t, err)

	assert.Equal(t, "name,score\nAlice,1.5\nBob,\n", out, "nulls render as empty fields")
}
