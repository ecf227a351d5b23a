package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImputeLinearRelationship(t *testing.T) {
	// y = 2x exactly; the round-robin regression should recover the missing y.
	data := [][]float64{
		{1, 2},
		{2, 4},
		{3, 6},
		{4, 8},
		{5, 0},
		{6, 12},
	}
	missing := [][]bool{
		{false, false},
		{false, false},
		{false, false},
		{false, false},
		{false, true},
		{false, false},
	}

	imp := &IterativeImputer{}
	imp.Impute(data, missing)

	assert.InDelta(t, 10.0, data[4][1], 1e-6)
}

func TestImputeObservedCellsUntouched(t *testing.T) {
	data := [][]float64{
		{1, 10},
		{2, 0},
		{3, 30},
		{4, 40},
	}
	missing := [][]bool{
		{false, false},
		{false, true},
		{false, false},
		{false, false},
	}

	imp := &IterativeImputer{}
	imp.Impute(data, missing)

	assert.Equal(t, 1.0, data[0][0])
	assert.Equal(t, 10.0, data[0][1])
	assert.Equal(t, 30.0, data[2][1])
}

func TestImputeAllMissingColumnFilledWithZero(t *testing.T) {
	data := [][]float64{
		{1, 0},
		{2, 0},
	}
	missing := [][]bool{
		{false, true},
		{false, true},
	}

	imp := &IterativeImputer{}
	imp.Impute(data, missing)

	assert.Equal(t, 0.0, data[0][1])
	assert.Equal(t, 0.0, data[1][1])
}

func TestImputeSingleColumnFallsBackToMean(t *testing.T) {
	data := [][]float64{{2}, {4}, {0}}
	missing := [][]bool{{false}, {false}, {true}}

	imp := &IterativeImputer{}
	imp.Impute(data, missing)

	assert.InDelta(t, 3.0, data[2][0], 1e-9)
}

func TestImputeEmptyMatrix(t *testing.T) {
	imp := &IterativeImputer{}
	out := imp.Impute(nil, nil)
	require.Nil(t, out)
}
