// Package ml implements the small in-memory learners the preprocessing
// stages rely on: iterative multivariate imputation, isolation-forest
// anomaly detection, and nearest-neighbor minority oversampling.
package ml

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultImputeMaxIter = 10
	imputeTolerance     = 1e-6
)

// IterativeImputer fills missing values in a numeric matrix by round-robin
// regression: each column with missing entries is regressed on the remaining
// columns over its observed rows, and the fit predicts the missing entries.
// The sweep repeats until the imputed values stabilize or MaxIter passes run.
type IterativeImputer struct {
	MaxIter int
}

// Impute fills the missing cells of data in place and returns it. data is
// row-major (rows x cols); missing[i][j] marks cells to fill. Columns whose
// observed part is empty are filled with zero.
func (imp *IterativeImputer) Impute(data [][]float64, missing [][]bool) [][]float64 {
	rows := len(data)
	if rows == 0 {
		return data
	}
	cols := len(data[0])
	maxIter := imp.MaxIter
	if maxIter <= 0 {
		maxIter = defaultImputeMaxIter
	}

	// Initialize missing cells with column means so every regression sees a
	// complete matrix from the first sweep.
	targets := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		var observed []float64
		for i := 0; i < rows; i++ {
			if !missing[i][j] {
				observed = append(observed, data[i][j])
			}
		}
		hasMissing := len(observed) < rows
		fill := 0.0
		if len(observed) > 0 {
			fill = stat.Mean(observed, nil)
		}
		for i := 0; i < rows; i++ {
			if missing[i][j] {
				data[i][j] = fill
			}
		}
		if hasMissing && len(observed) > 0 {
			targets = append(targets, j)
		}
	}
	if len(targets) == 0 || cols < 2 {
		return data
	}

	for iter := 0; iter < maxIter; iter++ {
		maxChange := 0.0
		for _, j := range targets {
			coef, ok := imp.fitColumn(data, missing, j)
			if !ok {
				continue
			}
			for i := 0; i < rows; i++ {
				if !missing[i][j] {
					continue
				}
				pred := predictRow(data[i], coef, j)
				if math.IsNaN(pred) || math.IsInf(pred, 0) {
					continue
				}
				if change := math.Abs(pred - data[i][j]); change > maxChange {
					maxChange = change
				}
				data[i][j] = pred
			}
		}
		if maxChange < imputeTolerance {
			break
		}
	}
	return data
}

// fitColumn regresses column j on all other columns plus an intercept,
// using only rows where column j was originally observed.
func (imp *IterativeImputer) fitColumn(data [][]float64, missing [][]bool, j int) ([]float64, bool) {
	rows := len(data)
	cols := len(data[0])

	var trainRows []int
	for i := 0; i < rows; i++ {
		if !missing[i][j] {
			trainRows = append(trainRows, i)
		}
	}
	// Underdetermined systems produce useless fits; fall back to the mean
	// initialization already in place.
	if len(trainRows) < cols {
		return nil, false
	}

	x := mat.NewDense(len(trainRows), cols, nil)
	y := mat.NewDense(len(trainRows), 1, nil)
	for r, i := range trainRows {
		x.Set(r, 0, 1) // intercept
		k := 1
		for c := 0; c < cols; c++ {
			if c == j {
				continue
			}
			x.Set(r, k, data[i][c])
			k++
		}
		y.Set(r, 0, data[i][j])
	}

	var qr mat.QR
	qr.Factorize(x)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, y); err != nil {
		return nil, false
	}

	coef := make([]float64, cols)
	for k := 0; k < cols; k++ {
		coef[k] = sol.At(k, 0)
	}
	return coef, true
}

// predictRow evaluates the fitted coefficients for target column j against
// one row's feature values.
func predictRow(row, coef []float64, j int) float64 {
	pred := coef[0]
	k := 1
	for c := range row {
		if c == j {
			continue
		}
		pred += coef[k] * row[c]
		k++
	}
	return pred
}
