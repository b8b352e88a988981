// Package linalg solves small dense linear systems.
package linalg

import (
	"errors"
	"fmt"
	"math"
)

// PivotThreshold is the smallest pivot magnitude Solve accepts.
const PivotThreshold = 1e-12

var (
	ErrNumericalInstability = errors.New("matrix is singular or ill-conditioned")
	ErrDimension            = errors.New("matrix dimensions do not match")
)

// InstabilityError reports the column whose best pivot fell below
// PivotThreshold.
type InstabilityError struct {
	Column int
	Pivot  float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("%v: pivot %.3g in column %d", ErrNumericalInstability, e.Pivot, e.Column)
}

func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }

// Solve returns x with a·x = b using Gauss-Jordan elimination with partial
// pivoting. a must be n×n and b of length n; neither is modified.
func Solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	if len(b) != n {
		return nil, fmt.Errorf("%w: %d rows, %d constants", ErrDimension, n, len(b))
	}
	w := n + 1
	// augmented matrix [a|b], row-major
	m := make([]float64, n*w)
	for i, row := range a {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(row), n)
		}
		copy(m[i*w:], row)
		m[i*w+n] = b[i]
	}

	for col := 0; col < n; col++ {
		piv := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r*w+col]) > math.Abs(m[piv*w+col]) {
				piv = r
			}
		}
		if v := m[piv*w+col]; math.Abs(v) < PivotThreshold || math.IsNaN(v) {
			return nil, &InstabilityError{Column: col, Pivot: v}
		}
		if piv != col {
			swapRows(m, w, piv, col)
		}

		pr := m[col*w : col*w+w]
		fac := pr[col]
		for j := col; j < w; j++ {
			pr[j] /= fac
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			row := m[r*w : r*w+w]
			f := row[col]
			if f == 0 {
				continue
			}
			for j := col; j < w; j++ {
				row[j] -= f * pr[j]
			}
		}
	}

	x := make([]float64, n)
	for i := range x {
		x[i] = m[i*w+n]
	}
	return x, nil
}

func swapRows(m []float64, w, i, j int) {
	ri := m[i*w : i*w+w]
	rj := m[j*w : j*w+w]
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
}
