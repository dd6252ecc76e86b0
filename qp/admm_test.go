// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"math"
	"testing"

	"github.com/curioloop/qpsolve/sparsemat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func denseProblem(t *testing.T, p []float64, n int, q []float64, a []float64, m int, lo, up []float64) *DenseProblem {
	t.Helper()
	prob, err := NewDenseProblem(mat.NewSymDense(n, p), q, mat.NewDense(m, n, a), lo, up)
	require.NoError(t, err)
	return prob
}

// sparseProblem builds a SparseProblem from the same flat, row-major
// literals denseProblem takes, so a scenario can be run through both
// backends verbatim.
func sparseProblem(t *testing.T, p []float64, n int, q []float64, a []float64, m int, lo, up []float64) *SparseProblem {
	t.Helper()

	pnnz := make([]int, n)
	for j := 0; j < n; j++ {
		for i := 0; i <= j; i++ {
			if p[i*n+j] != 0 {
				pnnz[j]++
			}
		}
	}
	pb := sparsemat.NewCSCBuilder(n, pnnz)
	for j := 0; j < n; j++ {
		var rows []int
		var vals []float64
		for i := 0; i <= j; i++ {
			if v := p[i*n+j]; v != 0 {
				rows = append(rows, i)
				vals = append(vals, v)
			}
		}
		pb.InsertCol(j, rows, vals)
	}

	annz := make([]int, m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if a[i*n+j] != 0 {
				annz[i]++
			}
		}
	}
	ab := sparsemat.NewCSRBuilder(m, n, annz)
	for i := 0; i < m; i++ {
		var cols []int
		var vals []float64
		for j := 0; j < n; j++ {
			if v := a[i*n+j]; v != 0 {
				cols = append(cols, j)
				vals = append(vals, v)
			}
		}
		ab.InsertRow(i, cols, vals)
	}

	prob, err := NewSparseProblem(pb.Build(), q, ab.Build(), lo, up)
	require.NoError(t, err)
	return prob
}

func TestUnconstrainedQP(t *testing.T) {
	prob := denseProblem(t, []float64{2, 0, 0, 2}, 2, []float64{-2, -4}, nil, 0, nil, nil)
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDeltaSlice(t, []float64{1, 2}, sol.X, 1e-3)
}

func TestBoxConstrainedMinimum(t *testing.T) {
	prob := denseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{0, 0},
		[]float64{1, 0, 0, 1}, 2,
		[]float64{-1, -1}, []float64{1, 1})
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDeltaSlice(t, []float64{0, 0}, sol.X, 1e-3)
	assert.InDeltaSlice(t, []float64{0, 0}, sol.Y, 1e-3)
}

func TestActiveUpperBound(t *testing.T) {
	prob := denseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{-3, 0},
		[]float64{1, 0}, 1,
		[]float64{math.Inf(-1)}, []float64{1})
	prm := DefaultParams()
	prm.Polish = true
	sol, err := Solve(prob, prm, nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDelta(t, 1, sol.X[0], 1e-6)
	assert.InDelta(t, 0, sol.X[1], 1e-6)
	assert.Greater(t, sol.Y[0], 0.0)
}

func TestEqualityConstraint(t *testing.T) {
	prob := denseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{0, 0},
		[]float64{1, 1}, 1,
		[]float64{1}, []float64{1})
	prm := DefaultParams()
	sol, err := Solve(prob, prm, nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, sol.X, 1e-3)
}

func TestPrimalInfeasible(t *testing.T) {
	prob := denseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{0, 0},
		[]float64{1, 0, -1, 0}, 2,
		[]float64{1, 1}, []float64{math.Inf(1), math.Inf(1)})
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, PrimalInfeasible, sol.Code)
}

func TestDualInfeasible(t *testing.T) {
	prob := denseProblem(t, []float64{1, 0, 0, 0}, 2, []float64{0, -1}, nil, 0, nil, nil)
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, DualInfeasible, sol.Code)
}

func TestSparseActiveUpperBound(t *testing.T) {
	prob := sparseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{-3, 0},
		[]float64{1, 0}, 1,
		[]float64{math.Inf(-1)}, []float64{1})
	prm := DefaultParams()
	prm.Polish = true
	sol, err := Solve(prob, prm, nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDelta(t, 1, sol.X[0], 1e-6)
	assert.InDelta(t, 0, sol.X[1], 1e-6)
	assert.Greater(t, sol.Y[0], 0.0)
}

func TestSparseEqualityConstraint(t *testing.T) {
	prob := sparseProblem(t,
		[]float64{1, 0, 0, 1}, 2,
		[]float64{0, 0},
		[]float64{1, 1}, 1,
		[]float64{1}, []float64{1})
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, Optimal, sol.Code)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, sol.X, 1e-3)
}

func TestFeasibilityScreenSkipsFactorization(t *testing.T) {
	// NewDenseProblem rejects l > u outright, so the problem is built
	// directly to reach Solve's own screen.
	prob := &DenseProblem{
		p:  mat.NewSymDense(2, []float64{1, 0, 0, 1}),
		q:  []float64{0, 0},
		a:  mat.NewDense(1, 2, []float64{1, 0}),
		lo: []float64{2},
		up: []float64{1},
		n:  2,
		m:  1,
	}
	sol, err := Solve(prob, DefaultParams(), nil)
	require.NoError(t, err)
	assert.Equal(t, PrimalInfeasible, sol.Code)
}
