// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

func TestDenseSolveIdentity(t *testing.T) {
	k := blas64.Symmetric{N: 2, Stride: 2, Uplo: blas.Upper, Data: []float64{1, 0, 0, 1}}
	d := NewDense(k)
	assert.Equal(t, 0, d.Info())

	x := d.Solve([]float64{3, 4})
	assert.InDeltaSlice(t, []float64{3, 4}, x, 1e-12)
}

func TestDenseSolveIndefinite(t *testing.T) {
	// [[2, 1], [1, -2]], quasi-definite, x = K^-1 [3, -1]
	k := blas64.Symmetric{N: 2, Stride: 2, Uplo: blas.Upper, Data: []float64{2, 1, 0, -2}}
	d := NewDense(k)
	assert.Equal(t, 0, d.Info())

	x := d.Solve([]float64{3, -1})
	// K x = h => 2x0+x1=3, x0-2x1=-1 => x0=1, x1=1
	assert.InDeltaSlice(t, []float64{1, 1}, x, 1e-9)
}

func TestDenseSolveReusesFactorization(t *testing.T) {
	k := blas64.Symmetric{N: 2, Stride: 2, Uplo: blas.Upper, Data: []float64{2, 0, 0, 3}}
	d := NewDense(k)

	x1 := d.Solve([]float64{2, 3})
	assert.InDeltaSlice(t, []float64{1, 1}, x1, 1e-12)

	x2 := d.Solve([]float64{4, 6})
	assert.InDeltaSlice(t, []float64{2, 2}, x2, 1e-12)
}
