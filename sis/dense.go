// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sis

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// Dense factorizes a dense symmetric matrix with a Bunch-Kaufman (LDLᵀ-type)
// decomposition, reading only its upper triangle. It keeps the original
// matrix data, the factored copy, and the pivot vector, matching the
// dense-backend contract: the first call performs the factorization, every
// Solve afterwards reuses it.
type Dense struct {
	n    int
	orig blas64.Symmetric // the matrix passed to NewDense, left untouched
	fact blas64.Symmetric // overwritten in place by Sytrf
	ipiv []int
	info int
}

// NewDense factorizes K by move: K is consumed and must not be reused by
// the caller afterwards.
func NewDense(k blas64.Symmetric) *Dense {
	d := &Dense{
		n:    k.N,
		orig: k,
		ipiv: make([]int, k.N),
	}

	fact := blas64.Symmetric{N: k.N, Stride: k.N, Uplo: blas.Upper, Data: make([]float64, k.N*k.N)}
	for i := 0; i < k.N; i++ {
		for j := i; j < k.N; j++ {
			fact.Data[i*fact.Stride+j] = k.Data[i*k.Stride+j]
		}
	}
	d.fact = fact

	ok := lapack64.Sytrf(d.fact, d.ipiv)
	if !ok {
		d.info = singularIndex(d.fact, d.ipiv) + 1
	}
	return d
}

// Info reports 0 on success, or i>0 if D(i,i) == 0 in the factorization.
func (d *Dense) Info() int { return d.info }

// Solve returns t such that K t = h. h is not modified.
func (d *Dense) Solve(h []float64) []float64 {
	x := make([]float64, d.n)
	copy(x, h)
	b := blas64.General{Rows: d.n, Cols: 1, Stride: 1, Data: x}
	lapack64.Sytrs(d.fact, b, d.ipiv)
	return x
}

// singularIndex finds the first zero pivot block on the diagonal of the
// factored form, used only to report the 1-based index required by Info.
func singularIndex(fact blas64.Symmetric, ipiv []int) int {
	for i := 0; i < fact.N; i++ {
		if fact.Data[i*fact.Stride+i] == 0 {
			return i
		}
	}
	return fact.N - 1
}
