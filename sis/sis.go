// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sis implements the symmetric indefinite solver contract shared by
// the dense and sparse ADMM backends: factorize a symmetric matrix K once,
// reading only its upper triangle, and solve K t = h against that single
// factorization any number of times.
package sis

// Solver factorizes a symmetric indefinite matrix once and answers repeated
// solves against the stored factorization. Implementations must not mutate
// the factorization inside Solve, and must not read the lower triangle of
// the matrix they were built from.
type Solver interface {
	// Info reports 0 on a successful factorization, or i>0 if the matrix
	// is numerically singular with a zero pivot at diagonal index i-1.
	Info() int
	// Solve returns t such that K t = h, to the backend's working accuracy.
	Solve(h []float64) []float64
}
