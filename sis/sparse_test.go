// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sis

import (
	"testing"

	"github.com/curioloop/qpsolve/sparsemat"
	"github.com/stretchr/testify/assert"
)

func TestSparseSolveDiagonal(t *testing.T) {
	b := sparsemat.NewCSCBuilder(3, []int{1, 1, 1})
	b.InsertCol(0, []int{0}, []float64{2})
	b.InsertCol(1, []int{1}, []float64{4})
	b.InsertCol(2, []int{2}, []float64{-1})
	s := NewSparse(b.Build())
	assert.Equal(t, 0, s.Info())

	x := s.Solve([]float64{4, 8, -2})
	assert.InDeltaSlice(t, []float64{2, 2, 2}, x, 1e-12)
}

func TestSparseSolveQuasiDefinite(t *testing.T) {
	// K = [[2, 0, 1], [0, 3, 1], [1, 1, -1]], upper triangle only
	newK := func() *sparsemat.CSC {
		b := sparsemat.NewCSCBuilder(3, []int{1, 1, 3})
		b.InsertCol(0, []int{0}, []float64{2})
		b.InsertCol(1, []int{1}, []float64{3})
		b.InsertCol(2, []int{0, 1, 2}, []float64{1, 1, -1})
		return b.Build()
	}

	s := NewSparse(newK())
	assert.Equal(t, 0, s.Info())

	h := []float64{3, 4, 0}
	x := s.Solve(h)

	dst := make([]float64, 3)
	newK().MulVecUpper(x, dst)
	assert.InDeltaSlice(t, h, dst, 1e-9)
}

func TestSparseSingular(t *testing.T) {
	b := sparsemat.NewCSCBuilder(2, []int{1, 1})
	b.InsertCol(0, []int{0}, []float64{1})
	b.InsertCol(1, []int{1}, []float64{0})
	s := NewSparse(b.Build())
	assert.NotEqual(t, 0, s.Info())
}
