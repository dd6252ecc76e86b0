// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparsemat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSCMulVecUpper(t *testing.T) {
	// [[2, 1, 0], [1, 3, 4], [0, 4, 5]]
	b := NewCSCBuilder(3, []int{1, 2, 2})
	b.InsertCol(0, []int{0}, []float64{2})
	b.InsertCol(1, []int{0, 1}, []float64{1, 3})
	b.InsertCol(2, []int{1, 2}, []float64{4, 5})
	m := b.Build()

	dst := make([]float64, 3)
	m.MulVecUpper([]float64{1, 1, 1}, dst)
	assert.Equal(t, []float64{3, 8, 9}, dst)
}

func TestCSCBuilderOutOfOrderPanics(t *testing.T) {
	b := NewCSCBuilder(2, []int{1, 1})
	b.InsertCol(1, []int{1}, []float64{1})
	assert.Panics(t, func() { b.InsertCol(0, []int{0}, []float64{1}) })
}

func TestCSRMulVec(t *testing.T) {
	// [[1, 0, 2], [0, 3, 0]]
	b := NewCSRBuilder(2, 3, []int{2, 1})
	b.InsertRow(0, []int{0, 2}, []float64{1, 2})
	b.InsertRow(1, []int{1}, []float64{3})
	m := b.Build()

	dst := make([]float64, 2)
	m.MulVec([]float64{1, 1, 1}, dst)
	assert.Equal(t, []float64{3, 3}, dst)

	tdst := make([]float64, 3)
	m.MulVecTrans([]float64{1, 2}, tdst)
	assert.Equal(t, []float64{1, 6, 2}, tdst)
}

func TestCSRRow(t *testing.T) {
	b := NewCSRBuilder(2, 2, []int{0, 2})
	b.InsertRow(1, []int{0, 1}, []float64{5, 6})
	m := b.Build()

	cols, vals := m.Row(0)
	assert.Empty(t, cols)
	assert.Empty(t, vals)

	cols, vals = m.Row(1)
	assert.Equal(t, []int{0, 1}, cols)
	assert.Equal(t, []float64{5, 6}, vals)
}
