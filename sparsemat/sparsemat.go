// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparsemat provides the two compressed sparse storage formats used
// by the sparse QP representation and its KKT/polish systems:
//
//   - CSC: a symmetric matrix stored column-major with only the upper
//     triangle populated (used for P and for the assembled K / H systems).
//   - CSR: a general matrix stored row-major (used for the constraint
//     matrix A, whose rows are read one constraint at a time).
//
// Both formats are append-only: a Builder accumulates entries column-by-
// column (row-by-row for CSR) in increasing index order and then compacts
// them into the immutable CSC/CSR value.
package sparsemat

import "fmt"

// CSC is a symmetric sparse matrix in compressed-sparse-column format.
// Only entries with RowIdx[p] <= column index are meaningful; the lower
// triangle is never read by any operation in this package.
type CSC struct {
	N      int
	ColPtr []int // len N+1
	RowIdx []int
	Data   []float64
}

// CSCBuilder accumulates the upper triangle of a symmetric matrix one
// column at a time. Within a column, rows must be inserted in increasing
// order, mirroring how the KKT assembler walks P's columns and A's rows.
type CSCBuilder struct {
	n      int
	colPtr []int
	rowIdx []int
	data   []float64
	col    int
}

// NewCSCBuilder reserves nnz[j] slots for column j, mirroring the
// preallocate-then-compact discipline of the original column-major
// assembly: nonzero counts are known up front from P's and A's patterns.
func NewCSCBuilder(n int, nnz []int) *CSCBuilder {
	total := 0
	for _, c := range nnz {
		total += c
	}
	return &CSCBuilder{
		n:      n,
		colPtr: make([]int, n+1),
		rowIdx: make([]int, 0, total),
		data:   make([]float64, 0, total),
	}
}

// InsertCol appends a run of (row, value) pairs to the current column and
// advances to it. Rows within a column must increase monotonically and
// satisfy row <= the column's index.
func (b *CSCBuilder) InsertCol(col int, rows []int, vals []float64) {
	if col < b.col {
		panic("sparsemat: columns must be inserted in order")
	}
	for b.col < col {
		b.colPtr[b.col+1] = len(b.rowIdx)
		b.col++
	}
	b.rowIdx = append(b.rowIdx, rows...)
	b.data = append(b.data, vals...)
}

// Build finalizes the builder into an immutable CSC matrix.
func (b *CSCBuilder) Build() *CSC {
	for b.col < b.n {
		b.colPtr[b.col+1] = len(b.rowIdx)
		b.col++
	}
	return &CSC{N: b.n, ColPtr: b.colPtr, RowIdx: b.rowIdx, Data: b.data}
}

// NNZCol returns the number of stored entries in column j.
func (m *CSC) NNZCol(j int) int { return m.ColPtr[j+1] - m.ColPtr[j] }

// MulVecUpper computes dst = A*x for the symmetric matrix whose upper
// triangle is stored in m, reading both triangles implicitly.
func (m *CSC) MulVecUpper(x, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for j := 0; j < m.N; j++ {
		xj := x[j]
		for p := m.ColPtr[j]; p < m.ColPtr[j+1]; p++ {
			i, a := m.RowIdx[p], m.Data[p]
			dst[i] += a * xj
			if i != j {
				dst[j] += a * x[i]
			}
		}
	}
}

// CSR is a general sparse matrix in compressed-sparse-row format.
type CSR struct {
	Rows, Cols int
	RowPtr     []int // len Rows+1
	ColIdx     []int
	Data       []float64
}

// CSRBuilder accumulates a general matrix one row at a time. Within a row,
// columns must be inserted in increasing order.
type CSRBuilder struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	data       []float64
	row        int
}

// NewCSRBuilder reserves nnz[i] slots for row i.
func NewCSRBuilder(rows, cols int, nnz []int) *CSRBuilder {
	total := 0
	for _, c := range nnz {
		total += c
	}
	return &CSRBuilder{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1),
		colIdx: make([]int, 0, total),
		data:   make([]float64, 0, total),
	}
}

// InsertRow appends a run of (col, value) pairs to the current row.
func (b *CSRBuilder) InsertRow(row int, cols []int, vals []float64) {
	if row < b.row {
		panic("sparsemat: rows must be inserted in order")
	}
	for b.row < row {
		b.rowPtr[b.row+1] = len(b.colIdx)
		b.row++
	}
	b.colIdx = append(b.colIdx, cols...)
	b.data = append(b.data, vals...)
}

// Build finalizes the builder into an immutable CSR matrix.
func (b *CSRBuilder) Build() *CSR {
	for b.row < b.rows {
		b.rowPtr[b.row+1] = len(b.colIdx)
		b.row++
	}
	return &CSR{Rows: b.rows, Cols: b.cols, RowPtr: b.rowPtr, ColIdx: b.colIdx, Data: b.data}
}

// NNZRow returns the number of stored entries in row i.
func (m *CSR) NNZRow(i int) int { return m.RowPtr[i+1] - m.RowPtr[i] }

// MulVec computes dst = A*x.
func (m *CSR) MulVec(x, dst []float64) {
	for i := 0; i < m.Rows; i++ {
		sum := 0.0
		for p := m.RowPtr[i]; p < m.RowPtr[i+1]; p++ {
			sum += m.Data[p] * x[m.ColIdx[p]]
		}
		dst[i] = sum
	}
}

// MulVecTrans computes dst = Aᵀ*x.
func (m *CSR) MulVecTrans(x, dst []float64) {
	for i := range dst[:m.Cols] {
		dst[i] = 0
	}
	for i := 0; i < m.Rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for p := m.RowPtr[i]; p < m.RowPtr[i+1]; p++ {
			dst[m.ColIdx[p]] += m.Data[p] * xi
		}
	}
}

// Row returns the column indices and values stored for row i, valid until
// the next call that mutates the underlying builder.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	return m.ColIdx[m.RowPtr[i]:m.RowPtr[i+1]], m.Data[m.RowPtr[i]:m.RowPtr[i+1]]
}

func (m *CSC) String() string {
	return fmt.Sprintf("CSC{n=%d, nnz=%d}", m.N, len(m.Data))
}

func (m *CSR) String() string {
	return fmt.Sprintf("CSR{rows=%d, cols=%d, nnz=%d}", m.Rows, m.Cols, len(m.Data))
}
