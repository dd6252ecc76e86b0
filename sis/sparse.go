// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sis

import "github.com/curioloop/qpsolve/sparsemat"

// Sparse factorizes a sparse symmetric matrix with an unpivoted LDLᵀ
// decomposition in the natural (given) elimination order. The KKT and
// polish systems built by the assembler are symmetric quasi-definite, for
// which this ordering is numerically stable without pivoting or reordering.
//
// The factor L is stored column-by-column in compressed-sparse-column
// form with an implied unit diagonal; D holds the diagonal separately.
// Once built, the nonzero pattern of L never changes, so repeated Solve
// calls only touch the numeric arrays — there is no refactorization.
type Sparse struct {
	n      int
	lp     []int // column pointers into li/lx, len n+1
	li     []int
	lx     []float64
	d      []float64
	parent []int
	info   int
}

// NewSparse factorizes mat by move: mat is consumed and must not be reused
// by the caller afterwards.
func NewSparse(mat *sparsemat.CSC) *Sparse {
	s := &Sparse{n: mat.N}
	s.factorize(mat)
	return s
}

// factorize runs the combined symbolic/numeric LDLᵀ pass described by
// Davis, "Algorithm 849: A concise sparse Cholesky factorization package",
// specialized to read only the upper triangle of mat and to tolerate
// indefinite (possibly negative) diagonal blocks.
func (s *Sparse) factorize(mat *sparsemat.CSC) {
	n := s.n
	parent := make([]int, n)
	mark := make([]int, n)
	lnz := make([]int, n)

	// Symbolic phase: elimination tree and per-column nonzero counts of L,
	// found by walking, for each column k, the ancestors of every row i<k
	// present in column k of mat.
	for k := 0; k < n; k++ {
		parent[k] = -1
		mark[k] = k
		for p := mat.ColPtr[k]; p < mat.ColPtr[k+1]; p++ {
			i := mat.RowIdx[p]
			for i < k && mark[i] != k {
				if parent[i] == -1 {
					parent[i] = k
				}
				lnz[i]++
				mark[i] = k
				i = parent[i]
			}
		}
	}

	lp := make([]int, n+1)
	for k := 0; k < n; k++ {
		lp[k+1] = lp[k] + lnz[k]
	}
	li := make([]int, lp[n])
	lx := make([]float64, lp[n])
	d := make([]float64, n)
	used := make([]int, n)

	y := make([]float64, n)
	pattern := make([]int, n)
	for i := range mark {
		mark[i] = -1
	}

	info := 0
	for k := 0; k < n; k++ {
		y[k] = 0
		top := n
		mark[k] = k
		for p := mat.ColPtr[k]; p < mat.ColPtr[k+1]; p++ {
			i := mat.RowIdx[p]
			if i > k {
				continue
			}
			y[i] += mat.Data[p]
			length := 0
			for mark[i] != k {
				pattern[length] = i
				length++
				mark[i] = k
				i = parent[i]
			}
			for length > 0 {
				length--
				top--
				pattern[top] = pattern[length]
			}
		}

		dk := y[k]
		y[k] = 0
		for ; top < n; top++ {
			i := pattern[top]
			yi := y[i]
			y[i] = 0
			end := lp[i] + used[i]
			for p := lp[i]; p < end; p++ {
				y[li[p]] -= lx[p] * yi
			}
			lki := yi / d[i]
			dk -= lki * yi
			li[end] = k
			lx[end] = lki
			used[i]++
		}

		d[k] = dk
		if dk == 0 && info == 0 {
			info = k + 1
		}
	}

	s.parent, s.lp, s.li, s.lx, s.d, s.info = parent, lp, li, lx, d, info
}

// Info reports 0 on success, or i>0 if D(i,i) == 0 in the factorization.
func (s *Sparse) Info() int { return s.info }

// Solve returns t such that K t = h, via forward, diagonal, and backward
// substitution against the stored L and D. h is not modified.
func (s *Sparse) Solve(h []float64) []float64 {
	x := make([]float64, s.n)
	copy(x, h)

	for j := 0; j < s.n; j++ {
		for p := s.lp[j]; p < s.lp[j+1]; p++ {
			x[s.li[p]] -= s.lx[p] * x[j]
		}
	}
	for j := 0; j < s.n; j++ {
		x[j] /= s.d[j]
	}
	for j := s.n - 1; j >= 0; j-- {
		for p := s.lp[j]; p < s.lp[j+1]; p++ {
			x[j] -= s.lx[p] * x[s.li[p]]
		}
	}

	return x
}
