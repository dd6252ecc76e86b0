// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qp implements a convex quadratic program solver:
//
//	minimize    ½ xᵀPx + qᵀx
//	subject to  l <= Ax <= u
//
// by ADMM operator splitting against a symmetric indefinite KKT system,
// with an optional active-set polishing pass run after convergence. Dense
// and sparse storage are supported behind the same Problem interface; the
// linear algebra itself is delegated to a sis.Solver backend chosen to
// match the storage in use.
package qp

import (
	"fmt"

	"github.com/curioloop/qpsolve/internal/vecops"
	"github.com/curioloop/qpsolve/sis"
	"github.com/curioloop/qpsolve/sparsemat"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// reducedH is the active-set reduced system built by Problem.buildPolish,
// used by the refinement loop to evaluate the unperturbed residual
// h - H*t without re-deriving it from the original P and A.
type reducedH interface {
	MulVecUpper(t, dst []float64)
}

// Problem is the storage-independent view of a QP instance that the ADMM
// engine and the polisher operate against. Implementations supply dense or
// sparse backing storage for P and A; everything else is expressed in
// terms of this interface so qp/admm.go and qp/polish.go never branch on
// storage kind.
type Problem interface {
	N() int // number of decision variables
	M() int // number of constraint rows

	Q() []float64
	L() []float64
	U() []float64

	// pMulUpper computes dst = P*x, reading only P's upper triangle.
	pMulUpper(x, dst []float64)
	// aMul computes dst = A*x.
	aMul(x, dst []float64)
	// aMulTrans computes dst = Aᵀ*y.
	aMulTrans(y, dst []float64)

	// buildKKT assembles and factorizes
	//   K = [ P + sigma*I    Aᵀ        ]
	//       [ A             -I/rho     ]
	// reading only its upper triangle.
	buildKKT(sigma, rho float64) sis.Solver

	// buildPolish assembles the reduced system on the active set identified
	// by lower (rows pinned at their lower bound) and upper (rows pinned at
	// their upper bound), perturbed on the diagonal by delta for
	// factorization, and returns the unperturbed matvec alongside the
	// right-hand side [-q; l[lower]; u[upper]] used by the refinement loop.
	buildPolish(lower, upper []int, delta float64) (rhs []float64, h reducedH, solver sis.Solver)
}

// DenseProblem is a Problem backed by gonum dense storage.
type DenseProblem struct {
	p    *mat.SymDense
	q    []float64
	a    *mat.Dense
	lo   []float64
	up   []float64
	n, m int
}

// NewDenseProblem validates and wraps dense problem data. P must be
// positive semidefinite (not checked here, only used); A has shape m x n;
// q, lo, up have length n, m, m respectively, with lo[i] <= up[i].
func NewDenseProblem(p *mat.SymDense, q []float64, a *mat.Dense, lo, up []float64) (*DenseProblem, error) {
	n := p.SymmetricDim()
	if len(q) != n {
		return nil, fmt.Errorf("qp: q has length %d, want %d", len(q), n)
	}
	ar, ac := a.Dims()
	if ac != n {
		return nil, fmt.Errorf("qp: a has %d columns, want %d", ac, n)
	}
	m := ar
	if len(lo) != m || len(up) != m {
		return nil, fmt.Errorf("qp: l/u have length %d/%d, want %d", len(lo), len(up), m)
	}
	for i := 0; i < m; i++ {
		if lo[i] > up[i] {
			return nil, fmt.Errorf("qp: l[%d]=%g > u[%d]=%g", i, lo[i], i, up[i])
		}
	}
	return &DenseProblem{p: p, q: q, a: a, lo: lo, up: up, n: n, m: m}, nil
}

func (d *DenseProblem) N() int         { return d.n }
func (d *DenseProblem) M() int         { return d.m }
func (d *DenseProblem) Q() []float64   { return d.q }
func (d *DenseProblem) L() []float64   { return d.lo }
func (d *DenseProblem) U() []float64   { return d.up }

func (d *DenseProblem) pMulUpper(x, dst []float64) {
	dv := mat.NewVecDense(d.n, dst)
	xv := mat.NewVecDense(d.n, append([]float64(nil), x...))
	dv.MulVec(d.p, xv)
}

func (d *DenseProblem) aMul(x, dst []float64) {
	dv := mat.NewVecDense(d.m, dst)
	xv := mat.NewVecDense(d.n, append([]float64(nil), x...))
	dv.MulVec(d.a, xv)
}

func (d *DenseProblem) aMulTrans(y, dst []float64) {
	dv := mat.NewVecDense(d.n, dst)
	yv := mat.NewVecDense(d.m, append([]float64(nil), y...))
	dv.MulVec(d.a.T(), yv)
}

func (d *DenseProblem) buildKKT(sigma, rho float64) sis.Solver {
	n, m := d.n, d.m
	size := n + m
	data := make([]float64, size*size)
	k := blas64.Symmetric{N: size, Stride: size, Uplo: blas.Upper, Data: data}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := d.p.At(i, j)
			if i == j {
				v += sigma
			}
			k.Data[i*size+j] = v
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			k.Data[j*size+(n+i)] = d.a.At(i, j)
		}
	}
	for i := 0; i < m; i++ {
		k.Data[(n+i)*size+(n+i)] = -1.0 / rho
	}

	return sis.NewDense(k)
}

// denseUpperH is a reducedH backed by a blas64.Symmetric, used during
// dense polish refinement.
type denseUpperH struct {
	sym blas64.Symmetric
}

func (h denseUpperH) MulVecUpper(t, dst []float64) {
	n := h.sym.N
	vecops.Zero(dst[:n])
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a := h.sym.Data[i*h.sym.Stride+j]
			dst[i] += a * t[j]
			if i != j {
				dst[j] += a * t[i]
			}
		}
	}
}

func (d *DenseProblem) buildPolish(lower, upper []int, delta float64) ([]float64, reducedH, sis.Solver) {
	n := d.n
	nAct := len(lower) + len(upper)
	size := n + nAct
	data := make([]float64, size*size)
	unperturbed := make([]float64, size*size)
	sym := blas64.Symmetric{N: size, Stride: size, Uplo: blas.Upper, Data: data}
	symU := blas64.Symmetric{N: size, Stride: size, Uplo: blas.Upper, Data: unperturbed}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := d.p.At(i, j)
			symU.Data[i*size+j] = v
			if i == j {
				v += delta
			}
			sym.Data[i*size+j] = v
		}
	}

	active := append(append([]int(nil), lower...), upper...)
	for r, row := range active {
		for j := 0; j < n; j++ {
			v := d.a.At(row, j)
			symU.Data[j*size+(n+r)] = v
			sym.Data[j*size+(n+r)] = v
		}
		symU.Data[(n+r)*size+(n+r)] = 0
		sym.Data[(n+r)*size+(n+r)] = -delta
	}

	rhs := make([]float64, size)
	q := d.q
	for i := 0; i < n; i++ {
		rhs[i] = -q[i]
	}
	for r, row := range lower {
		rhs[n+r] = d.lo[row]
	}
	for r, row := range upper {
		rhs[n+len(lower)+r] = d.up[row]
	}

	return rhs, denseUpperH{symU}, sis.NewDense(sym)
}

// SparseProblem is a Problem backed by sparsemat CSC/CSR storage.
type SparseProblem struct {
	p    *sparsemat.CSC
	q    []float64
	a    *sparsemat.CSR
	lo   []float64
	up   []float64
	n, m int
}

// NewSparseProblem validates and wraps sparse problem data. P must be n x n
// with only its upper triangle stored; A must be m x n.
func NewSparseProblem(p *sparsemat.CSC, q []float64, a *sparsemat.CSR, lo, up []float64) (*SparseProblem, error) {
	n := p.N
	if len(q) != n {
		return nil, fmt.Errorf("qp: q has length %d, want %d", len(q), n)
	}
	if a.Cols != n {
		return nil, fmt.Errorf("qp: a has %d columns, want %d", a.Cols, n)
	}
	m := a.Rows
	if len(lo) != m || len(up) != m {
		return nil, fmt.Errorf("qp: l/u have length %d/%d, want %d", len(lo), len(up), m)
	}
	for i := 0; i < m; i++ {
		if lo[i] > up[i] {
			return nil, fmt.Errorf("qp: l[%d]=%g > u[%d]=%g", i, lo[i], i, up[i])
		}
	}
	return &SparseProblem{p: p, q: q, a: a, lo: lo, up: up, n: n, m: m}, nil
}

func (s *SparseProblem) N() int       { return s.n }
func (s *SparseProblem) M() int       { return s.m }
func (s *SparseProblem) Q() []float64 { return s.q }
func (s *SparseProblem) L() []float64 { return s.lo }
func (s *SparseProblem) U() []float64 { return s.up }

func (s *SparseProblem) pMulUpper(x, dst []float64) { s.p.MulVecUpper(x, dst) }
func (s *SparseProblem) aMul(x, dst []float64)       { s.a.MulVec(x, dst) }
func (s *SparseProblem) aMulTrans(y, dst []float64)  { s.a.MulVecTrans(y, dst) }

// hasDiag reports whether column j of p carries an explicit diagonal entry.
func hasDiag(p *sparsemat.CSC, j int) bool {
	for k := p.ColPtr[j]; k < p.ColPtr[j+1]; k++ {
		if p.RowIdx[k] == j {
			return true
		}
	}
	return false
}

// buildKKT assembles K column by column: the first n columns hold P's own
// upper triangle (plus the sigma shift), untouched by A. Aᵀ lives entirely
// in the trailing m columns, one per constraint row, since a row of A read
// as a column of Aᵀ is already the increasing-column-index run InsertCol
// requires; the row's own -1/rho diagonal is appended last, at index n+i,
// the largest row a column that far right can carry.
func (s *SparseProblem) buildKKT(sigma, rho float64) sis.Solver {
	n, m := s.n, s.m
	size := n + m

	nnz := make([]int, size)
	for j := 0; j < n; j++ {
		nnz[j] = s.p.NNZCol(j)
		if !hasDiag(s.p, j) {
			nnz[j]++
		}
	}
	for i := 0; i < m; i++ {
		nnz[n+i] = s.a.NNZRow(i) + 1
	}

	b := sparsemat.NewCSCBuilder(size, nnz)
	for j := 0; j < n; j++ {
		rows := make([]int, 0, nnz[j])
		vals := make([]float64, 0, nnz[j])
		diagSeen := false
		for p := s.p.ColPtr[j]; p < s.p.ColPtr[j+1]; p++ {
			r, v := s.p.RowIdx[p], s.p.Data[p]
			if r == j {
				v += sigma
				diagSeen = true
			}
			rows = append(rows, r)
			vals = append(vals, v)
		}
		if !diagSeen {
			rows = append(rows, j)
			vals = append(vals, sigma)
		}
		b.InsertCol(j, rows, vals)
	}
	for i := 0; i < m; i++ {
		cols, vals := s.a.Row(i)
		rows := append(append([]int(nil), cols...), n+i)
		colVals := append(append([]float64(nil), vals...), -1.0/rho)
		b.InsertCol(n+i, rows, colVals)
	}

	return sis.NewSparse(b.Build())
}

// buildPolish mirrors buildKKT's column layout: the first n columns carry
// only P (and its Tikhonov shift for bP), and each active row gets its own
// trailing column n+r holding that row's slice of A, read directly off
// A's row-major storage in the already-increasing column order InsertCol
// wants. bU leaves that column's own diagonal unstored (H's bottom-right
// block is zero); bP appends -delta there instead.
func (s *SparseProblem) buildPolish(lower, upper []int, delta float64) ([]float64, reducedH, sis.Solver) {
	n := s.n
	active := append(append([]int(nil), lower...), upper...)
	nAct := len(active)
	size := n + nAct

	nnzU := make([]int, size)
	nnzP := make([]int, size)
	for j := 0; j < n; j++ {
		nnzU[j] = s.p.NNZCol(j)
		nnzP[j] = nnzU[j]
		if !hasDiag(s.p, j) {
			nnzP[j]++
		}
	}
	for r, row := range active {
		nnzU[n+r] = s.a.NNZRow(row)
		nnzP[n+r] = nnzU[n+r] + 1
	}

	bU := sparsemat.NewCSCBuilder(size, nnzU)
	bP := sparsemat.NewCSCBuilder(size, nnzP)
	for j := 0; j < n; j++ {
		rowsU := make([]int, 0, nnzU[j])
		valsU := make([]float64, 0, nnzU[j])
		rowsP := make([]int, 0, nnzP[j])
		valsP := make([]float64, 0, nnzP[j])
		diagSeen := false
		for p := s.p.ColPtr[j]; p < s.p.ColPtr[j+1]; p++ {
			r, v := s.p.RowIdx[p], s.p.Data[p]
			rowsU = append(rowsU, r)
			valsU = append(valsU, v)
			if r == j {
				v += delta
				diagSeen = true
			}
			rowsP = append(rowsP, r)
			valsP = append(valsP, v)
		}
		if !diagSeen {
			rowsP = append(rowsP, j)
			valsP = append(valsP, delta)
		}
		bU.InsertCol(j, rowsU, valsU)
		bP.InsertCol(j, rowsP, valsP)
	}
	for r, row := range active {
		cols, vals := s.a.Row(row)
		bU.InsertCol(n+r, cols, vals)
		rowsP := append(append([]int(nil), cols...), n+r)
		valsP := append(append([]float64(nil), vals...), -delta)
		bP.InsertCol(n+r, rowsP, valsP)
	}

	rhs := make([]float64, size)
	q := s.q
	for i := 0; i < n; i++ {
		rhs[i] = -q[i]
	}
	for r, row := range lower {
		rhs[n+r] = s.lo[row]
	}
	for r, row := range upper {
		rhs[n+len(lower)+r] = s.up[row]
	}

	return rhs, bU.Build(), sis.NewSparse(bP.Build())
}
