// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "github.com/curioloop/qpsolve/internal/vecops"

// Polish refines an Optimal solution by resolving the equality-constrained
// system implied by the active set that sol's dual variables identify: a
// row is pinned to its lower bound where y[i] < 0, to its upper bound where
// y[i] > 0, and left inactive where y[i] == 0. The reduced KKT system is
// factorized with a small Tikhonov perturbation (params.Delta) for
// numerical safety, then refined for params.PolishIter iterations using
// the unperturbed matrix so the perturbation does not bias the result.
//
// If sol.Code is not Optimal, Polish is a no-op. If the perturbed system
// is singular, sol is left unchanged except for setting its Code to
// PolishFailed.
func Polish(p Problem, sol *Solution, prm SolverParams) {
	if sol.Code != Optimal {
		return
	}

	m := p.M()
	var lower, upper []int
	for i := 0; i < m; i++ {
		switch {
		case sol.Y[i] < 0:
			lower = append(lower, i)
		case sol.Y[i] > 0:
			upper = append(upper, i)
		}
	}

	rhs, h, solver := p.buildPolish(lower, upper, prm.Delta)
	if solver.Info() != 0 {
		sol.Code = PolishFailed
		return
	}

	size := len(rhs)
	t := make([]float64, size)
	resid := make([]float64, size)
	for iter := uint64(0); iter < prm.PolishIter; iter++ {
		h.MulVecUpper(t, resid)
		for i := range resid {
			resid[i] = rhs[i] - resid[i]
		}
		dt := solver.Solve(resid)
		vecops.Axpy(1.0, dt, t)
	}

	n := p.N()
	copy(sol.X, t[:n])

	y := make([]float64, m)
	for r, row := range lower {
		y[row] = t[n+r]
	}
	for r, row := range upper {
		y[row] = t[n+len(lower)+r]
	}
	sol.Y = y
}
