// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import (
	"math"

	"github.com/curioloop/qpsolve/internal/vecops"
)

// Solve runs the ADMM operator-splitting iteration against the KKT system
//
//	K = [ P + sigma*I    Aᵀ        ]
//	    [ A             -I/rho     ]
//
// factorized once by the problem's chosen backend, and returns once an
// optimality or infeasibility certificate is found, or MaxIter is reached.
// If hotstart is non-nil its X is used as the initial iterate and Z is
// derived from it as A*x0; otherwise the iteration starts from the origin.
func Solve(p Problem, prm SolverParams, hotstart *Solution) (Solution, error) {
	if err := prm.validate(); err != nil {
		return Solution{}, err
	}

	n, m := p.N(), p.M()
	l, u := p.L(), p.U()

	for i := 0; i < m; i++ {
		if l[i] > u[i] || math.IsInf(l[i], 1) || math.IsInf(u[i], -1) {
			return Solution{Code: PrimalInfeasible}, nil
		}
	}

	solver := p.buildKKT(prm.Sigma, prm.Rho)
	if solver.Info() != 0 {
		return Solution{Code: Unknown}, nil
	}

	x := make([]float64, n)
	z := make([]float64, m)
	y := make([]float64, m)
	if hotstart != nil {
		copy(x, hotstart.X)
		p.aMul(x, z)
		if hotstart.Y != nil {
			copy(y, hotstart.Y)
		}
	}

	h := make([]float64, n+m)
	px := make([]float64, n)
	aty := make([]float64, n)
	ax := make([]float64, m)
	xOld := make([]float64, n)
	yOld := make([]float64, m)
	zOld := make([]float64, m)
	dx := make([]float64, n)
	dy := make([]float64, m)
	zTilde := make([]float64, m)
	zNew := make([]float64, m)

	rho, alpha, sigma := prm.Rho, prm.Alpha, prm.Sigma

	for iter := uint64(1); iter <= prm.MaxIter; iter++ {
		vecops.Copy(x, xOld)
		vecops.Copy(y, yOld)
		vecops.Copy(z, zOld)

		for i := 0; i < n; i++ {
			h[i] = sigma*x[i] - p.Q()[i]
		}
		for i := 0; i < m; i++ {
			h[n+i] = z[i] - y[i]/rho
		}

		t := solver.Solve(h)

		// t[n:] is the KKT solve's dual block nu; A*x_tilde recovers as
		// z + (nu - y)/rho without re-multiplying by A.
		for i := 0; i < m; i++ {
			zTilde[i] = z[i] + (t[n+i]-y[i])/rho
		}

		for i := 0; i < n; i++ {
			x[i] = alpha*t[i] + (1-alpha)*x[i]
		}
		for i := 0; i < m; i++ {
			zStar := alpha*zTilde[i] + (1-alpha)*z[i]
			zNew[i] = clamp(zStar+y[i]/rho, l[i], u[i])
			y[i] += rho * (zStar - zNew[i])
			z[i] = zNew[i]
		}

		if iter%prm.StopCheckIter == 0 || iter == prm.MaxIter {
			// Optimality is checked against the iterate as it stood before
			// this step's update, not the one just produced by it: the
			// certificate below (dx = x - xOld) needs the two to still
			// differ, and the returned solution is that same pre-update
			// iterate.
			p.aMul(xOld, ax)
			p.pMulUpper(xOld, px)
			p.aMulTrans(yOld, aty)

			epsPrim := prm.EpsAbs + prm.EpsRel*vecops.MaxScale(ax, zOld)
			primRes := vecops.MaxAbsDiff(ax, zOld)

			// Dual residual reuses EpsAbs in both the absolute and the
			// relative slot; ADMM never substitutes EpsRel here.
			epsDual := prm.EpsAbs + prm.EpsAbs*vecops.MaxScale(px, p.Q(), aty)
			dualRes := vecops.MaxAbsSum3(px, p.Q(), aty)

			if primRes <= epsPrim && dualRes <= epsDual {
				sol := Solution{Code: Optimal, X: append([]float64(nil), xOld...), Y: append([]float64(nil), yOld...)}
				if prm.Polish {
					Polish(p, &sol, prm)
				}
				return sol, nil
			}

			for i := range dx {
				dx[i] = x[i] - xOld[i]
			}
			for i := range dy {
				dy[i] = y[i] - yOld[i]
			}

			if primalInfeasible(p, dy, prm.EpsPrimalInf) {
				return Solution{Code: PrimalInfeasible}, nil
			}

			if dualInfeasible(p, dx, prm.EpsDualInf) {
				return Solution{Code: DualInfeasible}, nil
			}
		}
	}

	return Solution{Code: MaxIterations, X: append([]float64(nil), x...), Y: append([]float64(nil), y...)}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// primalInfeasible tests whether dy = y' - y witnesses a primal
// infeasibility certificate: ‖Aᵀdy‖∞ and the bound-weighted sum S both
// below eps*‖dy‖∞, where S short-circuits to +∞ (never a certificate)
// the moment an unbounded direction would contribute unboundedly.
func primalInfeasible(p Problem, dy []float64, eps float64) bool {
	scale := vecops.InfNorm(dy)
	if scale == 0 {
		return false
	}
	thresh := eps * scale

	aty := make([]float64, p.N())
	p.aMulTrans(dy, aty)
	if vecops.InfNorm(aty) > thresh {
		return false
	}

	l, u := p.L(), p.U()
	sum := 0.0
	for i, d := range dy {
		if d > 0 {
			if math.IsInf(u[i], 1) {
				if d > thresh {
					return false
				}
				continue
			}
			sum += u[i] * d
		} else if d < 0 {
			if math.IsInf(l[i], -1) {
				if d < -thresh {
					return false
				}
				continue
			}
			sum += l[i] * d
		}
	}

	return math.Max(vecops.InfNorm(aty), sum) < thresh
}

// dualInfeasible tests whether dx = x' - x witnesses a dual infeasibility
// certificate: an unbounded descent direction for the objective that the
// constraints never resist.
func dualInfeasible(p Problem, dx []float64, eps float64) bool {
	scale := vecops.InfNorm(dx)
	if scale == 0 {
		return false
	}
	thresh := eps * scale

	pdx := make([]float64, p.N())
	p.pMulUpper(dx, pdx)
	if vecops.InfNorm(pdx) > thresh {
		return false
	}

	if vecops.Dot(p.Q(), dx) > thresh {
		return false
	}

	adx := make([]float64, p.M())
	p.aMul(dx, adx)
	l, u := p.L(), p.U()
	for i, v := range adx {
		switch {
		case math.IsInf(u[i], 1): // u_i = +inf always binds first, even if l_i is also -inf
			if v < -thresh {
				return false
			}
		case math.IsInf(l[i], -1): // l_i = -inf, only the upper bound can bind
			if v > thresh {
				return false
			}
		default:
			if math.Abs(v) >= thresh {
				return false
			}
		}
	}
	return true
}
