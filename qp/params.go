// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

import "fmt"

// SolverParams configures the ADMM iteration and, optionally, the
// solution-polishing pass that follows it.
type SolverParams struct {
	Rho   float64 // penalty parameter of the augmented Lagrangian
	Sigma float64 // proximal regularization added to P on the KKT diagonal
	Alpha float64 // over-relaxation factor, in (0, 2)

	EpsAbs       float64 // absolute tolerance for the optimality check
	EpsRel       float64 // relative tolerance for the optimality check
	EpsPrimalInf float64 // tolerance for the primal-infeasibility certificate
	EpsDualInf   float64 // tolerance for the dual-infeasibility certificate

	MaxIter       uint64 // hard cap on ADMM iterations
	StopCheckIter uint64 // check termination every this many iterations

	Polish      bool    // run the polishing pass after convergence
	PolishIter  uint64  // number of refinement iterations during polish
	Delta       float64 // Tikhonov perturbation used while factorizing the polish system
}

// DefaultParams returns the parameter set used when no override is given,
// matching the constants the ADMM engine was tuned against. max_iter has
// no finite default in the source behavior; this package requires a
// positive cap and substitutes a generous one rather than looping
// forever on a pathological problem.
func DefaultParams() SolverParams {
	return SolverParams{
		Rho:   1e-1,
		Sigma: 1e-6,
		Alpha: 1.6,

		EpsAbs:       1e-3,
		EpsRel:       1e-3,
		EpsPrimalInf: 1e-4,
		EpsDualInf:   1e-4,

		MaxIter:       100000,
		StopCheckIter: 10,

		Polish:     true,
		PolishIter: 5,
		Delta:      1e-6,
	}
}

func (p SolverParams) validate() error {
	switch {
	case p.Rho <= 0:
		return fmt.Errorf("qp: rho must be positive, got %g", p.Rho)
	case p.Sigma <= 0:
		return fmt.Errorf("qp: sigma must be positive, got %g", p.Sigma)
	case p.Alpha <= 0 || p.Alpha >= 2:
		return fmt.Errorf("qp: alpha must be in (0, 2), got %g", p.Alpha)
	case p.EpsAbs < 0 || p.EpsRel < 0 || p.EpsPrimalInf < 0 || p.EpsDualInf < 0:
		return fmt.Errorf("qp: tolerances must be non-negative")
	case p.MaxIter == 0:
		return fmt.Errorf("qp: max_iter must be positive")
	case p.StopCheckIter == 0:
		return fmt.Errorf("qp: stop_check_iter must be positive")
	case p.Polish && p.PolishIter == 0:
		return fmt.Errorf("qp: polish_iter must be positive when polishing is enabled")
	case p.Polish && p.Delta <= 0:
		return fmt.Errorf("qp: delta must be positive when polishing is enabled")
	}
	return nil
}
