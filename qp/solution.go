// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qp

// ExitCode classifies how a solve or polish attempt terminated. Numerical
// conditions such as a singular factorization or a detected infeasibility
// are reported here rather than through an error return: they are expected
// outcomes of the algorithm, not failures of the call itself.
type ExitCode int

const (
	// Unknown is returned when the initial KKT factorization failed; no
	// retry is attempted and primal/dual are left empty.
	Unknown ExitCode = iota
	// Optimal means both tolerances were satisfied; primal and dual hold
	// the converged iterates (possibly refined further by polishing).
	Optimal
	// PolishFailed means the polish factorization was singular; the
	// pre-polish optimum is retained and returned with this status.
	PolishFailed
	// PrimalInfeasible means a primal infeasibility certificate was found;
	// primal/dual are left empty.
	PrimalInfeasible
	// DualInfeasible means a dual infeasibility certificate was found;
	// primal/dual are left empty.
	DualInfeasible
	// MaxIterations means the iteration cap was reached without a
	// certificate; the current iterates are returned as best-effort.
	MaxIterations
)

func (c ExitCode) String() string {
	switch c {
	case Optimal:
		return "Optimal"
	case PolishFailed:
		return "PolishFailed"
	case PrimalInfeasible:
		return "PrimalInfeasible"
	case DualInfeasible:
		return "DualInfeasible"
	case MaxIterations:
		return "MaxIterations"
	default:
		return "Unknown"
	}
}

// Solution is the primal/dual pair returned by Solve, together with the
// exit status that qualifies it.
type Solution struct {
	Code ExitCode
	X    []float64 // primal, length n
	Y    []float64 // dual, length m
}
