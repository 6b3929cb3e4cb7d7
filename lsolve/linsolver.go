// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import (
	"github.com/cpmech/nks/mat"
	"github.com/cpmech/nks/nvec"
)

// Mode selects the form of the iteration matrix solved by a LinSolver
type Mode int

const (

	// IminusGammaJ solves with M = I - γ·J, the corrector matrix of an
	// implicit integrator with implicit coefficient γ
	IminusGammaJ Mode = iota

	// PlainJ solves with M = J, as in Newton root finding
	PlainJ
)

// SysFn evaluates the system function (residual or right-hand side) at u
// into fu. The implementing value carries any auxiliary problem data
type SysFn func(fu, u nvec.Vector) Status

// JacDenseFn fills J with the Jacobian dF/du at u. fu holds F(u)
type JacDenseFn func(J *mat.Dense, u, fu nvec.Vector) Status

// JacBandFn fills the band entries of J with the Jacobian dF/du at u
type JacBandFn func(J *mat.Band, u, fu nvec.Vector) Status

// Stats holds the counters of one linear solver instance. Reading them has
// no side effects and is safe at any time after allocation
type Stats struct {
	Nje     int // Jacobian evaluations (analytic or difference-quotient builds)
	Nfe     int // system function calls spent on difference quotients
	Nsetups int // setup calls
	Nfact   int // factorisations performed
	Nli     int // linear (Krylov) iterations
	Nps     int // preconditioner solves
	Npe     int // preconditioner setups that regenerated data
	Ncfl    int // linear convergence failures
	Njtimes int // Jacobian-vector products
}

// LinSolver is the uniform contract the nonlinear driver is written against.
// A solver owns its workspace exclusively; no call mutates anything other
// than the designated output vector and the instance's own state. Solve must
// never be called before at least one successful Setup
type LinSolver interface {

	// Init allocates workspace. On failure the instance is unusable and the
	// caller must abort
	Init() Status

	// Setup (re)computes and factorises the iteration matrix, or prepares
	// the preconditioner for the Krylov variant. jok passes the caller's
	// belief that previously saved Jacobian data is still usable; jcur
	// reports whether fresh data was actually generated
	Setup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st Status)

	// Solve computes the correction x from the right-hand side b. Direct
	// variants ignore tol; the Krylov variant iterates until the scaled
	// preconditioned residual drops below tol or the budget is exhausted
	Solve(x, b nvec.Vector, tol float64) Status

	// Free releases all owned workspace
	Free()

	// Workspace returns the real and integer footprint for diagnostics
	Workspace() (nr, ni int)

	// Stat gives read access to the counters
	Stat() *Stats
}
