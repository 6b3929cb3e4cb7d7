// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package newton implements the nonlinear driver: a Newton iteration written
// only against the lsolve contract. The same driver serves as the corrector
// of an implicit integrator (iteration matrix I - γ·J, γ given per call) and
// as a standalone root finder (γ ignored, PlainJ solvers). The outer
// step/order adaptation loop stays with the caller: it invokes Run once per
// corrector attempt and reacts to the returned status.
package newton

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/nks/lsolve"
	"github.com/cpmech/nks/nvec"
)

// Stats holds the counters of one nonlinear solver instance
type Stats struct {
	Nit     int // nonlinear iterations
	Nfe     int // system function evaluations
	Nsetups int // linear solver setup calls
	Ncfn    int // nonlinear convergence failures
}

// Solver performs Newton iterations on F(u) = 0 or on the corrector system
type Solver struct {

	// configuration
	NmaxIt    int     // max number of iterations per call
	Atol      float64 // absolute tolerance for the error weights
	Rtol      float64 // relative tolerance for the error weights
	FbTol     float64 // converged when ‖F‖ drops by this factor from the first iteration
	FbMin     float64 // converged when ‖F‖ falls below this value
	Itol      float64 // converged when the weighted RMS norm of the update falls below this
	LinRtol   float64 // linear tolerance = LinRtol·‖F‖ (inexact Newton forcing)
	ModNewton bool    // modified Newton: one setup per call instead of one per iteration
	DvgCtrl   bool    // stop early when the residual norm grows
	ShowR     bool    // print residuals during iterations

	// residual callback, e.g. for convergence history capture
	ResCb func(firstIt bool, fnorm float64)

	fn  lsolve.SysFn
	ls  lsolve.LinSolver
	pol *lsolve.StalePolicy

	fb, δu, w nvec.Vector
	jcurLast  bool
	stats     Stats
}

// NewSolver returns a nonlinear solver with default tolerances, bound to one
// linear solver instance and one staleness policy
func NewSolver(fn lsolve.SysFn, ls lsolve.LinSolver, pol *lsolve.StalePolicy) *Solver {
	return &Solver{
		NmaxIt:    10,
		Atol:      1e-8,
		Rtol:      1e-8,
		FbTol:     1e-9,
		FbMin:     1e-10,
		Itol:      1.0,
		LinRtol:   0.05,
		ModNewton: true,
		fn:        fn,
		ls:        ls,
		pol:       pol,
	}
}

// Init allocates workspace of the same kind as tmpl and initialises the
// linear solver
func (o *Solver) Init(tmpl nvec.Vector) lsolve.Status {
	o.fb = tmpl.NewLike()
	o.δu = tmpl.NewLike()
	o.w = tmpl.NewLike()
	return o.ls.Init()
}

// Weights gives access to the error-weight vector, e.g. to use the same
// scaling inside a Krylov linear solver
func (o *Solver) Weights() nvec.Vector { return o.w }

// Stat gives read access to the counters
func (o *Solver) Stat() *Stats { return &o.stats }

// Run drives the Newton iteration at the given step index and implicit
// coefficient, updating u in place. On a convergence failure that followed a
// setup with reused (possibly wrong) Jacobian data, one retry with forced
// fresh data is performed before the failure is reported upward
func (o *Solver) Run(u nvec.Vector, γ float64, step int) (st lsolve.Status) {
	st = o.iterate(u, γ, step, false)
	if st.IsRecoverable() && !o.jcurLast {
		o.stats.Ncfn++
		st = o.iterate(u, γ, step, true)
	}
	if !st.IsOk() {
		o.stats.Ncfn++
	}
	return
}

// iterate performs one sequence of Newton iterations
func (o *Solver) iterate(u nvec.Vector, γ float64, step int, forceFresh bool) lsolve.Status {

	var fnorm, fnorm0, prevFb float64
	for it := 0; it < o.NmaxIt; it++ {

		// residual
		o.stats.Nfe++
		if st := o.fn(o.fb, u); !st.IsOk() {
			return st
		}
		nvec.SetWeights(o.w, u, o.Atol, o.Rtol)
		fnorm = o.fb.NormWrms(o.w)
		if o.ResCb != nil {
			o.ResCb(it == 0, fnorm)
		}
		if o.ShowR {
			io.Pf("%4d%23.15e\n", it, fnorm)
		}

		// convergence on the residual norm
		if it == 0 {
			fnorm0 = fnorm
			if fnorm < o.FbMin {
				return lsolve.Ok()
			}
		} else {
			if fnorm < o.FbTol*fnorm0 || fnorm < o.FbMin {
				return lsolve.Ok()
			}
		}

		// divergence control
		if it > 1 && o.DvgCtrl && fnorm > prevFb {
			return lsolve.Recov("iterations diverging: ‖F‖ grew from %g to %g", prevFb, fnorm)
		}
		prevFb = fnorm

		// setup: consult the staleness policy; factor only when needed
		if it == 0 || !o.ModNewton {
			force := forceFresh && it == 0
			jok := !o.pol.Fresh(step, γ, force)
			jcur, st := o.ls.Setup(u, o.fb, γ, jok)
			o.stats.Nsetups++
			o.jcurLast = jcur
			if jcur {
				o.pol.Update(step, γ)
			}
			if !st.IsOk() {
				return st
			}
		}

		// solve for the correction: M·δu = -F
		o.stats.Nit++
		o.fb.Scale(-1)
		if st := o.ls.Solve(o.δu, o.fb, o.LinRtol*fnorm); !st.IsOk() {
			return st
		}

		// update and convergence on the correction norm
		u.LinSum(1, u, 1, o.δu)
		if o.δu.NormWrms(o.w) < o.Itol {
			return lsolve.Ok()
		}
	}
	return lsolve.Recov("max number of iterations reached: it=%d ‖F‖=%g", o.NmaxIt, fnorm)
}
