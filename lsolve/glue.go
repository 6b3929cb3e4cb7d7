// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import (
	"github.com/cpmech/nks/mat"
	"github.com/cpmech/nks/nvec"
)

// Side selects the preconditioning side of the Krylov solver
type Side int

const (

	// NoPrec disables preconditioning
	NoPrec Side = iota

	// Left applies the preconditioner to the residual space
	Left

	// Right applies the preconditioner to the correction space
	Right
)

// PrecOps is the uniform preconditioner contract called by the Krylov solver
// without knowledge of the concrete preconditioner. Implementations keep any
// data shared between setup and solve inside the implementing value; there
// is no untyped context pointer. PrecSetup receives jok, the caller's belief
// that existing preconditioner data is still valid, and must report through
// jcur whether it regenerated data (expensive path) or reused it (cheap
// path), so the caller can update its own staleness bookkeeping
type PrecOps interface {
	PrecSetup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st Status)
	PrecSolve(z, r nvec.Vector, γ, δ float64, side Side) Status
}

// JtimesFn computes the Jacobian-vector product jv = J(u)·v. fu holds F(u)
type JtimesFn func(jv, v, u, fu nvec.Vector) Status

// Glue wraps the system function, an optional user Jacobian-vector-product
// routine and an optional preconditioner into what the Krylov solver needs.
// When Jtimes is absent, products fall back to a one-sided difference
// quotient of the system function along v, costing exactly one extra system
// function call per product
type Glue struct {
	Fn     SysFn
	Jtimes JtimesFn // may be nil: difference-quotient fallback
	Prec   PrecOps  // may be nil: no preconditioning
	Rel    float64  // relative error parameter for the fallback; 0 = default

	utemp nvec.Vector
	ftemp nvec.Vector
}

// NewGlue returns the glue for the given routines
func NewGlue(fn SysFn, jtimes JtimesFn, prec PrecOps) *Glue {
	return &Glue{Fn: fn, Jtimes: jtimes, Prec: prec}
}

// JacTimesVec computes jv = J(u)·v, via the user routine or the fallback.
// stats receives the product and function-call counters
func (o *Glue) JacTimesVec(jv, v, u, fu nvec.Vector, stats *Stats) (st Status) {
	stats.Njtimes++
	if o.Jtimes != nil {
		return o.Jtimes(jv, v, u, fu)
	}

	// difference-quotient fallback: J·v ≈ (F(u+σ·v) - F(u)) / σ with the
	// perturbation σ proportional to the vector norms and Rel
	if o.Rel == 0 {
		o.Rel = mat.DefaultDqrely
	}
	vnorm := v.Norm2()
	if vnorm == 0 {
		jv.Fill(0)
		return Ok()
	}
	unorm := u.Norm2()
	if unorm < 1.0 {
		unorm = 1.0
	}
	σ := o.Rel * unorm / vnorm
	if o.utemp == nil {
		o.utemp = u.NewLike()
		o.ftemp = u.NewLike()
	}
	o.utemp.LinSum(1, u, σ, v)
	stats.Nfe++
	if st = o.Fn(o.ftemp, o.utemp); !st.IsOk() {
		return
	}
	jv.LinSum(1.0/σ, o.ftemp, -1.0/σ, fu)
	return Ok()
}
