// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import (
	"math"

	"github.com/cpmech/nks/mat"
	"github.com/cpmech/nks/nvec"
)

// Dense implements LinSolver with a dense Jacobian and dense LU. The
// Jacobian comes from a user routine or, if absent, from one-sided
// difference quotients, one system function call per column. A copy of the
// last Jacobian is saved so a setup call with jok=true can rebuild the
// iteration matrix without any new function evaluations
type Dense struct {
	Mode   Mode
	Dqrely float64 // relative perturbation for difference quotients; 0 = default

	n   int
	fn  SysFn
	jac JacDenseFn // may be nil: difference quotients

	jmat  *mat.Dense // saved Jacobian
	mmat  *mat.Dense // iteration matrix (factorised)
	utemp nvec.Vector
	ftemp nvec.Vector

	haveJ     bool
	setupDone bool
	stats     Stats
}

// NewDense returns a dense linear solver for a problem of size n. jac may be
// nil to select the difference-quotient Jacobian
func NewDense(n int, mode Mode, fn SysFn, jac JacDenseFn) *Dense {
	return &Dense{Mode: mode, n: n, fn: fn, jac: jac}
}

// Init allocates the two n×n matrices
func (o *Dense) Init() (st Status) {
	var err error
	o.jmat, err = mat.NewDense(o.n)
	if err != nil {
		return Fail("cannot allocate dense Jacobian: %v", err)
	}
	o.mmat, err = mat.NewDense(o.n)
	if err != nil {
		return Fail("cannot allocate dense iteration matrix: %v", err)
	}
	if o.Dqrely == 0 {
		o.Dqrely = mat.DefaultDqrely
	}
	if o.Dqrely < 0 {
		return Fail("relative perturbation must be non-negative. dqrely=%g is invalid", o.Dqrely)
	}
	return Ok()
}

// Setup regenerates (or reuses) the Jacobian, forms the iteration matrix and
// factorises it
func (o *Dense) Setup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st Status) {
	o.stats.Nsetups++

	// fresh Jacobian
	if !jok || !o.haveJ {
		jcur = true
		o.stats.Nje++
		if o.jac != nil {
			st = o.jac(o.jmat, u, fu)
		} else {
			st = o.dqJacobian(u, fu)
		}
		if !st.IsOk() {
			return
		}
		o.haveJ = true
	}

	// form M and factorise
	o.mmat.CopyFrom(o.jmat)
	if o.Mode == IminusGammaJ {
		o.mmat.Scale(-γ)
		o.mmat.AddIdentity()
	}
	o.stats.Nfact++
	if info := o.mmat.Fact(); info > 0 {
		o.setupDone = false // an earlier factorisation is gone too
		return jcur, Recov("dense factorisation failed: zero pivot at column %d", info)
	}
	o.setupDone = true
	return jcur, Ok()
}

// Solve computes x from b by dense back-substitution. tol is ignored
func (o *Dense) Solve(x, b nvec.Vector, tol float64) Status {
	if !o.setupDone {
		return Fail("solve called before a successful setup")
	}
	x.CopyFrom(b)
	o.mmat.Solve(x.Access())
	return Ok()
}

// Free releases the workspace
func (o *Dense) Free() {
	o.jmat, o.mmat = nil, nil
	o.utemp, o.ftemp = nil, nil
	o.haveJ, o.setupDone = false, false
}

// Workspace returns the real and integer footprint
func (o *Dense) Workspace() (nr, ni int) {
	return 2*o.n*o.n + 2*o.n, 2 * o.n
}

// Stat gives read access to the counters
func (o *Dense) Stat() *Stats { return &o.stats }

// dqJacobian builds the dense Jacobian by one-sided difference quotients,
// one column at a time: ∂F/∂uⱼ ≈ (F(u+σⱼeⱼ) - F(u)) / σⱼ with the
// perturbation σⱼ = dqrely·max(|uⱼ|, 1) carrying the sign of uⱼ
func (o *Dense) dqJacobian(u, fu nvec.Vector) (st Status) {
	if o.utemp == nil {
		o.utemp = u.NewLike()
		o.ftemp = u.NewLike()
	}
	uu := o.utemp.Access()
	ff := o.ftemp.Access()
	f0 := fu.Access()
	o.utemp.CopyFrom(u)
	for j := 0; j < o.n; j++ {
		σ := dqPerturb(uu[j], o.Dqrely)
		saved := uu[j]
		uu[j] += σ
		o.stats.Nfe++
		if st = o.fn(o.ftemp, o.utemp); !st.IsOk() {
			return
		}
		uu[j] = saved
		for i := 0; i < o.n; i++ {
			o.jmat.Set(i, j, (ff[i]-f0[i])/σ)
		}
	}
	return Ok()
}

// dqPerturb returns the difference-quotient increment rel·max(|val|,1),
// carrying the sign of val so the perturbed component moves away from zero
func dqPerturb(val, rel float64) float64 {
	σ := rel * math.Max(math.Abs(val), 1.0)
	if val < 0 {
		return -σ
	}
	return σ
}
