// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import (
	"github.com/cpmech/nks/mat"
	"github.com/cpmech/nks/nvec"
)

// Band implements LinSolver with a banded Jacobian and banded LU. The
// difference-quotient Jacobian perturbs groups of columns spaced mu+ml+1
// apart simultaneously, so a full build costs min(mu+ml+1, n) system
// function calls instead of n
type Band struct {
	Mode   Mode
	Dqrely float64 // relative perturbation for difference quotients; 0 = default

	n, mu, ml int
	fn        SysFn
	jac       JacBandFn // may be nil: difference quotients

	jmat  *mat.Band // saved Jacobian (storage band only)
	mmat  *mat.Band // iteration matrix (with room for pivoting fill-in)
	utemp nvec.Vector
	ftemp nvec.Vector

	haveJ     bool
	setupDone bool
	stats     Stats
}

// NewBand returns a banded linear solver for a problem of size n with upper
// and lower half-bandwidths mu and ml. jac may be nil to select the
// difference-quotient Jacobian
func NewBand(n, mu, ml int, mode Mode, fn SysFn, jac JacBandFn) *Band {
	return &Band{Mode: mode, n: n, mu: mu, ml: ml, fn: fn, jac: jac}
}

// Init allocates the banded matrices
func (o *Band) Init() (st Status) {
	var err error
	o.jmat, err = mat.NewBand(o.n, o.mu, o.ml, o.mu)
	if err != nil {
		return Fail("cannot allocate banded Jacobian: %v", err)
	}
	smu := o.mu + o.ml
	if smu > o.n-1 {
		smu = o.n - 1
	}
	o.mmat, err = mat.NewBand(o.n, o.mu, o.ml, smu)
	if err != nil {
		return Fail("cannot allocate banded iteration matrix: %v", err)
	}
	if o.Dqrely == 0 {
		o.Dqrely = mat.DefaultDqrely
	}
	if o.Dqrely < 0 {
		return Fail("relative perturbation must be non-negative. dqrely=%g is invalid", o.Dqrely)
	}
	return Ok()
}

// Setup regenerates (or reuses) the banded Jacobian, forms the iteration
// matrix within the band and factorises it
func (o *Band) Setup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st Status) {
	o.stats.Nsetups++

	// fresh Jacobian
	if !jok || !o.haveJ {
		jcur = true
		o.stats.Nje++
		if o.jac != nil {
			o.jmat.Fill(0)
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
	o.mmat.CopyBandFrom(o.jmat)
	if o.Mode == IminusGammaJ {
		o.mmat.Scale(-γ)
		o.mmat.AddIdentity()
	}
	o.stats.Nfact++
	if info := o.mmat.Fact(); info > 0 {
		o.setupDone = false // an earlier factorisation is gone too
		return jcur, Recov("banded factorisation failed: zero pivot at column %d", info)
	}
	o.setupDone = true
	return jcur, Ok()
}

// Solve computes x from b by banded back-substitution. tol is ignored
func (o *Band) Solve(x, b nvec.Vector, tol float64) Status {
	if !o.setupDone {
		return Fail("solve called before a successful setup")
	}
	x.CopyFrom(b)
	o.mmat.Solve(x.Access())
	return Ok()
}

// Free releases the workspace
func (o *Band) Free() {
	o.jmat, o.mmat = nil, nil
	o.utemp, o.ftemp = nil, nil
	o.haveJ, o.setupDone = false, false
}

// Workspace returns the real and integer footprint
func (o *Band) Workspace() (nr, ni int) {
	smu := o.mu + o.ml
	if smu > o.n-1 {
		smu = o.n - 1
	}
	nr = o.n*(o.mu+o.ml+1) + o.n*(smu+o.ml+1) + 2*o.n
	ni = 2 * o.n
	return
}

// Stat gives read access to the counters
func (o *Band) Stat() *Stats { return &o.stats }

// dqJacobian builds the banded Jacobian by grouped one-sided difference
// quotients: all columns j with the same j mod (mu+ml+1) are perturbed in a
// single system function call because their band rows do not overlap
func (o *Band) dqJacobian(u, fu nvec.Vector) (st Status) {
	if o.utemp == nil {
		o.utemp = u.NewLike()
		o.ftemp = u.NewLike()
	}
	uu := o.utemp.Access()
	ff := o.ftemp.Access()
	f0 := fu.Access()
	o.jmat.Fill(0)
	width := o.mu + o.ml + 1
	ngroups := width
	if ngroups > o.n {
		ngroups = o.n
	}
	o.utemp.CopyFrom(u)
	for g := 0; g < ngroups; g++ {

		// perturb all columns of this group at once
		for j := g; j < o.n; j += width {
			uu[j] += dqPerturb(uu[j], o.Dqrely)
		}
		o.stats.Nfe++
		if st = o.fn(o.ftemp, o.utemp); !st.IsOk() {
			return
		}

		// restore and load the band entries of each column
		u0 := u.Access()
		for j := g; j < o.n; j += width {
			uu[j] = u0[j]
			σ := dqPerturb(u0[j], o.Dqrely)
			ibeg := j - o.mu
			if ibeg < 0 {
				ibeg = 0
			}
			iend := j + o.ml
			if iend > o.n-1 {
				iend = o.n - 1
			}
			for i := ibeg; i <= iend; i++ {
				o.jmat.Set(i, j, (ff[i]-f0[i])/σ)
			}
		}
	}
	return Ok()
}
