// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bbd implements the band-block-diagonal preconditioner: one banded
// block per spatial partition, each built by difference quotients of a
// user-supplied local approximation to the system function, factorised in
// place and applied independently of all other partitions. The same module
// serves the implicit integrators (block = I - γ·J̄) and the root finder
// (block = J̄).
package bbd

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/nks/lsolve"
	"github.com/cpmech/nks/mat"
	"github.com/cpmech/nks/nvec"
)

// LocalFn evaluates the local approximation g(u) into gu using local data
// only; any communication must have happened beforehand through the CommFn
type LocalFn func(gu, u nvec.Vector) lsolve.Status

// CommFn performs all inter-partition communication needed to evaluate the
// local approximation at u (e.g. a halo exchange). It is called once per
// Jacobian evaluation, never once per perturbed column: the communicated
// data are assumed independent of the local perturbations. It may skip
// communication already performed by a preceding system function call at the
// same u
type CommFn func(u nvec.Vector) lsolve.Status

// PartSpec holds the shape of one partition's block
type PartSpec struct {
	Nlocal int     // number of local unknowns
	Mudq   int     // upper half-bandwidth for the difference quotients
	Mldq   int     // lower half-bandwidth for the difference quotients
	Mukeep int     // upper half-bandwidth of the retained block
	Mlkeep int     // lower half-bandwidth of the retained block
	Dqrely float64 // relative perturbation; 0 = default √(unit roundoff)
}

// Prec holds the preconditioner data of one partition. It implements
// lsolve.PrecOps. The partition size and the kept half-bandwidths are fixed
// for the life of one allocation; ReInit changes only the difference
// bandwidths, the perturbation and the routines
type Prec struct {
	Mode lsolve.Mode

	spec PartSpec
	gloc LocalFn
	cfn  CommFn

	savedJ *mat.Band // difference-quotient Jacobian block, kept bandwidths
	savedP *mat.Band // preconditioner block, factorised in place
	utemp  nvec.Vector
	gtemp  nvec.Vector
	gref   nvec.Vector

	nge       int // local-approximation function evaluations
	haveJ     bool
	setupDone bool
}

// Alloc allocates the preconditioner data for one partition. The kept
// half-bandwidths must not exceed the difference-quotient ones; all
// bandwidths are clamped to [0, Nlocal-1]
func Alloc(spec PartSpec, gloc LocalFn, cfn CommFn) (o *Prec, err error) {
	if spec.Nlocal < 1 {
		return nil, chk.Err("bbd.Alloc: partition size must be at least 1. nlocal=%d is invalid", spec.Nlocal)
	}
	if gloc == nil {
		return nil, chk.Err("bbd.Alloc: local approximation function must be given")
	}
	if spec.Mukeep > spec.Mudq || spec.Mlkeep > spec.Mldq {
		return nil, chk.Err("bbd.Alloc: kept half-bandwidths must not exceed difference-quotient ones: mukeep=%d mudq=%d mlkeep=%d mldq=%d",
			spec.Mukeep, spec.Mudq, spec.Mlkeep, spec.Mldq)
	}
	if spec.Dqrely < 0 {
		return nil, chk.Err("bbd.Alloc: relative perturbation must be non-negative. dqrely=%g is invalid", spec.Dqrely)
	}
	spec.Mudq = clamp(spec.Mudq, spec.Nlocal)
	spec.Mldq = clamp(spec.Mldq, spec.Nlocal)
	spec.Mukeep = clamp(spec.Mukeep, spec.Nlocal)
	spec.Mlkeep = clamp(spec.Mlkeep, spec.Nlocal)
	if spec.Dqrely == 0 {
		spec.Dqrely = mat.DefaultDqrely
	}
	o = &Prec{spec: spec, gloc: gloc, cfn: cfn}
	o.savedJ, err = mat.NewBand(spec.Nlocal, spec.Mukeep, spec.Mlkeep, spec.Mukeep)
	if err != nil {
		return nil, chk.Err("bbd.Alloc: cannot allocate saved Jacobian block: %v", err)
	}
	smu := spec.Mukeep + spec.Mlkeep
	if smu > spec.Nlocal-1 {
		smu = spec.Nlocal - 1
	}
	o.savedP, err = mat.NewBand(spec.Nlocal, spec.Mukeep, spec.Mlkeep, smu)
	if err != nil {
		return nil, chk.Err("bbd.Alloc: cannot allocate preconditioner block: %v", err)
	}
	return
}

// ReInit re-initialises the module for a new problem of the same shape:
// partition size, kept bandwidths and workspace stay untouched
func (o *Prec) ReInit(mudq, mldq int, dqrely float64, gloc LocalFn, cfn CommFn) error {
	if gloc == nil {
		return chk.Err("bbd.ReInit: local approximation function must be given")
	}
	if dqrely < 0 {
		return chk.Err("bbd.ReInit: relative perturbation must be non-negative. dqrely=%g is invalid", dqrely)
	}
	mudq = clamp(mudq, o.spec.Nlocal)
	mldq = clamp(mldq, o.spec.Nlocal)
	if o.spec.Mukeep > mudq || o.spec.Mlkeep > mldq {
		return chk.Err("bbd.ReInit: kept half-bandwidths must not exceed difference-quotient ones: mukeep=%d mudq=%d mlkeep=%d mldq=%d",
			o.spec.Mukeep, mudq, o.spec.Mlkeep, mldq)
	}
	if dqrely == 0 {
		dqrely = mat.DefaultDqrely
	}
	o.spec.Mudq, o.spec.Mldq, o.spec.Dqrely = mudq, mldq, dqrely
	o.gloc, o.cfn = gloc, cfn
	o.haveJ, o.setupDone = false, false
	return nil
}

// PrecSetup builds (or reuses) the local block and factorises it. With
// jok=true and saved data available, the saved difference-quotient block is
// reused and only the scaling and factorisation are redone with the new γ;
// jcur reports which path ran. A singular block factorisation is recoverable
// so the caller can shrink the step and retry
func (o *Prec) PrecSetup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st lsolve.Status) {
	if !jok || !o.haveJ {
		jcur = true
		if o.cfn != nil {
			if st = o.cfn(u); !st.IsOk() {
				return
			}
		}
		if st = o.buildDQ(u); !st.IsOk() {
			return
		}
		o.haveJ = true
	}

	// form the block: I - γ·J̄ for the corrector, J̄ for root finding
	o.savedP.CopyBandFrom(o.savedJ)
	if o.Mode == lsolve.IminusGammaJ {
		o.savedP.Scale(-γ)
		o.savedP.AddIdentity()
	}
	if info := o.savedP.Fact(); info > 0 {
		o.setupDone = false // an earlier factorisation is gone too
		return jcur, lsolve.Recov("bbd: singular block factorisation: zero pivot at column %d", info)
	}
	o.setupDone = true
	return jcur, lsolve.Ok()
}

// PrecSolve applies the factorised block to the local segment of r, writing
// the result into z: an exact solve of the approximate block system,
// independent across partitions
func (o *Prec) PrecSolve(z, r nvec.Vector, γ, δ float64, side lsolve.Side) lsolve.Status {
	if !o.setupDone {
		return lsolve.Fail("bbd: solve called before a successful setup")
	}
	z.CopyFrom(r)
	o.savedP.Solve(z.Access())
	return lsolve.Ok()
}

// NumGlocEvals returns the cumulative number of local-approximation function
// evaluations. No side effects
func (o *Prec) NumGlocEvals() int { return o.nge }

// Workspace returns the real and integer footprint of this partition's data
func (o *Prec) Workspace() (nr, ni int) {
	n := o.spec.Nlocal
	nr = n*(o.savedJ.Smu+o.savedJ.Ml+1) + n*(o.savedP.Smu+o.savedP.Ml+1) + 3*n
	ni = n
	return
}

// Free releases the partition workspace
func (o *Prec) Free() {
	o.savedJ, o.savedP = nil, nil
	o.utemp, o.gtemp, o.gref = nil, nil, nil
	o.haveJ, o.setupDone = false, false
}

// buildDQ assembles the local Jacobian block by grouped forward difference
// quotients of gloc: all columns with equal index modulo mudq+mldq+1 are
// perturbed together, so a build costs 1+min(mudq+mldq+1,nlocal) gloc calls.
// Values outside the kept half-bandwidths are discarded
func (o *Prec) buildDQ(u nvec.Vector) (st lsolve.Status) {
	n := o.spec.Nlocal
	if o.utemp == nil {
		o.utemp = u.NewLike()
		o.gtemp = u.NewLike()
		o.gref = u.NewLike()
	}

	// reference evaluation
	o.nge++
	if st = o.gloc(o.gref, u); !st.IsOk() {
		return
	}

	uu := o.utemp.Access()
	gg := o.gtemp.Access()
	g0 := o.gref.Access()
	u0 := u.Access()
	rel := o.spec.Dqrely
	o.savedJ.Fill(0)
	width := o.spec.Mudq + o.spec.Mldq + 1
	ngroups := width
	if ngroups > n {
		ngroups = n
	}
	o.utemp.CopyFrom(u)
	for g := 0; g < ngroups; g++ {

		// perturb all columns of this group
		for j := g; j < n; j += width {
			uu[j] += perturb(u0[j], rel)
		}
		o.nge++
		if st = o.gloc(o.gtemp, o.utemp); !st.IsOk() {
			return
		}

		// restore and retain the entries within the kept bandwidths
		for j := g; j < n; j += width {
			uu[j] = u0[j]
			σ := perturb(u0[j], rel)
			ibeg := j - o.spec.Mukeep
			if ibeg < 0 {
				ibeg = 0
			}
			iend := j + o.spec.Mlkeep
			if iend > n-1 {
				iend = n - 1
			}
			for i := ibeg; i <= iend; i++ {
				o.savedJ.Set(i, j, (gg[i]-g0[i])/σ)
			}
		}
	}
	return lsolve.Ok()
}

// perturb returns the difference-quotient increment rel·max(|v|,1/rel),
// carrying the sign of v
func perturb(v, rel float64) float64 {
	av := v
	if av < 0 {
		av = -av
	}
	if av < 1.0/rel {
		av = 1.0 / rel
	}
	σ := rel * av
	if v < 0 {
		return -σ
	}
	return σ
}

// clamp restricts a half-bandwidth to [0, n-1]
func clamp(b, n int) int {
	if b < 0 {
		return 0
	}
	if b > n-1 {
		return n - 1
	}
	return b
}
