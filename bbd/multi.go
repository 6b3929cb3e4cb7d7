// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bbd

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/nks/lsolve"
	"github.com/cpmech/nks/nvec"
)

// Multi owns one block per partition of an in-process block-partitioned
// system and implements lsolve.PrecOps over the whole vector. Each partition
// keeps its own buffers in the arena below; no partition ever references
// another partition's data. Local failures are aggregated: if any partition
// fails recoverably the whole setup reports a single recoverable status
type Multi struct {
	parts   []*Prec
	offsets []int // partition p covers [offsets[p], offsets[p+1])
}

// NewMulti allocates one preconditioner block per partition. glocOf returns
// the local approximation function of partition p, operating on that
// partition's segment only; cfnOf may return nil functions when a partition
// needs no communication
func NewMulti(specs []PartSpec, mode lsolve.Mode, glocOf func(p int) LocalFn, cfnOf func(p int) CommFn) (o *Multi, err error) {
	if len(specs) < 1 {
		return nil, chk.Err("bbd.NewMulti: at least one partition is required")
	}
	o = new(Multi)
	o.parts = make([]*Prec, len(specs))
	o.offsets = make([]int, len(specs)+1)
	for p, spec := range specs {
		var cfn CommFn
		if cfnOf != nil {
			cfn = cfnOf(p)
		}
		o.parts[p], err = Alloc(spec, glocOf(p), cfn)
		if err != nil {
			return nil, chk.Err("bbd.NewMulti: partition %d: %v", p, err)
		}
		o.parts[p].Mode = mode
		o.offsets[p+1] = o.offsets[p] + spec.Nlocal
	}
	return
}

// Npart returns the number of partitions
func (o *Multi) Npart() int { return len(o.parts) }

// Part gives access to one partition's block (e.g. for counters)
func (o *Multi) Part(p int) *Prec { return o.parts[p] }

// Len returns the total number of unknowns covered by the partitions
func (o *Multi) Len() int { return o.offsets[len(o.parts)] }

// PrecSetup runs the per-partition setups and aggregates their outcomes: a
// single fatal failure wins over recoverable ones; any recoverable failure
// makes the whole setup recoverable ("at least one partition failed")
func (o *Multi) PrecSetup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st lsolve.Status) {
	if u.Len() != o.Len() {
		return false, lsolve.Fail("bbd: vector length %d does not match partitions total %d", u.Len(), o.Len())
	}
	st = lsolve.Ok()
	nrecov := 0
	uu := u.Access()
	ff := fu.Access()
	for p, prec := range o.parts {
		ul := nvec.WrapSerial(uu[o.offsets[p]:o.offsets[p+1]])
		fl := nvec.WrapSerial(ff[o.offsets[p]:o.offsets[p+1]])
		jcurp, stp := prec.PrecSetup(ul, fl, γ, jok)
		jcur = jcur || jcurp
		if stp.IsFatal() {
			return jcur, stp
		}
		if stp.IsRecoverable() {
			nrecov++
		}
	}
	if nrecov > 0 {
		return jcur, lsolve.Recov("bbd: setup failed on %d of %d partitions", nrecov, len(o.parts))
	}
	return jcur, st
}

// PrecSolve applies each partition's factorised block to its segment of r
func (o *Multi) PrecSolve(z, r nvec.Vector, γ, δ float64, side lsolve.Side) lsolve.Status {
	zz := z.Access()
	rr := r.Access()
	for p, prec := range o.parts {
		zl := nvec.WrapSerial(zz[o.offsets[p]:o.offsets[p+1]])
		rl := nvec.WrapSerial(rr[o.offsets[p]:o.offsets[p+1]])
		if st := prec.PrecSolve(zl, rl, γ, δ, side); !st.IsOk() {
			return st
		}
	}
	return lsolve.Ok()
}

// NumGlocEvals returns the total number of local-approximation evaluations
// over all partitions
func (o *Multi) NumGlocEvals() (nge int) {
	for _, prec := range o.parts {
		nge += prec.NumGlocEvals()
	}
	return
}

// Workspace returns the combined real and integer footprint
func (o *Multi) Workspace() (nr, ni int) {
	for _, prec := range o.parts {
		nrp, nip := prec.Workspace()
		nr += nrp
		ni += nip
	}
	return
}

// Free releases all partition workspaces
func (o *Multi) Free() {
	for _, prec := range o.parts {
		prec.Free()
	}
	o.parts = nil
}

// GlobalStatus combines one distributed partition's status across all
// processors: if any partition failed recoverably every processor gets a
// recoverable status back, and a fatal failure anywhere is fatal everywhere.
// Without MPI the status passes through unchanged
func GlobalStatus(st lsolve.Status) lsolve.Status {
	if !mpi.IsOn() || mpi.Size() < 2 {
		return st
	}
	flags := make([]float64, 2)
	wsp := make([]float64, 2)
	switch st.Kind {
	case lsolve.Recoverable:
		flags[0] = 1
	case lsolve.Fatal:
		flags[1] = 1
	}
	mpi.AllReduceSum(flags, wsp)
	if flags[1] > 0 {
		return lsolve.Fail("bbd: fatal failure on at least one partition")
	}
	if flags[0] > 0 {
		return lsolve.Recov("bbd: at least one partition failed")
	}
	return lsolve.Ok()
}
