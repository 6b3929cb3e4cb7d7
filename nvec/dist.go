// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nvec

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/mpi"
)

// Dist implements Vector over the local segment of a vector distributed
// across MPI processors. Reductions are global: every processor gets the
// same dot product and norm values. Pointwise operations touch only the
// local segment, so no communication happens outside of reductions.
type Dist struct {
	v    []float64 // local segment
	ntot int       // global length
	red  []float64 // reduction buffer
	wsp  []float64 // reduction workspace
}

// NewDist returns a new zeroed distributed vector with nlocal components on
// this processor and ntot components overall
func NewDist(nlocal, ntot int) *Dist {
	if nlocal < 1 || ntot < nlocal {
		chk.Panic("NewDist: invalid sizes: nlocal=%d ntot=%d", nlocal, ntot)
	}
	return &Dist{
		v:    make([]float64, nlocal),
		ntot: ntot,
		red:  make([]float64, 1),
		wsp:  make([]float64, 1),
	}
}

func (o *Dist) Len() int          { return len(o.v) }
func (o *Dist) Access() []float64 { return o.v }

func (o *Dist) NewLike() Vector {
	return NewDist(len(o.v), o.ntot)
}

func (o *Dist) Fill(s float64) {
	la.VecFill(o.v, s)
}

func (o *Dist) Scale(s float64) {
	for i := range o.v {
		o.v[i] *= s
	}
}

func (o *Dist) CopyFrom(u Vector) {
	copy(o.v, u.Access())
}

func (o *Dist) LinSum(α float64, u Vector, β float64, v Vector) {
	uu, vv := u.Access(), v.Access()
	for i := range o.v {
		o.v[i] = α*uu[i] + β*vv[i]
	}
}

func (o *Dist) Dot(u Vector) float64 {
	return o.reduce(dotLocal(o.v, u.Access()))
}

func (o *Dist) Norm2() float64 {
	return math.Sqrt(o.reduce(dotLocal(o.v, o.v)))
}

func (o *Dist) NormWrms(w Vector) float64 {
	return math.Sqrt(o.reduce(wrmsSumLocal(o.v, w.Access())) / float64(o.ntot))
}

// reduce sums a partial value over all processors
func (o *Dist) reduce(partial float64) float64 {
	if !mpi.IsOn() || mpi.Size() < 2 {
		return partial
	}
	o.red[0] = partial
	mpi.AllReduceSum(o.red, o.wsp)
	return o.red[0]
}
