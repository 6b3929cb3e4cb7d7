// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nvec implements the vector kinds consumed by the solver kernel.
// A Vector carries the local segment of the state; reductions (dot products
// and norms) are global quantities, so distributed kinds must reduce across
// all processors. The kernel never depends on the concrete storage layout
// other than through this interface.
package nvec

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Vector is the capability interface over solver state vectors
type Vector interface {

	// Len returns the length of the local segment
	Len() int

	// Access returns the contiguous local segment for direct read/write
	Access() []float64

	// NewLike returns a new zeroed vector of the same kind and size
	NewLike() Vector

	// Fill sets all local components to s
	Fill(s float64)

	// Scale multiplies all local components by s
	Scale(s float64)

	// CopyFrom copies the local segment of u into this vector
	CopyFrom(u Vector)

	// LinSum computes this = α*u + β*v (componentwise). The receiver may
	// alias u or v
	LinSum(α float64, u Vector, β float64, v Vector)

	// Dot returns the (global) dot product of this vector and u
	Dot(u Vector) float64

	// Norm2 returns the (global) Euclidean norm
	Norm2() float64

	// NormWrms returns the (global) weighted root-mean-square norm:
	//   sqrt( Σ (vᵢ·wᵢ)² / N )  with N the global length
	NormWrms(w Vector) float64
}

// Serial implements Vector over a single in-process slice
type Serial struct {
	v []float64
}

// NewSerial returns a new zeroed serial vector with n components
func NewSerial(n int) *Serial {
	if n < 1 {
		chk.Panic("NewSerial: n must be at least 1. n=%d is invalid", n)
	}
	return &Serial{v: make([]float64, n)}
}

// WrapSerial wraps an existing slice without copying
func WrapSerial(v []float64) *Serial {
	return &Serial{v: v}
}

func (o *Serial) Len() int          { return len(o.v) }
func (o *Serial) Access() []float64 { return o.v }

func (o *Serial) NewLike() Vector {
	return &Serial{v: make([]float64, len(o.v))}
}

func (o *Serial) Fill(s float64) {
	la.VecFill(o.v, s)
}

func (o *Serial) Scale(s float64) {
	for i := range o.v {
		o.v[i] *= s
	}
}

func (o *Serial) CopyFrom(u Vector) {
	copy(o.v, u.Access())
}

func (o *Serial) LinSum(α float64, u Vector, β float64, v Vector) {
	uu, vv := u.Access(), v.Access()
	for i := range o.v {
		o.v[i] = α*uu[i] + β*vv[i]
	}
}

func (o *Serial) Dot(u Vector) float64 {
	return dotLocal(o.v, u.Access())
}

func (o *Serial) Norm2() float64 {
	return la.VecNorm(o.v)
}

func (o *Serial) NormWrms(w Vector) float64 {
	return math.Sqrt(wrmsSumLocal(o.v, w.Access()) / float64(len(o.v)))
}

// SetWeights fills w with the standard error weights 1/(atol + rtol*|uᵢ|)
func SetWeights(w, u Vector, atol, rtol float64) {
	ww, uu := w.Access(), u.Access()
	for i := range ww {
		ww[i] = 1.0 / (atol + rtol*math.Abs(uu[i]))
	}
}

// auxiliary: local kernels shared by the vector kinds

func dotLocal(u, v []float64) (res float64) {
	for i := range u {
		res += u[i] * v[i]
	}
	return
}

func wrmsSumLocal(u, w []float64) (res float64) {
	for i := range u {
		res += u[i] * w[i] * u[i] * w[i]
	}
	return
}
