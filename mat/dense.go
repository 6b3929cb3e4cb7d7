// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mat implements the small dense and banded matrix kernels used as
// building blocks by the linear solvers: storage, in-place LU factorisation
// with partial pivoting and forward/backward substitution.
package mat

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// DefaultDqrely is the default relative perturbation for difference-quotient
// Jacobian approximations: the square root of the unit roundoff. Passing 0
// wherever a dqrely parameter is accepted selects this value.
var DefaultDqrely = math.Sqrt(UnitRoundoff)

// UnitRoundoff is the double precision machine unit roundoff
const UnitRoundoff = 2.220446049250313e-16

// Dense holds a square dense matrix and, after Fact, its LU factorisation
type Dense struct {
	N        int         // order of matrix
	A        [][]float64 // matrix values; after Fact: L and U combined
	piv      []int       // row permutation from partial pivoting
	factored bool        // Fact has succeeded
}

// NewDense allocates a zeroed n×n dense matrix
func NewDense(n int) (o *Dense, err error) {
	if n < 1 {
		return nil, chk.Err("NewDense: order must be at least 1. n=%d is invalid", n)
	}
	o = new(Dense)
	o.N = n
	o.A = la.MatAlloc(n, n)
	o.piv = make([]int, n)
	return
}

// Fill sets all components to s and clears factorisation data
func (o *Dense) Fill(s float64) {
	la.MatFill(o.A, s)
	o.factored = false
}

// Get returns the value at (i,j)
func (o *Dense) Get(i, j int) float64 { return o.A[i][j] }

// Set assigns the value at (i,j)
func (o *Dense) Set(i, j int, v float64) {
	o.A[i][j] = v
	o.factored = false
}

// CopyFrom copies the values of b into this matrix
func (o *Dense) CopyFrom(b *Dense) {
	if b.N != o.N {
		chk.Panic("Dense.CopyFrom: order mismatch: %d != %d", o.N, b.N)
	}
	for i := 0; i < o.N; i++ {
		copy(o.A[i], b.A[i])
	}
	o.factored = false
}

// Scale multiplies all components by s
func (o *Dense) Scale(s float64) {
	for i := 0; i < o.N; i++ {
		for j := 0; j < o.N; j++ {
			o.A[i][j] *= s
		}
	}
	o.factored = false
}

// AddIdentity adds 1 to each diagonal component
func (o *Dense) AddIdentity() {
	for i := 0; i < o.N; i++ {
		o.A[i][i] += 1.0
	}
	o.factored = false
}

// Fact factorises the matrix in place as P·A = L·U with partial pivoting.
// info == 0 means success; info == k (1-based) means a zero pivot was found
// at column k and the matrix is singular to working precision. The LINPACK
// info convention is kept so callers can report the failing column.
func (o *Dense) Fact() (info int) {
	n := o.N
	for k := 0; k < n; k++ {

		// find pivot row
		p := k
		max := math.Abs(o.A[k][k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(o.A[i][k]); v > max {
				max = v
				p = i
			}
		}
		if max == 0 {
			return k + 1
		}
		o.piv[k] = p
		if p != k {
			o.A[k], o.A[p] = o.A[p], o.A[k]
		}

		// multipliers and trailing update
		pivot := o.A[k][k]
		for i := k + 1; i < n; i++ {
			o.A[i][k] /= pivot
			lik := o.A[i][k]
			if lik == 0 {
				continue
			}
			rowi, rowk := o.A[i], o.A[k]
			for j := k + 1; j < n; j++ {
				rowi[j] -= lik * rowk[j]
			}
		}
	}
	o.factored = true
	return 0
}

// Solve replaces b by the solution of A·x = b using the factorisation
// computed by Fact
func (o *Dense) Solve(b []float64) {
	if !o.factored {
		chk.Panic("Dense.Solve: matrix must be factorised first")
	}
	n := o.N

	// apply row permutation
	for k := 0; k < n; k++ {
		if p := o.piv[k]; p != k {
			b[k], b[p] = b[p], b[k]
		}
	}

	// forward substitution with unit lower triangle
	for i := 1; i < n; i++ {
		for j := 0; j < i; j++ {
			b[i] -= o.A[i][j] * b[j]
		}
	}

	// back substitution
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			b[i] -= o.A[i][j] * b[j]
		}
		b[i] /= o.A[i][i]
	}
}
