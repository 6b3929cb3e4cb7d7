// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mat

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Band holds a square banded matrix with upper half-bandwidth Mu and lower
// half-bandwidth Ml, stored column-oriented. The working upper half-bandwidth
// Smu (Mu ≤ Smu ≤ n-1) reserves room for the fill-in created by row swaps
// during factorisation; a matrix that will be factorised must be allocated
// with Smu = min(n-1, Mu+Ml). Element (i,j) of column j lives at storage row
// i-j+Smu; the layout is never exposed: access goes through Get/Set/InBand.
type Band struct {
	N        int         // order of matrix
	Mu       int         // upper half-bandwidth
	Ml       int         // lower half-bandwidth
	Smu      int         // working upper half-bandwidth (≥ Mu)
	cols     [][]float64 // column storage: n columns of Smu+Ml+1 values
	piv      []int       // row permutation from partial pivoting
	factored bool        // Fact has succeeded
}

// NewBand allocates a zeroed n×n banded matrix. Use smu = min(n-1, mu+ml)
// when the matrix will be factorised; smu = mu suffices for storage-only use
func NewBand(n, mu, ml, smu int) (o *Band, err error) {
	if n < 1 {
		return nil, chk.Err("NewBand: order must be at least 1. n=%d is invalid", n)
	}
	if mu < 0 || ml < 0 || mu > n-1 || ml > n-1 {
		return nil, chk.Err("NewBand: half-bandwidths must be within [0,n-1]. mu=%d ml=%d n=%d", mu, ml, n)
	}
	if smu < mu || smu > n-1 {
		return nil, chk.Err("NewBand: working upper half-bandwidth must be within [mu,n-1]. smu=%d mu=%d n=%d", smu, mu, n)
	}
	o = new(Band)
	o.N, o.Mu, o.Ml, o.Smu = n, mu, ml, smu
	o.cols = make([][]float64, n)
	for j := 0; j < n; j++ {
		o.cols[j] = make([]float64, smu+ml+1)
	}
	o.piv = make([]int, n)
	return
}

// InBand tells whether (i,j) lies within the declared band
func (o *Band) InBand(i, j int) bool {
	return j-i <= o.Mu && i-j <= o.Ml
}

// Get returns the value at (i,j); positions outside the band are zero
func (o *Band) Get(i, j int) float64 {
	if !o.InBand(i, j) {
		return 0
	}
	return o.cols[j][i-j+o.Smu]
}

// Set assigns the value at (i,j); positions outside the band are invalid
func (o *Band) Set(i, j int, v float64) {
	if !o.InBand(i, j) {
		chk.Panic("Band.Set: (%d,%d) is outside the band: mu=%d ml=%d", i, j, o.Mu, o.Ml)
	}
	o.cols[j][i-j+o.Smu] = v
	o.factored = false
}

// Fill sets all stored components to s and clears factorisation data
func (o *Band) Fill(s float64) {
	for j := 0; j < o.N; j++ {
		col := o.cols[j]
		for k := range col {
			col[k] = s
		}
	}
	o.factored = false
}

// CopyBandFrom zeroes this matrix and copies the band entries of b into it.
// The receiver band must contain the band of b
func (o *Band) CopyBandFrom(b *Band) {
	if b.N != o.N || b.Mu > o.Mu || b.Ml > o.Ml {
		chk.Panic("Band.CopyBandFrom: incompatible shapes: n=%d/%d mu=%d/%d ml=%d/%d", o.N, b.N, o.Mu, b.Mu, o.Ml, b.Ml)
	}
	o.Fill(0)
	for j := 0; j < o.N; j++ {
		ibeg := j - b.Mu
		if ibeg < 0 {
			ibeg = 0
		}
		iend := j + b.Ml
		if iend > o.N-1 {
			iend = o.N - 1
		}
		for i := ibeg; i <= iend; i++ {
			o.cols[j][i-j+o.Smu] = b.cols[j][i-j+b.Smu]
		}
	}
	o.factored = false
}

// Scale multiplies all band components by s
func (o *Band) Scale(s float64) {
	for j := 0; j < o.N; j++ {
		col := o.cols[j]
		for k := range col {
			col[k] *= s
		}
	}
	o.factored = false
}

// AddIdentity adds 1 to each diagonal component
func (o *Band) AddIdentity() {
	for j := 0; j < o.N; j++ {
		o.cols[j][o.Smu] += 1.0
	}
	o.factored = false
}

// Fact factorises the matrix in place as P·A = L·U with partial pivoting,
// using the band storage only (row swaps stay within the Smu+Ml+1 stored
// diagonals). info == 0 means success; info == k (1-based) means a zero
// pivot at column k. Requires Smu = min(n-1, Mu+Ml)
func (o *Band) Fact() (info int) {
	n := o.N
	if o.Smu < o.Mu+o.Ml && o.Smu < n-1 {
		chk.Panic("Band.Fact: matrix was not allocated for factorisation: smu=%d mu=%d ml=%d", o.Smu, o.Mu, o.Ml)
	}
	for c := 0; c < n; c++ {
		colc := o.cols[c]

		// last row within the lower band of column c
		l := c + o.Ml
		if l > n-1 {
			l = n - 1
		}

		// find pivot row
		p := c
		max := math.Abs(colc[o.Smu])
		for i := c + 1; i <= l; i++ {
			if v := math.Abs(colc[i-c+o.Smu]); v > max {
				max = v
				p = i
			}
		}
		if max == 0 {
			return c + 1
		}
		o.piv[c] = p

		// rightmost column touched by rows c and p
		ju := c + o.Smu
		if ju > n-1 {
			ju = n - 1
		}

		// swap rows c and p within the stored band
		if p != c {
			for j := c; j <= ju; j++ {
				colj := o.cols[j]
				colj[c-j+o.Smu], colj[p-j+o.Smu] = colj[p-j+o.Smu], colj[c-j+o.Smu]
			}
		}

		// multipliers
		pivot := colc[o.Smu]
		for i := c + 1; i <= l; i++ {
			colc[i-c+o.Smu] /= pivot
		}

		// trailing submatrix update, column by column
		for j := c + 1; j <= ju; j++ {
			colj := o.cols[j]
			m := colj[c-j+o.Smu]
			if m == 0 {
				continue
			}
			for i := c + 1; i <= l; i++ {
				colj[i-j+o.Smu] -= m * colc[i-c+o.Smu]
			}
		}
	}
	o.factored = true
	return 0
}

// Solve replaces b by the solution of A·x = b using the factorisation
// computed by Fact
func (o *Band) Solve(b []float64) {
	if !o.factored {
		chk.Panic("Band.Solve: matrix must be factorised first")
	}
	n := o.N

	// forward substitution with row swaps and unit lower triangle
	for k := 0; k < n; k++ {
		if p := o.piv[k]; p != k {
			b[k], b[p] = b[p], b[k]
		}
		colk := o.cols[k]
		l := k + o.Ml
		if l > n-1 {
			l = n - 1
		}
		for i := k + 1; i <= l; i++ {
			b[i] -= colk[i-k+o.Smu] * b[k]
		}
	}

	// back substitution
	for k := n - 1; k >= 0; k-- {
		colk := o.cols[k]
		b[k] /= colk[o.Smu]
		first := k - o.Smu
		if first < 0 {
			first = 0
		}
		for i := first; i < k; i++ {
			b[i] -= colk[i-k+o.Smu] * b[k]
		}
	}
}

// EqualBand tells whether the stored band values of two matrices are
// bit-identical (same shape, same values, same pivots if factored)
func (o *Band) EqualBand(b *Band) bool {
	if b.N != o.N || b.Mu != o.Mu || b.Ml != o.Ml || b.Smu != o.Smu {
		return false
	}
	for j := 0; j < o.N; j++ {
		for k := range o.cols[j] {
			if o.cols[j][k] != b.cols[j][k] {
				return false
			}
		}
	}
	if o.factored != b.factored {
		return false
	}
	if o.factored {
		for j := 0; j < o.N; j++ {
			if o.piv[j] != b.piv[j] {
				return false
			}
		}
	}
	return true
}
