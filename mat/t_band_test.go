// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mat

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_band01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("band01. tridiagonal solve versus dense")

	n := 5
	a, err := NewBand(n, 1, 1, 2)
	if err != nil {
		tst.Errorf("NewBand failed:\n%v", err)
		return
	}
	d, _ := NewDense(n)
	for i := 0; i < n; i++ {
		d.Set(i, i, 2)
		a.Set(i, i, 2)
		if i > 0 {
			d.Set(i, i-1, -1)
			a.Set(i, i-1, -1)
		}
		if i < n-1 {
			d.Set(i, i+1, -1)
			a.Set(i, i+1, -1)
		}
	}

	chk.IntAssert(a.Fact(), 0)
	chk.IntAssert(d.Fact(), 0)
	ba := []float64{1, 2, 3, 4, 5}
	bd := []float64{1, 2, 3, 4, 5}
	a.Solve(ba)
	d.Solve(bd)
	chk.Vector(tst, "x", 1e-14, ba, bd)
}

func Test_band02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("band02. pivoting within the band")

	// zero diagonal: factorisation must swap rows
	a, _ := NewBand(2, 1, 1, 1)
	a.Set(0, 1, 1)
	a.Set(1, 0, 1)
	chk.IntAssert(a.Fact(), 0)
	b := []float64{1, 2}
	a.Solve(b)
	chk.Vector(tst, "x", 1e-15, b, []float64{2, 1})

	// truly singular
	s, _ := NewBand(2, 0, 0, 0)
	chk.IntAssert(s.Fact(), 1)
}

func Test_band03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("band03. wider band with row swaps versus dense")

	n, mu, ml := 6, 1, 2
	a, _ := NewBand(n, mu, ml, mu+ml)
	d, _ := NewDense(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j-i > mu || i-j > ml {
				continue
			}
			// small diagonal values make pivoting likely
			v := math.Sin(float64(3*i + 2*j + 1))
			if i == j {
				v *= 0.01
			}
			a.Set(i, j, v)
			d.Set(i, j, v)
		}
	}
	chk.IntAssert(a.Fact(), 0)
	chk.IntAssert(d.Fact(), 0)
	ba := []float64{1, -1, 2, -2, 3, -3}
	bd := []float64{1, -1, 2, -2, 3, -3}
	a.Solve(ba)
	d.Solve(bd)
	chk.Vector(tst, "x", 1e-11, ba, bd)
}

func Test_band04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("band04. access, band copy and comparison")

	a, _ := NewBand(4, 1, 1, 1)
	if a.InBand(0, 2) {
		tst.Errorf("(0,2) must be outside a tridiagonal band")
	}
	chk.Scalar(tst, "outside", 1e-17, a.Get(0, 2), 0)
	a.Set(1, 2, 7)
	chk.Scalar(tst, "a12", 1e-17, a.Get(1, 2), 7)

	// copy a tridiagonal band into a wider one; outside stays zero
	w, _ := NewBand(4, 2, 2, 2)
	w.Set(0, 2, 9)
	w.CopyBandFrom(a)
	chk.Scalar(tst, "w12", 1e-17, w.Get(1, 2), 7)
	chk.Scalar(tst, "w02", 1e-17, w.Get(0, 2), 0)

	b, _ := NewBand(4, 1, 1, 1)
	b.Set(1, 2, 7)
	if !a.EqualBand(b) {
		tst.Errorf("matrices with equal band values must compare equal")
	}
	b.Set(1, 2, 8)
	if a.EqualBand(b) {
		tst.Errorf("matrices with different band values must compare different")
	}
	if a.EqualBand(w) {
		tst.Errorf("matrices with different shapes must compare different")
	}
}

func Test_band05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("band05. allocation errors")

	if _, err := NewBand(0, 0, 0, 0); err == nil {
		tst.Errorf("NewBand should have failed with n=0")
	}
	if _, err := NewBand(4, 4, 0, 4); err == nil {
		tst.Errorf("NewBand should have failed with mu=n")
	}
	if _, err := NewBand(4, 2, 0, 1); err == nil {
		tst.Errorf("NewBand should have failed with smu<mu")
	}
}
