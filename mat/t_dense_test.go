// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mat

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_dense01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dense01. LU factorisation with pivoting")

	// A[0][0] = 0 forces a row swap at the first column
	A := [][]float64{
		{0, 2, 1},
		{1, 1, 1},
		{2, 0, 3},
	}
	a, err := NewDense(3)
	if err != nil {
		tst.Errorf("NewDense failed:\n%v", err)
		return
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.Set(i, j, A[i][j])
		}
	}

	// b corresponds to x = (1, 2, 3)
	info := a.Fact()
	chk.IntAssert(info, 0)
	b := []float64{7, 6, 11}
	a.Solve(b)
	chk.Vector(tst, "x", 1e-14, b, []float64{1, 2, 3})
}

func Test_dense02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dense02. singular matrix and basic operations")

	a, _ := NewDense(2)
	a.Set(0, 0, 1)
	a.Set(0, 1, 2)
	a.Set(1, 0, 2)
	a.Set(1, 1, 4)
	info := a.Fact()
	chk.IntAssert(info, 2) // zero pivot at the second column

	b, _ := NewDense(2)
	b.Fill(0)
	b.Set(0, 1, 3)
	c, _ := NewDense(2)
	c.CopyFrom(b)
	c.Scale(2)
	c.AddIdentity()
	chk.Scalar(tst, "c00", 1e-17, c.Get(0, 0), 1)
	chk.Scalar(tst, "c01", 1e-17, c.Get(0, 1), 6)
	chk.Scalar(tst, "c11", 1e-17, c.Get(1, 1), 1)
	chk.Scalar(tst, "b01", 1e-17, b.Get(0, 1), 3)
}

func Test_dense03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dense03. allocation errors and default perturbation")

	_, err := NewDense(0)
	if err == nil {
		tst.Errorf("NewDense should have failed with n=0")
	}
	chk.Scalar(tst, "dqrely", 1e-17, DefaultDqrely*DefaultDqrely, UnitRoundoff)
}
