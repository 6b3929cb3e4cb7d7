// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

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

func Test_conv01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conv01. residual history capture")

	var hist History
	hist.Append(true, 1.0)
	hist.Append(false, 0.1)
	hist.Append(false, 1e-3)
	hist.Append(true, 2.0)
	hist.Append(false, 0.2)

	chk.IntAssert(hist.Nsolves(), 2)
	chk.IntAssert(hist.Niter(0), 3)
	chk.IntAssert(hist.Niter(1), 2)
	chk.Scalar(tst, "f00", 1e-17, hist.F[0][0], 1.0)
	chk.Scalar(tst, "f02", 1e-17, hist.F[0][2], 1e-3)
	chk.Scalar(tst, "f11", 1e-17, hist.F[1][1], 0.2)

	table := hist.Table()
	if len(table) == 0 {
		tst.Errorf("table must not be empty")
	}
	if chk.Verbose {
		io.Pf("%v\n", table)
		hist.Plot("/tmp/nks", "conv01", false)
	}
}

func Test_conv02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("conv02. first record without explicit restart")

	var hist History
	hist.Append(false, 0.5) // tolerated: starts the first sequence
	chk.IntAssert(hist.Nsolves(), 1)
	chk.IntAssert(hist.Niter(0), 1)
}
