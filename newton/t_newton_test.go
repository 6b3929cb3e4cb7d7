// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package newton

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/nks/lsolve"
	"github.com/cpmech/nks/nvec"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

func Test_newton01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton01. root finding with difference quotients")

	// F(u) = u∘u - 4: the positive root is u = 2
	n := 3
	fn := func(fu, u nvec.Vector) lsolve.Status {
		uu, ff := u.Access(), fu.Access()
		for i := range uu {
			ff[i] = uu[i]*uu[i] - 4
		}
		return lsolve.Ok()
	}
	ls := lsolve.NewDense(n, lsolve.PlainJ, fn, nil)
	pol := lsolve.NewStalePolicy()
	sv := NewSolver(fn, ls, pol)
	sv.NmaxIt = 20
	sv.ShowR = chk.Verbose

	u := nvec.NewSerial(n)
	if st := sv.Init(u); !st.IsOk() {
		tst.Errorf("Init failed: %v", st)
		return
	}
	u.Fill(1.9) // modified Newton: the Jacobian from here is kept all along
	if st := sv.Run(u, 0, 0); !st.IsOk() {
		tst.Errorf("Run failed: %v", st)
		return
	}
	chk.Vector(tst, "u", 1e-6, u.Access(), []float64{2, 2, 2})
	if sv.Stat().Nit < 3 {
		tst.Errorf("a quadratic problem needs several iterations: nit=%d", sv.Stat().Nit)
	}
	chk.IntAssert(sv.Stat().Ncfn, 0)
}

func Test_newton02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton02. corrector equation of an implicit step")

	// right-hand side f(y) = -λ∘y; the corrector residual is
	// R(y) = y - ypred - γ·f(y), solved with M = I - γ·J built from f
	λ := []float64{2, 5}
	ypred := []float64{1, 2}
	γ := 0.1
	rhs := func(fy, y nvec.Vector) lsolve.Status {
		yy, ff := y.Access(), fy.Access()
		for i := range yy {
			ff[i] = -λ[i] * yy[i]
		}
		return lsolve.Ok()
	}
	res := func(ry, y nvec.Vector) lsolve.Status {
		yy, rr := y.Access(), ry.Access()
		for i := range yy {
			rr[i] = yy[i] - ypred[i] + γ*λ[i]*yy[i]
		}
		return lsolve.Ok()
	}
	ls := lsolve.NewDense(2, lsolve.IminusGammaJ, rhs, nil)
	pol := lsolve.NewStalePolicy()
	sv := NewSolver(res, ls, pol)

	y := nvec.WrapSerial([]float64{1, 2}) // predictor value
	if st := sv.Init(y); !st.IsOk() {
		tst.Errorf("Init failed: %v", st)
		return
	}
	if st := sv.Run(y, γ, 0); !st.IsOk() {
		tst.Errorf("Run failed: %v", st)
		return
	}

	// y = ypred / (1 + γλ)
	chk.Vector(tst, "y", 1e-10, y.Access(), []float64{1.0 / 1.2, 2.0 / 1.5})
	chk.IntAssert(ls.Stat().Nsetups, 1) // modified Newton: one setup per call
}

func Test_newton03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("newton03. forced refresh after failing with stale data")

	// linear problem whose slope changes between calls: the second call
	// starts from a reused, now wrong Jacobian, diverges, and must retry
	// with a forced fresh evaluation
	a := 1.0
	fn := func(fu, u nvec.Vector) lsolve.Status {
		fu.Access()[0] = a*u.Access()[0] - 2
		return lsolve.Ok()
	}
	ls := lsolve.NewDense(1, lsolve.PlainJ, fn, nil)
	pol := lsolve.NewStalePolicy()
	sv := NewSolver(fn, ls, pol)
	sv.DvgCtrl = true
	sv.ShowR = chk.Verbose

	u := nvec.NewSerial(1)
	if st := sv.Init(u); !st.IsOk() {
		tst.Errorf("Init failed: %v", st)
		return
	}
	if st := sv.Run(u, 0, 0); !st.IsOk() {
		tst.Errorf("first Run failed: %v", st)
		return
	}
	chk.Scalar(tst, "u", 1e-12, u.Access()[0], 2)
	chk.IntAssert(ls.Stat().Nje, 1)

	// calling again at the solution converges immediately
	nit := sv.Stat().Nit
	if st := sv.Run(u, 0, 0); !st.IsOk() {
		tst.Errorf("Run at the solution failed: %v", st)
		return
	}
	chk.IntAssert(sv.Stat().Nit, nit)

	// slope change: the policy still reports the saved data as usable
	a = 100
	if st := sv.Run(u, 0, 1); !st.IsOk() {
		tst.Errorf("Run with changed slope failed: %v", st)
		return
	}
	chk.Scalar(tst, "u", 1e-9, u.Access()[0], 0.02)
	chk.IntAssert(ls.Stat().Nje, 2) // initial build + forced refresh
	if sv.Stat().Ncfn < 1 {
		tst.Errorf("the failed attempt with stale data must be counted: ncfn=%d", sv.Stat().Ncfn)
	}
}
