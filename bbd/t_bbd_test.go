// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bbd

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

// identity local approximation: g(u) = u
func glocIdentity(gu, u nvec.Vector) lsolve.Status {
	copy(gu.Access(), u.Access())
	return lsolve.Ok()
}

// banded affine local approximation: g(u) = C·u + d
func glocAffine(C [][]float64, d []float64) LocalFn {
	return func(gu, u nvec.Vector) lsolve.Status {
		uu, gg := u.Access(), gu.Access()
		for i := range gg {
			gg[i] = 0
			if d != nil {
				gg[i] = d[i]
			}
			for j := range uu {
				gg[i] += C[i][j] * uu[j]
			}
		}
		return lsolve.Ok()
	}
}

// banded linear local approximation: g(u) = C·u
func glocLinear(C [][]float64) LocalFn {
	return glocAffine(C, nil)
}

func Test_bbd01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd01. identity block and the jok protocol")

	spec := PartSpec{Nlocal: 2, Mudq: 1, Mldq: 1, Mukeep: 1, Mlkeep: 1}
	p, err := Alloc(spec, glocIdentity, nil)
	if err != nil {
		tst.Errorf("Alloc failed:\n%v", err)
		return
	}
	p.Mode = lsolve.IminusGammaJ
	u := nvec.NewSerial(2)
	fu := nvec.NewSerial(2)

	// g(u) = u gives the identity block regardless of the perturbation
	jcur, st := p.PrecSetup(u, fu, 0.1, false)
	if !st.IsOk() || !jcur {
		tst.Errorf("first setup must build fresh data: jcur=%v st=%v", jcur, st)
		return
	}
	chk.IntAssert(p.NumGlocEvals(), 3) // reference + min(mudq+mldq+1, nlocal) groups
	chk.Scalar(tst, "J00", 1e-17, p.savedJ.Get(0, 0), 1)
	chk.Scalar(tst, "J11", 1e-17, p.savedJ.Get(1, 1), 1)
	chk.Scalar(tst, "J01", 1e-17, p.savedJ.Get(0, 1), 0)
	chk.Scalar(tst, "J10", 1e-17, p.savedJ.Get(1, 0), 0)

	// block = I - 0.1·I = 0.9·I: solving scales by 1/0.9
	r := nvec.WrapSerial([]float64{3, -1.5})
	z := nvec.NewSerial(2)
	if st := p.PrecSolve(z, r, 0.1, 0, lsolve.Left); !st.IsOk() {
		tst.Errorf("PrecSolve failed: %v", st)
		return
	}
	chk.Scalar(tst, "z0", 1e-17, z.Access()[0], 3.0/0.9)
	chk.Scalar(tst, "z1", 1e-17, z.Access()[1], -1.5/0.9)

	// jok reuse: a new γ without any new local evaluations
	jcur, st = p.PrecSetup(u, fu, 0.5, true)
	if !st.IsOk() || jcur {
		tst.Errorf("setup with jok must reuse saved data: jcur=%v st=%v", jcur, st)
	}
	chk.IntAssert(p.NumGlocEvals(), 3)
	p.PrecSolve(z, r, 0.5, 0, lsolve.Left)
	chk.Scalar(tst, "z0", 1e-17, z.Access()[0], 3.0/0.5)

	// jok=false: a full rebuild
	jcur, _ = p.PrecSetup(u, fu, 0.5, false)
	if !jcur {
		tst.Errorf("setup without jok must rebuild")
	}
	chk.IntAssert(p.NumGlocEvals(), 6)
}

func Test_bbd02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd02. affine block round trip")

	// banded C with half-bandwidths 2: the difference-quotient block of
	// g(u) = C·u + d recovers C itself. The offset and the nonzero state
	// make the reference evaluation g(u) matter
	n := 5
	C := make([][]float64, n)
	for i := 0; i < n; i++ {
		C[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if j-i > 2 || i-j > 2 {
				continue
			}
			C[i][j] = float64(1 + (2*i+3*j)%4)
			if i == j {
				C[i][j] += 8 // diagonally dominant
			}
		}
	}
	d := []float64{1, -2, 3, -4, 5}
	spec := PartSpec{Nlocal: n, Mudq: 2, Mldq: 2, Mukeep: 2, Mlkeep: 2}
	p, err := Alloc(spec, glocAffine(C, d), nil)
	if err != nil {
		tst.Errorf("Alloc failed:\n%v", err)
		return
	}
	p.Mode = lsolve.PlainJ
	u := nvec.WrapSerial([]float64{0.5, -0.3, 0.2, -0.1, 0.4})
	fu := nvec.NewSerial(n)
	if _, st := p.PrecSetup(u, fu, 0, false); !st.IsOk() {
		tst.Errorf("PrecSetup failed: %v", st)
		return
	}
	chk.IntAssert(p.NumGlocEvals(), 6)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if p.savedJ.InBand(i, j) {
				chk.Scalar(tst, "J", 1e-13, p.savedJ.Get(i, j), C[i][j])
			}
		}
	}

	// C·z = r
	r := nvec.WrapSerial([]float64{1, 2, 3, 4, 5})
	z := nvec.NewSerial(n)
	if st := p.PrecSolve(z, r, 0, 0, lsolve.Left); !st.IsOk() {
		tst.Errorf("PrecSolve failed: %v", st)
		return
	}
	res := nvec.NewSerial(n)
	glocLinear(C)(res, z)
	chk.Vector(tst, "C·z", 1e-11, res.Access(), r.Access())
}

func Test_bbd03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd03. kept band narrower than the difference band")

	n := 6
	C := make([][]float64, n)
	for i := 0; i < n; i++ {
		C[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if j-i > 2 || i-j > 2 {
				continue
			}
			C[i][j] = 1
			if i == j {
				C[i][j] = 10
			}
		}
	}
	wide, _ := Alloc(PartSpec{Nlocal: n, Mudq: 2, Mldq: 2, Mukeep: 2, Mlkeep: 2}, glocLinear(C), nil)
	narrow, _ := Alloc(PartSpec{Nlocal: n, Mudq: 2, Mldq: 2, Mukeep: 1, Mlkeep: 1}, glocLinear(C), nil)
	wide.Mode, narrow.Mode = lsolve.PlainJ, lsolve.PlainJ
	u := nvec.NewSerial(n)
	fu := nvec.NewSerial(n)
	wide.PrecSetup(u, fu, 0, false)
	narrow.PrecSetup(u, fu, 0, false)

	// same evaluation cost, less retained data
	chk.IntAssert(wide.NumGlocEvals(), narrow.NumGlocEvals())
	chk.Scalar(tst, "wide J02", 1e-13, wide.savedJ.Get(0, 2), 1)
	chk.Scalar(tst, "narrow J02", 1e-17, narrow.savedJ.Get(0, 2), 0)
	chk.Scalar(tst, "narrow J01", 1e-13, narrow.savedJ.Get(0, 1), 1)
}

func Test_bbd04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd04. partition order does not change the blocks")

	// two partitions with different local operators: permuting the
	// partition order must produce bit-identical factorisations
	n := 3
	CA := [][]float64{{4, -1, 0}, {-1, 4, -1}, {0, -1, 4}}
	CB := [][]float64{{7, 2, 0}, {2, 7, 2}, {0, 2, 7}}
	spec := PartSpec{Nlocal: n, Mudq: 1, Mldq: 1, Mukeep: 1, Mlkeep: 1}
	mkMulti := func(first, second LocalFn) *Multi {
		m, err := NewMulti([]PartSpec{spec, spec}, lsolve.IminusGammaJ,
			func(p int) LocalFn {
				if p == 0 {
					return first
				}
				return second
			}, nil)
		if err != nil {
			tst.Fatalf("NewMulti failed:\n%v", err)
		}
		return m
	}
	m1 := mkMulti(glocLinear(CA), glocLinear(CB))
	m2 := mkMulti(glocLinear(CB), glocLinear(CA))
	chk.IntAssert(m1.Npart(), 2)
	chk.IntAssert(m1.Len(), 2*n)

	u := nvec.NewSerial(2 * n)
	fu := nvec.NewSerial(2 * n)
	γ := 0.1
	if _, st := m1.PrecSetup(u, fu, γ, false); !st.IsOk() {
		tst.Errorf("PrecSetup failed: %v", st)
		return
	}
	if _, st := m2.PrecSetup(u, fu, γ, false); !st.IsOk() {
		tst.Errorf("PrecSetup failed: %v", st)
		return
	}
	if !m1.Part(0).savedP.EqualBand(m2.Part(1).savedP) {
		tst.Errorf("block A must be bit-identical in both orderings")
	}
	if !m1.Part(1).savedP.EqualBand(m2.Part(0).savedP) {
		tst.Errorf("block B must be bit-identical in both orderings")
	}

	// solving a permuted right-hand side gives the permuted solution
	r := []float64{1, -2, 3, -4, 5, -6}
	rp := append(append([]float64{}, r[n:]...), r[:n]...)
	z1 := nvec.NewSerial(2 * n)
	z2 := nvec.NewSerial(2 * n)
	m1.PrecSolve(z1, nvec.WrapSerial(r), γ, 0, lsolve.Left)
	m2.PrecSolve(z2, nvec.WrapSerial(rp), γ, 0, lsolve.Left)
	chk.Vector(tst, "zA", 1e-17, z1.Access()[:n], z2.Access()[n:])
	chk.Vector(tst, "zB", 1e-17, z1.Access()[n:], z2.Access()[:n])
}

func Test_bbd05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd05. re-initialisation and allocation errors")

	n := 6
	C := make([][]float64, n)
	for i := 0; i < n; i++ {
		C[i] = make([]float64, n)
		C[i][i] = 5
	}
	p, err := Alloc(PartSpec{Nlocal: n, Mudq: 2, Mldq: 2, Mukeep: 1, Mlkeep: 1}, glocLinear(C), nil)
	if err != nil {
		tst.Errorf("Alloc failed:\n%v", err)
		return
	}
	p.Mode = lsolve.PlainJ
	u := nvec.NewSerial(n)
	fu := nvec.NewSerial(n)
	p.PrecSetup(u, fu, 0, false)
	chk.IntAssert(p.NumGlocEvals(), 6) // width 5

	// narrower difference band after re-initialisation; saved data is
	// dropped, so the next setup rebuilds even with jok
	if err = p.ReInit(1, 1, 0, glocLinear(C), nil); err != nil {
		tst.Errorf("ReInit failed:\n%v", err)
		return
	}
	jcur, st := p.PrecSetup(u, fu, 0, true)
	if !st.IsOk() || !jcur {
		tst.Errorf("setup after ReInit must rebuild: jcur=%v st=%v", jcur, st)
	}
	chk.IntAssert(p.NumGlocEvals(), 10) // width 3

	// the kept half-bandwidths cannot grow past the difference ones
	if err = p.ReInit(0, 1, 0, glocLinear(C), nil); err == nil {
		tst.Errorf("ReInit should have failed with mudq<mukeep")
	}
	if err = p.ReInit(1, 1, -1, glocLinear(C), nil); err == nil {
		tst.Errorf("ReInit should have failed with negative dqrely")
	}

	if _, err = Alloc(PartSpec{Nlocal: 0}, glocIdentity, nil); err == nil {
		tst.Errorf("Alloc should have failed with nlocal=0")
	}
	if _, err = Alloc(PartSpec{Nlocal: 2}, nil, nil); err == nil {
		tst.Errorf("Alloc should have failed without a local function")
	}
	if _, err = Alloc(PartSpec{Nlocal: 4, Mudq: 1, Mukeep: 2}, glocIdentity, nil); err == nil {
		tst.Errorf("Alloc should have failed with mukeep>mudq")
	}
	if _, err = Alloc(PartSpec{Nlocal: 2, Dqrely: -0.1}, glocIdentity, nil); err == nil {
		tst.Errorf("Alloc should have failed with negative dqrely")
	}
}

func Test_bbd07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd07. singular rescale invalidates the earlier block")

	// identity block: I - γ·I is singular exactly at γ = 1, so a reuse
	// setup at that coefficient must fail and take the old factorisation
	// with it
	spec := PartSpec{Nlocal: 2, Mudq: 1, Mldq: 1, Mukeep: 1, Mlkeep: 1}
	p, err := Alloc(spec, glocIdentity, nil)
	if err != nil {
		tst.Errorf("Alloc failed:\n%v", err)
		return
	}
	p.Mode = lsolve.IminusGammaJ
	u := nvec.NewSerial(2)
	fu := nvec.NewSerial(2)
	if _, st := p.PrecSetup(u, fu, 0.5, false); !st.IsOk() {
		tst.Errorf("PrecSetup failed: %v", st)
		return
	}
	r := nvec.WrapSerial([]float64{1, 2})
	z := nvec.NewSerial(2)
	if st := p.PrecSolve(z, r, 0.5, 0, lsolve.Left); !st.IsOk() {
		tst.Errorf("PrecSolve failed: %v", st)
		return
	}

	_, st := p.PrecSetup(u, fu, 1, true)
	if !st.IsRecoverable() {
		tst.Errorf("a singular rescale must be recoverable: %v", st)
	}
	if st := p.PrecSolve(z, r, 1, 0, lsolve.Left); !st.IsFatal() {
		tst.Errorf("solve after a failed setup must be a fatal failure: %v", st)
	}
}

func Test_bbd06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("bbd06. failure aggregation over partitions")

	// the second partition has a zero local function: its plain block is
	// singular and the whole setup must be recoverable
	zero := func(gu, u nvec.Vector) lsolve.Status {
		gu.Fill(0)
		return lsolve.Ok()
	}
	spec := PartSpec{Nlocal: 2, Mudq: 1, Mldq: 1, Mukeep: 1, Mlkeep: 1}
	m, err := NewMulti([]PartSpec{spec, spec}, lsolve.PlainJ,
		func(p int) LocalFn {
			if p == 0 {
				return glocIdentity
			}
			return zero
		}, nil)
	if err != nil {
		tst.Errorf("NewMulti failed:\n%v", err)
		return
	}
	u := nvec.NewSerial(4)
	fu := nvec.NewSerial(4)
	_, st := m.PrecSetup(u, fu, 0, false)
	if !st.IsRecoverable() {
		tst.Errorf("a singular partition block must make the setup recoverable: %v", st)
	}

	// length mismatch is fatal
	_, st = m.PrecSetup(nvec.NewSerial(3), nvec.NewSerial(3), 0, false)
	if !st.IsFatal() {
		tst.Errorf("a vector length mismatch must be fatal: %v", st)
	}

	// without MPI the global aggregation is a pass-through
	if st := GlobalStatus(lsolve.Ok()); !st.IsOk() {
		tst.Errorf("GlobalStatus must pass a success through: %v", st)
	}
	if st := GlobalStatus(lsolve.Recov("x")); !st.IsRecoverable() {
		tst.Errorf("GlobalStatus must pass a recoverable failure through: %v", st)
	}
}
