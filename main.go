// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/gosl/chk"
	fun "github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/nks/bbd"
	"github.com/cpmech/nks/inp"
	"github.com/cpmech/nks/lsolve"
	"github.com/cpmech/nks/newton"
	"github.com/cpmech/nks/nvec"
	"github.com/cpmech/nks/out"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "data/dif1d", ".sim", true)
	verbose := io.ArgToBool(1, true)
	doplot := io.ArgToBool(2, false)

	// message
	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\nnks -- Newton-Krylov solver kernel\n\n")
		io.Pf("%v\n", io.ArgsTable(
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"plot convergence", "doplot", doplot,
		))
	}

	// simulation data
	sim, err := inp.ReadSim(fnamepath)
	if err != nil {
		chk.Panic("cannot read simulation file:\n%v", err)
	}

	// profiling?
	defer utl.DoProf(false)()

	// steady 1D reaction-diffusion problem:
	//   κ·(u[i-1] - 2u[i] + u[i+1])/h² - r·u[i]² + s(x[i]) = 0
	// with homogeneous Dirichlet boundaries
	n := sim.Problem.N
	h := 1.0 / float64(n+1)
	κ := sim.Problem.Kappa
	r := sim.Problem.React
	src := &fun.Cte{C: sim.Problem.Source}
	sysfn := func(fu, u nvec.Vector) lsolve.Status {
		uu, ff := u.Access(), fu.Access()
		for i := 0; i < n; i++ {
			ul, ur := 0.0, 0.0
			if i > 0 {
				ul = uu[i-1]
			}
			if i < n-1 {
				ur = uu[i+1]
			}
			x := float64(i+1) * h
			ff[i] = κ*(ul-2.0*uu[i]+ur)/(h*h) - r*uu[i]*uu[i] + src.F(x, nil)*x*(1.0-x)
		}
		return lsolve.Ok()
	}

	// band-block-diagonal preconditioner: each partition approximates its
	// own tridiagonal block, ignoring the coupling across partition edges
	specs := make([]bbd.PartSpec, sim.BBD.Npart)
	sizes := partition(n, sim.BBD.Npart)
	for p := range specs {
		specs[p] = bbd.PartSpec{
			Nlocal: sizes[p],
			Mudq:   sim.BBD.Mudq,
			Mldq:   sim.BBD.Mldq,
			Mukeep: sim.BBD.Mukeep,
			Mlkeep: sim.BBD.Mlkeep,
			Dqrely: sim.BBD.Dqrely,
		}
	}
	glocOf := func(p int) bbd.LocalFn {
		return func(gu, u nvec.Vector) lsolve.Status {
			uu, gg := u.Access(), gu.Access()
			nl := len(uu)
			for i := 0; i < nl; i++ {
				ul, ur := 0.0, 0.0
				if i > 0 {
					ul = uu[i-1]
				}
				if i < nl-1 {
					ur = uu[i+1]
				}
				gg[i] = κ*(ul-2.0*uu[i]+ur)/(h*h) - r*uu[i]*uu[i]
			}
			return lsolve.Ok()
		}
	}
	prec, err := bbd.NewMulti(specs, lsolve.PlainJ, glocOf, nil)
	if err != nil {
		chk.Panic("cannot allocate preconditioner:\n%v", err)
	}
	defer prec.Free()

	// Krylov linear solver
	u := nvec.NewSerial(n)
	glue := lsolve.NewGlue(sysfn, nil, prec)
	ls := lsolve.NewSpgmr(u, lsolve.PlainJ, glue)
	ls.Maxl = sim.Krylov.Maxl
	ls.Maxrs = sim.Krylov.Maxrs
	if sim.Krylov.Gstype == "cgs" {
		ls.Gstype = lsolve.ClassicalGS
	}
	switch sim.Krylov.Side {
	case "left":
		ls.PrecSide = lsolve.Left
	case "right":
		ls.PrecSide = lsolve.Right
	}

	// nonlinear solver
	pol := lsolve.NewStalePolicy()
	pol.MaxSteps = sim.Stale.MaxSteps
	pol.MaxDrift = sim.Stale.MaxDrift
	sv := newton.NewSolver(sysfn, ls, pol)
	sv.NmaxIt = sim.Solver.NmaxIt
	sv.Atol = sim.Solver.Atol
	sv.Rtol = sim.Solver.Rtol
	sv.FbTol = sim.Solver.FbTol
	sv.FbMin = sim.Solver.FbMin
	sv.Itol = sim.Solver.Itol
	sv.LinRtol = sim.Solver.LinRtol
	sv.ModNewton = sim.Solver.ModNewton
	sv.DvgCtrl = sim.Solver.DvgCtrl
	sv.ShowR = sim.Solver.ShowR && verbose
	var hist out.History
	sv.ResCb = hist.Append
	if st := sv.Init(u); !st.IsOk() {
		chk.Panic("cannot initialise solvers: %v", st)
	}
	ls.Wt = sv.Weights()

	// solve
	if st := sv.Run(u, 0, 0); !st.IsOk() {
		chk.Panic("solve failed: %v", st)
	}

	// report
	if mpi.Rank() == 0 && verbose {
		nst, lst := sv.Stat(), ls.Stat()
		nr, ni := ls.Workspace()
		nrp, nip := prec.Workspace()
		io.Pf("\n%v\n", hist.Table())
		io.Pf("%v\n", io.ArgsTable(
			"nonlinear iterations", "nni", nst.Nit,
			"function evaluations", "nfe", nst.Nfe,
			"linear setups", "nsetups", nst.Nsetups,
			"linear iterations", "nli", lst.Nli,
			"preconditioner setups", "npe", lst.Npe,
			"preconditioner solves", "nps", lst.Nps,
			"jacobian-vector products", "njtimes", lst.Njtimes,
			"local function evaluations", "nge", prec.NumGlocEvals(),
			"linear workspace reals", "lsnr", nr,
			"linear workspace ints", "lsni", ni,
			"prec workspace reals", "pcnr", nrp,
			"prec workspace ints", "pcni", nip,
		))
	}
	if doplot {
		hist.Plot(sim.Data.DirOut, sim.Key, false)
	}
}

// partition splits n unknowns into np nearly equal parts
func partition(n, np int) (sizes []int) {
	sizes = make([]int, np)
	for p := 0; p < np; p++ {
		sizes[p] = n / np
		if p < n%np {
			sizes[p]++
		}
	}
	return
}
