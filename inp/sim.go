// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the input of solver parameters from JSON files
package inp

import (
	"encoding/json"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Data holds global run data
type Data struct {
	Desc    string `json:"desc"`    // description of simulation
	DirOut  string `json:"dirout"`  // directory for output; e.g. /tmp/nks
	Verbose bool   `json:"verbose"` // show messages
}

// SolverData holds the nonlinear solver parameters
type SolverData struct {
	NmaxIt    int     `json:"nmaxit"`    // max number of iterations
	Atol      float64 `json:"atol"`      // absolute tolerance for error weights
	Rtol      float64 `json:"rtol"`      // relative tolerance for error weights
	FbTol     float64 `json:"fbtol"`     // tolerance for relative residual reduction
	FbMin     float64 `json:"fbmin"`     // minimum value of residual norm
	Itol      float64 `json:"itol"`      // tolerance for the weighted update norm
	LinRtol   float64 `json:"linrtol"`   // linear tolerance factor (inexact Newton)
	ModNewton bool    `json:"modnewton"` // one factorisation per call (modified Newton)
	DvgCtrl   bool    `json:"dvgctrl"`   // use divergence control
	ShowR     bool    `json:"showr"`     // show residuals
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {
	o.NmaxIt = 10
	o.Atol = 1e-8
	o.Rtol = 1e-8
	o.FbTol = 1e-9
	o.FbMin = 1e-10
	o.Itol = 1.0
	o.LinRtol = 0.05
	o.ModNewton = true
}

// KrylovData holds the Krylov linear solver parameters
type KrylovData struct {
	Maxl   int    `json:"maxl"`   // max Krylov subspace dimension; 0 = default
	Maxrs  int    `json:"maxrs"`  // max number of restarts
	Gstype string `json:"gstype"` // orthogonalisation: "mgs" or "cgs"
	Side   string `json:"side"`   // preconditioning side: "none", "left" or "right"
}

// SetDefault sets default values
func (o *KrylovData) SetDefault() {
	o.Gstype = "mgs"
	o.Side = "left"
}

// StaleData holds the Jacobian/preconditioner staleness thresholds
type StaleData struct {
	MaxSteps int     `json:"maxsteps"` // max steps between fresh evaluations
	MaxDrift float64 `json:"maxdrift"` // max relative drift of the implicit coefficient
}

// SetDefault sets default values
func (o *StaleData) SetDefault() {
	o.MaxSteps = 20
	o.MaxDrift = 0.3
}

// BBDData holds the band-block-diagonal preconditioner parameters
type BBDData struct {
	Npart  int     `json:"npart"`  // number of partitions
	Mudq   int     `json:"mudq"`   // upper half-bandwidth for difference quotients
	Mldq   int     `json:"mldq"`   // lower half-bandwidth for difference quotients
	Mukeep int     `json:"mukeep"` // upper half-bandwidth of retained blocks
	Mlkeep int     `json:"mlkeep"` // lower half-bandwidth of retained blocks
	Dqrely float64 `json:"dqrely"` // relative perturbation; 0 = default
}

// SetDefault sets default values
func (o *BBDData) SetDefault() {
	o.Npart = 1
	o.Mudq = 1
	o.Mldq = 1
	o.Mukeep = 1
	o.Mlkeep = 1
}

// ProblemData holds the demo problem parameters
type ProblemData struct {
	N      int     `json:"n"`      // number of unknowns
	Kappa  float64 `json:"kappa"`  // diffusion coefficient
	React  float64 `json:"react"`  // reaction coefficient
	Source float64 `json:"source"` // source amplitude
}

// SetDefault sets default values
func (o *ProblemData) SetDefault() {
	o.N = 60
	o.Kappa = 1.0
	o.React = 1.0
	o.Source = 1.0
}

// Simulation holds all parameters of one run
type Simulation struct {
	Data    Data        `json:"data"`    // global data
	Solver  SolverData  `json:"solver"`  // nonlinear solver parameters
	Krylov  KrylovData  `json:"krylov"`  // Krylov solver parameters
	Stale   StaleData   `json:"stale"`   // staleness thresholds
	BBD     BBDData     `json:"bbd"`     // preconditioner parameters
	Problem ProblemData `json:"problem"` // demo problem parameters

	// derived
	Key string `json:"-"` // filename key
}

// ReadSim reads a simulation file, sets defaults first and validates the
// parameters afterwards
func ReadSim(simfilepath string) (o *Simulation, err error) {

	// read file
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("ReadSim: cannot read simulation file %q", simfilepath)
	}

	// set default values
	o = new(Simulation)
	o.Solver.SetDefault()
	o.Krylov.SetDefault()
	o.Stale.SetDefault()
	o.BBD.SetDefault()
	o.Problem.SetDefault()

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("ReadSim: cannot unmarshal simulation file %q: %v", simfilepath, err)
	}
	o.Key = io.FnKey(filepath.Base(simfilepath))
	if o.Data.DirOut == "" {
		o.Data.DirOut = "/tmp/nks/" + o.Key
	}

	// validate
	if o.Solver.NmaxIt < 1 {
		return nil, chk.Err("ReadSim: nmaxit must be at least 1. nmaxit=%d is invalid", o.Solver.NmaxIt)
	}
	if o.Solver.Atol <= 0 || o.Solver.Rtol <= 0 {
		return nil, chk.Err("ReadSim: tolerances must be positive. atol=%g rtol=%g", o.Solver.Atol, o.Solver.Rtol)
	}
	if o.Krylov.Gstype != "mgs" && o.Krylov.Gstype != "cgs" {
		return nil, chk.Err("ReadSim: gstype must be \"mgs\" or \"cgs\". %q is invalid", o.Krylov.Gstype)
	}
	switch o.Krylov.Side {
	case "none", "left", "right":
	default:
		return nil, chk.Err("ReadSim: side must be \"none\", \"left\" or \"right\". %q is invalid", o.Krylov.Side)
	}
	if o.BBD.Npart < 1 {
		return nil, chk.Err("ReadSim: npart must be at least 1. npart=%d is invalid", o.BBD.Npart)
	}
	if o.BBD.Mukeep > o.BBD.Mudq || o.BBD.Mlkeep > o.BBD.Mldq {
		return nil, chk.Err("ReadSim: kept half-bandwidths must not exceed difference-quotient ones")
	}
	return
}
