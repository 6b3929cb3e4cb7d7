// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out implements diagnostics output: capture of the Newton residual
// histories and convergence plots
package out

import (
	"math"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
	"github.com/cpmech/gosl/utl"
)

// History records the residual norms of the nonlinear iterations, one
// sequence per solve/step. Hook Append into newton.Solver.ResCb
type History struct {
	F [][]float64 // residual norms; F[k][i] is ‖F‖ at iteration i of solve k
}

// Append records one residual norm; firstIt starts a new sequence
func (o *History) Append(firstIt bool, fnorm float64) {
	if firstIt || len(o.F) == 0 {
		o.F = append(o.F, []float64{})
	}
	k := len(o.F) - 1
	o.F[k] = append(o.F[k], fnorm)
}

// Nsolves returns the number of recorded sequences
func (o *History) Nsolves() int { return len(o.F) }

// Niter returns the number of iterations of sequence k
func (o *History) Niter(k int) int { return len(o.F[k]) }

// Table returns a readable summary of the recorded sequences
func (o *History) Table() string {
	l := io.Sf("%6s%8s%23s%23s\n", "solve", "niter", "first‖F‖", "last‖F‖")
	for k, f := range o.F {
		l += io.Sf("%6d%8d%23.15e%23.15e\n", k, len(f), f[0], f[len(f)-1])
	}
	return l
}

// Plot draws the residual histories (log10 of ‖F‖ versus iteration) and
// saves the figure to dirout/fnkey.eps; with show, the figure is displayed
// instead
func (o *History) Plot(dirout, fnkey string, show bool) {
	for k, f := range o.F {
		x := utl.LinSpace(0, float64(len(f)-1), len(f))
		y := make([]float64, len(f))
		for i, v := range f {
			y[i] = math.Log10(math.Max(v, 1e-300))
		}
		plt.Plot(x, y, io.Sf("'.-', clip_on=0, label='solve %d'", k))
	}
	plt.Gll("iteration", "log10(||F||)", "")
	if show {
		plt.Show()
		return
	}
	plt.SaveD(dirout, fnkey+".eps")
}
