// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/nks/nvec"
)

// GSType selects the orthogonalisation method of the Krylov solver
type GSType int

const (

	// ModifiedGS is modified Gram-Schmidt (default)
	ModifiedGS GSType = iota

	// ClassicalGS is classical Gram-Schmidt
	ClassicalGS
)

// Spgmr implements LinSolver with the scaled preconditioned generalised
// minimum residual method, restartable, matrix-free: the iteration matrix is
// touched only through Jacobian-vector products supplied by the glue. An
// optional diagonal weight vector scales both the residual and correction
// spaces; the convergence test is on the scaled preconditioned residual
type Spgmr struct {
	Mode     Mode
	Maxl     int         // maximum Krylov subspace dimension; 0 = default
	Maxrs    int         // maximum number of restarts; default 0
	Gstype   GSType      // orthogonalisation method
	PrecSide Side        // preconditioning side
	Wt       nvec.Vector // optional diagonal scaling; nil = unscaled

	glue *Glue
	tmpl nvec.Vector

	// Krylov workspace
	vbasis []nvec.Vector // maxl+1 basis vectors
	hes    [][]float64   // (maxl+1)×maxl Hessenberg matrix
	givc   []float64     // Givens cosines
	givs   []float64     // Givens sines
	gvec   []float64     // least-squares right-hand side
	yvec   []float64     // least-squares solution
	xcor   nvec.Vector
	vtemp  nvec.Vector
	ztemp  nvec.Vector

	// saved by Setup for products and preconditioner solves
	γcur      float64
	ucur      nvec.Vector
	fcur      nvec.Vector
	setupDone bool
	stats     Stats
}

// default Krylov dimension (capped by the problem size at Init)
const spgmrDefaultMaxl = 10

// NewSpgmr returns a Krylov linear solver. tmpl provides the vector kind and
// size for the workspace; glue supplies products and preconditioning
func NewSpgmr(tmpl nvec.Vector, mode Mode, glue *Glue) *Spgmr {
	return &Spgmr{Mode: mode, glue: glue, tmpl: tmpl}
}

// Init allocates the Krylov workspace
func (o *Spgmr) Init() Status {
	if o.Maxl < 1 {
		o.Maxl = spgmrDefaultMaxl
	}
	if o.Maxl > o.tmpl.Len() {
		o.Maxl = o.tmpl.Len()
	}
	if o.Maxrs < 0 {
		return Fail("maximum number of restarts must be non-negative. maxrs=%d is invalid", o.Maxrs)
	}
	if o.glue.Prec == nil {
		o.PrecSide = NoPrec
	}
	o.vbasis = make([]nvec.Vector, o.Maxl+1)
	for i := range o.vbasis {
		o.vbasis[i] = o.tmpl.NewLike()
	}
	o.hes = la.MatAlloc(o.Maxl+1, o.Maxl)
	o.givc = make([]float64, o.Maxl)
	o.givs = make([]float64, o.Maxl)
	o.gvec = make([]float64, o.Maxl+1)
	o.yvec = make([]float64, o.Maxl+1)
	o.xcor = o.tmpl.NewLike()
	o.vtemp = o.tmpl.NewLike()
	o.ztemp = o.tmpl.NewLike()
	return Ok()
}

// Setup prepares the preconditioner through the glue and saves the state the
// products are taken at
func (o *Spgmr) Setup(u, fu nvec.Vector, γ float64, jok bool) (jcur bool, st Status) {
	o.stats.Nsetups++
	o.ucur, o.fcur, o.γcur = u, fu, γ
	st = Ok()
	if o.glue.Prec != nil {
		jcur, st = o.glue.Prec.PrecSetup(u, fu, γ, jok)
		if !st.IsOk() {
			return
		}
		if jcur {
			o.stats.Npe++
		}
	}
	o.setupDone = true
	return
}

// Solve runs restarted GMRES until the scaled preconditioned residual norm
// drops below tol. On a convergence failure the best correction found so far
// is left in x and a recoverable status is returned
func (o *Spgmr) Solve(x, b nvec.Vector, tol float64) (st Status) {
	if !o.setupDone {
		return Fail("solve called before a successful setup")
	}
	x.Fill(0)

	// initial residual: r = b since x0 = 0
	o.vtemp.CopyFrom(b)
	var ρ float64
	for nrestarts := 0; nrestarts <= o.Maxrs; nrestarts++ {

		// scaled preconditioned residual into basis vector 0
		if st = o.resid(o.vbasis[0], o.vtemp); !st.IsOk() {
			return
		}
		β := o.vbasis[0].Norm2()
		if β <= tol {
			return Ok() // zero-residual right-hand side yields a zero correction
		}
		o.vbasis[0].Scale(1.0 / β)

		// Arnoldi process with Givens-rotation least squares
		for i := range o.gvec {
			o.gvec[i] = 0
		}
		o.gvec[0] = β
		ρ = β
		kk := 0
		for l := 0; l < o.Maxl; l++ {
			kk = l + 1
			if st = o.applyOp(o.vbasis[l+1], o.vbasis[l]); !st.IsOk() {
				return
			}
			o.orthogonalise(l)
			o.stats.Nli++
			ρ = o.rotate(l)
			if ρ <= tol {
				break
			}
		}

		// least-squares solution and correction update
		o.lssolve(kk)
		if st = o.updateX(x, kk); !st.IsOk() {
			return
		}
		if ρ <= tol {
			return Ok()
		}

		// recompute the true residual for the next cycle
		if nrestarts < o.Maxrs {
			if st = o.applyA(o.ztemp, x); !st.IsOk() {
				return
			}
			o.vtemp.LinSum(1, b, -1, o.ztemp)
		}
	}
	o.stats.Ncfl++
	return Recov("linear convergence failure: residual %g above tolerance %g after %d restarts", ρ, tol, o.Maxrs)
}

// Free releases the workspace
func (o *Spgmr) Free() {
	o.vbasis, o.hes = nil, nil
	o.xcor, o.vtemp, o.ztemp = nil, nil, nil
	o.ucur, o.fcur = nil, nil
	o.setupDone = false
}

// Workspace returns the real and integer footprint
func (o *Spgmr) Workspace() (nr, ni int) {
	n := o.tmpl.Len()
	nr = (o.Maxl+4)*n + (o.Maxl+1)*o.Maxl + 3*(o.Maxl+1)
	ni = 16
	return
}

// Stat gives read access to the counters
func (o *Spgmr) Stat() *Stats { return &o.stats }

// applyA computes av = M·v with M = I - γ·J or M = J depending on the mode
func (o *Spgmr) applyA(av, v nvec.Vector) (st Status) {
	if st = o.glue.JacTimesVec(av, v, o.ucur, o.fcur, &o.stats); !st.IsOk() {
		return
	}
	if o.Mode == IminusGammaJ {
		av.LinSum(1, v, -o.γcur, av)
	}
	return Ok()
}

// resid transforms a raw residual into the scaled (left-)preconditioned
// space the Krylov iteration works in
func (o *Spgmr) resid(out, r nvec.Vector) (st Status) {
	if o.PrecSide == Left {
		o.stats.Nps++
		if st = o.glue.Prec.PrecSolve(out, r, o.γcur, 0, Left); !st.IsOk() {
			return
		}
	} else {
		out.CopyFrom(r)
	}
	o.scaleBy(out, false)
	return Ok()
}

// applyOp maps one scaled basis vector through preconditioning and the
// iteration matrix into the next (unnormalised) basis vector
func (o *Spgmr) applyOp(out, v nvec.Vector) (st Status) {
	o.ztemp.CopyFrom(v)
	o.scaleBy(o.ztemp, true)
	if o.PrecSide == Right {
		o.stats.Nps++
		if st = o.glue.Prec.PrecSolve(o.xcor, o.ztemp, o.γcur, 0, Right); !st.IsOk() {
			return
		}
		o.ztemp.CopyFrom(o.xcor)
	}
	if st = o.applyA(out, o.ztemp); !st.IsOk() {
		return
	}
	if o.PrecSide == Left {
		o.stats.Nps++
		o.ztemp.CopyFrom(out)
		if st = o.glue.Prec.PrecSolve(out, o.ztemp, o.γcur, 0, Left); !st.IsOk() {
			return
		}
	}
	o.scaleBy(out, false)
	return Ok()
}

// orthogonalise removes the components of basis vector l+1 along vectors
// 0..l, storing the coefficients in column l of the Hessenberg matrix
func (o *Spgmr) orthogonalise(l int) {
	vnew := o.vbasis[l+1]
	if o.Gstype == ClassicalGS {
		for i := 0; i <= l; i++ {
			o.hes[i][l] = vnew.Dot(o.vbasis[i])
		}
		for i := 0; i <= l; i++ {
			vnew.LinSum(1, vnew, -o.hes[i][l], o.vbasis[i])
		}
	} else {
		for i := 0; i <= l; i++ {
			o.hes[i][l] = vnew.Dot(o.vbasis[i])
			vnew.LinSum(1, vnew, -o.hes[i][l], o.vbasis[i])
		}
	}
	norm := vnew.Norm2()
	o.hes[l+1][l] = norm
	if norm > 0 {
		vnew.Scale(1.0 / norm)
	}
}

// rotate applies the previous Givens rotations to column l, computes the new
// rotation and returns the updated residual norm estimate
func (o *Spgmr) rotate(l int) (ρ float64) {
	for i := 0; i < l; i++ {
		temp := o.givc[i]*o.hes[i][l] + o.givs[i]*o.hes[i+1][l]
		o.hes[i+1][l] = -o.givs[i]*o.hes[i][l] + o.givc[i]*o.hes[i+1][l]
		o.hes[i][l] = temp
	}
	denom := math.Sqrt(o.hes[l][l]*o.hes[l][l] + o.hes[l+1][l]*o.hes[l+1][l])
	if denom == 0 {
		o.givc[l], o.givs[l] = 1, 0
	} else {
		o.givc[l] = o.hes[l][l] / denom
		o.givs[l] = o.hes[l+1][l] / denom
	}
	o.hes[l][l] = denom
	o.hes[l+1][l] = 0
	o.gvec[l+1] = -o.givs[l] * o.gvec[l]
	o.gvec[l] = o.givc[l] * o.gvec[l]
	return math.Abs(o.gvec[l+1])
}

// lssolve back-substitutes the kk×kk triangular least-squares system
func (o *Spgmr) lssolve(kk int) {
	for i := kk - 1; i >= 0; i-- {
		o.yvec[i] = o.gvec[i]
		for j := i + 1; j < kk; j++ {
			o.yvec[i] -= o.hes[i][j] * o.yvec[j]
		}
		o.yvec[i] /= o.hes[i][i]
	}
}

// updateX accumulates the correction found in the scaled preconditioned
// space back into the solution space
func (o *Spgmr) updateX(x nvec.Vector, kk int) (st Status) {
	o.xcor.Fill(0)
	for i := 0; i < kk; i++ {
		o.xcor.LinSum(1, o.xcor, o.yvec[i], o.vbasis[i])
	}
	o.scaleBy(o.xcor, true)
	if o.PrecSide == Right {
		o.stats.Nps++
		if st = o.glue.Prec.PrecSolve(o.ztemp, o.xcor, o.γcur, 0, Right); !st.IsOk() {
			return
		}
		o.xcor.CopyFrom(o.ztemp)
	}
	x.LinSum(1, x, 1, o.xcor)
	return Ok()
}

// scaleBy multiplies (or, with invert, divides) a vector by the diagonal
// weights; a nil weight vector means unscaled
func (o *Spgmr) scaleBy(v nvec.Vector, invert bool) {
	if o.Wt == nil {
		return
	}
	vv, ww := v.Access(), o.Wt.Access()
	if invert {
		for i := range vv {
			vv[i] /= ww[i]
		}
		return
	}
	for i := range vv {
		vv[i] *= ww[i]
	}
}
