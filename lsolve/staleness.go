// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lsolve

import "math"

// StalePolicy decides, on each corrector setup call, whether the Jacobian or
// preconditioner data computed at an earlier step is still current. Reuse is
// allowed while both the number of steps since the last evaluation and the
// relative drift of the implicit coefficient stay below their thresholds.
// The caller must keep a forced-refresh escape hatch: when the nonlinear
// iteration fails to converge even though linear solves succeed, the cached
// Jacobian is wrong and Fresh must be consulted with force=true
type StalePolicy struct {
	MaxSteps int     // max steps between fresh evaluations
	MaxDrift float64 // max |1 - γ/γlast| before a forced refresh

	stepLast int     // step index at last fresh evaluation
	γLast    float64 // implicit coefficient at last fresh evaluation
	haveData bool    // at least one fresh evaluation happened
}

// default thresholds: 20 steps, 30% coefficient drift
const (
	staleMaxSteps = 20
	staleMaxDrift = 0.3
)

// NewStalePolicy returns a policy with the default thresholds
func NewStalePolicy() *StalePolicy {
	return &StalePolicy{MaxSteps: staleMaxSteps, MaxDrift: staleMaxDrift}
}

// Fresh tells whether a fresh Jacobian/preconditioner evaluation is needed
// at the given step and implicit coefficient. force always wins
func (o *StalePolicy) Fresh(step int, γ float64, force bool) bool {
	if force || !o.haveData {
		return true
	}
	if step-o.stepLast >= o.MaxSteps {
		return true
	}
	if math.Abs(1.0-γ/o.γLast) >= o.MaxDrift {
		return true
	}
	return false
}

// Update records that a fresh evaluation happened at the given step and
// implicit coefficient. Only setup paths may call this
func (o *StalePolicy) Update(step int, γ float64) {
	o.stepLast = step
	o.γLast = γ
	o.haveData = true
}

// Last returns the step index and implicit coefficient recorded at the last
// fresh evaluation; valid only after at least one Update
func (o *StalePolicy) Last() (step int, γ float64) {
	return o.stepLast, o.γLast
}
