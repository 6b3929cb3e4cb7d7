// Copyright 2016 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsolve implements the linear solvers behind the Newton iteration:
// a single contract {Init, Setup, Solve, Free, Workspace} with direct dense,
// direct banded and scaled preconditioned GMRES variants, the staleness
// policy deciding when cached Jacobian data may be reused, and the glue that
// lets the Krylov variant run matrix-free with a pluggable preconditioner.
package lsolve

import "github.com/cpmech/gosl/io"

// Kind labels the outcome of a setup or solve call
type Kind int

const (

	// Success means the call completed
	Success Kind = iota

	// Recoverable means the call failed in a way the caller can react to,
	// e.g. by shrinking the step or refreshing the Jacobian, and retry
	Recoverable

	// Fatal means the call failed irrecoverably and must not be retried
	Fatal
)

// Status is the tagged result carried by setup and solve calls, replacing
// numeric return-code conventions
type Status struct {
	Kind Kind
	Msg  string
}

// Ok returns a success status
func Ok() Status { return Status{} }

// Recov returns a recoverable failure status with a formatted reason
func Recov(msg string, prm ...interface{}) Status {
	return Status{Kind: Recoverable, Msg: io.Sf(msg, prm...)}
}

// Fail returns a fatal failure status with a formatted reason
func Fail(msg string, prm ...interface{}) Status {
	return Status{Kind: Fatal, Msg: io.Sf(msg, prm...)}
}

// IsOk tells whether the call completed
func (o Status) IsOk() bool { return o.Kind == Success }

// IsRecoverable tells whether the failure allows a retry
func (o Status) IsRecoverable() bool { return o.Kind == Recoverable }

// IsFatal tells whether the failure is irrecoverable
func (o Status) IsFatal() bool { return o.Kind == Fatal }

// String returns a readable representation
func (o Status) String() string {
	switch o.Kind {
	case Success:
		return "success"
	case Recoverable:
		return io.Sf("recoverable failure: %s", o.Msg)
	}
	return io.Sf("fatal failure: %s", o.Msg)
}
