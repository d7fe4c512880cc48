// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order gradient optimizers with explicit,
// caller-held state.
//
// Unlike optimizers that mutate parameters in place, every optimizer
// here is an immutable configuration value exposing a functional
// contract:
//
//	state := opt.Init(params)
//	delta, state = opt.Update(grad, state)
//	params.Add(params, delta)
//
// Update is deterministic given identical gradient and state, so two
// parameter tensors driven by the same optimizer configuration evolve
// independently as long as each keeps its own State. This is what lets
// one optimizer value serve several matrices at once.
//
// Provided families:
//   - SGD: plain gradient descent
//   - Momentum: SGD with a velocity accumulator
//   - Adam: adaptive moments with bias correction
package optim

import (
	"gonum.org/v1/gonum/mat"
)

// State is the opaque per-parameter bookkeeping carried between Update
// calls. Its concrete type depends on the optimizer family.
type State interface{}

// Optimizer is a stateful first-order update rule. Implementations must
// be immutable configuration: all mutable quantities live in the State.
type Optimizer interface {
	// Init builds the optimizer state for a parameter matrix of the
	// given shape. The parameter values themselves are not retained.
	Init(params *mat.Dense) State

	// Update turns a gradient into an additive parameter delta and the
	// successor state. The returned delta is owned by the caller.
	Update(grad *mat.Dense, state State) (*mat.Dense, State)
}

// SGD is plain gradient descent: delta = −lr·grad. It carries no state.
type SGD struct {
	LR float64
}

// Init returns a nil state; plain SGD is memoryless.
func (s SGD) Init(_ *mat.Dense) State { return nil }

// Update computes delta = −lr·grad.
func (s SGD) Update(grad *mat.Dense, state State) (*mat.Dense, State) {
	r, c := grad.Dims()
	delta := mat.NewDense(r, c, nil)
	delta.Scale(-s.LR, grad)
	return delta, state
}
