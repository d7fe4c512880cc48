// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"gonum.org/v1/gonum/mat"
)

// Momentum is gradient descent with a velocity accumulator.
//
// Update rule:
//
//	v = momentum·v + grad
//	delta = −lr·v
//
// Momentum accelerates descent along persistent gradient directions and
// dampens oscillation across them.
type Momentum struct {
	LR       float64
	Momentum float64 // velocity decay factor, in [0, 1)
}

type momentumState struct {
	velocity *mat.Dense
}

// Init allocates a zero velocity matching the parameter shape.
func (m Momentum) Init(params *mat.Dense) State {
	r, c := params.Dims()
	return &momentumState{velocity: mat.NewDense(r, c, nil)}
}

// Update folds the gradient into the velocity and scales by −lr.
func (m Momentum) Update(grad *mat.Dense, state State) (*mat.Dense, State) {
	st := state.(*momentumState)
	st.velocity.Scale(m.Momentum, st.velocity)
	st.velocity.Add(st.velocity, grad)

	r, c := grad.Dims()
	delta := mat.NewDense(r, c, nil)
	delta.Scale(-m.LR, st.velocity)
	return delta, st
}
