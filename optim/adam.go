// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adam implements adaptive moment estimation.
//
// Update rule:
//
//	m = beta1·m + (1−beta1)·grad
//	v = beta2·v + (1−beta2)·grad²
//	mhat = m / (1 − beta1ᵗ)
//	vhat = v / (1 − beta2ᵗ)
//	delta = −lr · mhat / (sqrt(vhat) + eps)
//
// Zero-valued hyperparameters fall back to the usual defaults
// (beta1=0.9, beta2=0.999, eps=1e-8).
//
// Reference: Kingma & Ba, "Adam: A Method for Stochastic Optimization"
// (2014).
type Adam struct {
	LR    float64
	Beta1 float64
	Beta2 float64
	Eps   float64
}

type adamState struct {
	m, v *mat.Dense
	t    int
}

func (a Adam) defaults() (beta1, beta2, eps float64) {
	beta1, beta2, eps = a.Beta1, a.Beta2, a.Eps
	if beta1 == 0 {
		beta1 = 0.9
	}
	if beta2 == 0 {
		beta2 = 0.999
	}
	if eps == 0 {
		eps = 1e-8
	}
	return beta1, beta2, eps
}

// Init allocates zero first and second moment estimates.
func (a Adam) Init(params *mat.Dense) State {
	r, c := params.Dims()
	return &adamState{
		m: mat.NewDense(r, c, nil),
		v: mat.NewDense(r, c, nil),
	}
}

// Update advances the moment estimates one timestep and returns the
// bias-corrected delta.
func (a Adam) Update(grad *mat.Dense, state State) (*mat.Dense, State) {
	st := state.(*adamState)
	beta1, beta2, eps := a.defaults()
	st.t++

	r, c := grad.Dims()
	delta := mat.NewDense(r, c, nil)

	corr1 := 1 - math.Pow(beta1, float64(st.t))
	corr2 := 1 - math.Pow(beta2, float64(st.t))

	for i := 0; i < r; i++ {
		g := grad.RawRowView(i)
		mr := st.m.RawRowView(i)
		vr := st.v.RawRowView(i)
		dr := delta.RawRowView(i)
		for j := 0; j < c; j++ {
			mr[j] = beta1*mr[j] + (1-beta1)*g[j]
			vr[j] = beta2*vr[j] + (1-beta2)*g[j]*g[j]
			mhat := mr[j] / corr1
			vhat := vr[j] / corr2
			dr[j] = -a.LR * mhat / (math.Sqrt(vhat) + eps)
		}
	}
	return delta, st
}
