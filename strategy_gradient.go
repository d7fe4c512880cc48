// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes/autodiff"
	"github.com/wangzcl/archetypes/optim"
)

// gradientStrategy optimizes unconstrained logits with a pluggable
// first-order optimizer. The visible A and B are the row-softmax of
// their logits, so the simplex constraint holds exactly at every step;
// the gradient of the reconstruction loss ‖X − A·B·X‖² is obtained by
// reverse-mode automatic differentiation with respect to one logits
// matrix at a time, holding the other matrix fixed.
//
// Loss-gradient computation and step-size bookkeeping are entirely
// delegated: this strategy owns only the reparameterization and the
// glue feeding the right partial derivative to the right optimizer
// state.
type gradientStrategy struct {
	opt optim.Optimizer
}

func (s gradientStrategy) initA(m *Model, _ *mat.Dense) {
	initAOneHot(m)
	m.logitsA = mat.DenseCopyOf(m.a)
	m.stateA = s.opt.Init(m.logitsA)
}

func (s gradientStrategy) initB(m *Model, x *mat.Dense) error {
	if err := initBOneHot(m, x); err != nil {
		return err
	}
	m.logitsB = mat.DenseCopyOf(m.b)
	m.stateB = s.opt.Init(m.logitsB)
	return nil
}

func (s gradientStrategy) optimizeA(m *Model, x *mat.Dense) error {
	tape := autodiff.NewTape()
	a := tape.RowSoftmax(m.logitsA)
	recon := tape.MatMul(tape.MatMul(a, m.b), x)
	loss := tape.SumSquares(tape.Sub(x, recon))

	grad := tape.Backward(loss)[m.logitsA]
	delta, state := s.opt.Update(grad, m.stateA)
	m.stateA = state
	m.logitsA.Add(m.logitsA, delta)
	m.a = autodiff.RowSoftmax(m.logitsA)
	return nil
}

func (s gradientStrategy) optimizeB(m *Model, x *mat.Dense) error {
	tape := autodiff.NewTape()
	b := tape.RowSoftmax(m.logitsB)
	recon := tape.MatMul(m.a, tape.MatMul(b, x))
	loss := tape.SumSquares(tape.Sub(x, recon))

	grad := tape.Backward(loss)[m.logitsB]
	delta, state := s.opt.Update(grad, m.stateB)
	m.stateB = state
	m.logitsB.Add(m.logitsB, delta)
	m.b = autodiff.RowSoftmax(m.logitsB)
	return nil
}

func (s gradientStrategy) fit(m *Model, x *mat.Dense) error { return runFit(s, m, x) }
