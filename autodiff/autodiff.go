// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff implements reverse-mode automatic differentiation
// over gonum dense matrices.
//
// A Tape records operations during the forward pass; each operation
// knows how to push a gradient back to its inputs. Calling Backward on
// the final (scalar) output walks the tape in reverse, applying the
// chain rule and accumulating gradients per input matrix.
//
// The op set is deliberately small: matrix product, element-wise
// subtraction, row-wise softmax and the squared Frobenius norm: enough
// to differentiate reconstruction losses of the form ‖X − A·B·X‖².
//
// Example:
//
//	tape := autodiff.NewTape()
//	a := tape.RowSoftmax(logits)
//	r := tape.Sub(x, tape.MatMul(a, z))
//	loss := tape.SumSquares(r)
//	grads := tape.Backward(loss)
//	g := grads[logits] // dloss/dlogits
package autodiff

import (
	"gonum.org/v1/gonum/mat"
)

// Operation is a differentiable node in the recorded computation.
// Backward receives the gradient of the loss with respect to the
// operation's output and returns one gradient per input, in input order.
type Operation interface {
	Backward(outputGrad *mat.Dense) []*mat.Dense
	Inputs() []*mat.Dense
	Output() *mat.Dense
}

// Tape records operations in execution order. Matrices are identified
// by pointer, so inputs must not be reallocated between the forward and
// backward passes. A Tape is not safe for concurrent use.
type Tape struct {
	ops []Operation
}

// NewTape returns an empty tape.
func NewTape() *Tape {
	return &Tape{ops: make([]Operation, 0, 16)}
}

// Reset drops all recorded operations so the tape can be reused.
func (t *Tape) Reset() {
	t.ops = t.ops[:0]
}

// record appends an operation to the tape and returns its output.
func (t *Tape) record(op Operation) *mat.Dense {
	t.ops = append(t.ops, op)
	return op.Output()
}

// MatMul records c = a·b.
func (t *Tape) MatMul(a, b *mat.Dense) *mat.Dense {
	ar, _ := a.Dims()
	_, bc := b.Dims()
	out := mat.NewDense(ar, bc, nil)
	out.Mul(a, b)
	return t.record(&matMulOp{a: a, b: b, out: out})
}

// Sub records c = a − b.
func (t *Tape) Sub(a, b *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	out.Sub(a, b)
	return t.record(&subOp{a: a, b: b, out: out})
}

// RowSoftmax records the softmax of a along each row, so every output
// row is non-negative and sums to exactly one.
func (t *Tape) RowSoftmax(a *mat.Dense) *mat.Dense {
	out := RowSoftmax(a)
	return t.record(&rowSoftmaxOp{in: a, out: out})
}

// SumSquares records the squared Frobenius norm of a as a 1×1 matrix.
func (t *Tape) SumSquares(a *mat.Dense) *mat.Dense {
	var sum float64
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		row := a.RawRowView(i)
		for j := 0; j < c; j++ {
			sum += row[j] * row[j]
		}
	}
	out := mat.NewDense(1, 1, []float64{sum})
	return t.record(&sumSquaresOp{in: a, out: out})
}

// Backward computes gradients for every matrix that participated in
// producing output, walking the tape in reverse. The returned map is
// keyed by input matrix pointer. The output gradient is seeded with
// ones, which for a 1×1 loss yields plain dloss/dinput.
func (t *Tape) Backward(output *mat.Dense) map[*mat.Dense]*mat.Dense {
	grads := make(map[*mat.Dense]*mat.Dense)
	if len(t.ops) == 0 {
		return grads
	}

	r, c := output.Dims()
	seed := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			seed.Set(i, j, 1)
		}
	}
	grads[output] = seed

	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue // no gradient flows through this op
		}
		inputGrads := op.Backward(outGrad)
		for j, in := range op.Inputs() {
			g := inputGrads[j]
			if g == nil {
				continue
			}
			if acc, ok := grads[in]; ok {
				acc.Add(acc, g)
			} else {
				grads[in] = g
			}
		}
	}
	return grads
}
