// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RowSoftmax computes the softmax of each row of a with max-shifting for
// numerical stability. It is exposed so callers can recompute the
// constrained view of a logits matrix outside a recorded forward pass.
func RowSoftmax(a *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := a.RawRowView(i)
		maxv := math.Inf(-1)
		for _, v := range row {
			if v > maxv {
				maxv = v
			}
		}
		var sum float64
		dst := out.RawRowView(i)
		for j, v := range row {
			e := math.Exp(v - maxv)
			dst[j] = e
			sum += e
		}
		for j := range dst {
			dst[j] /= sum
		}
	}
	return out
}

// matMulOp is c = a·b.
//
// Backward: d(a·b)/da = g·bᵀ, d(a·b)/db = aᵀ·g.
type matMulOp struct {
	a, b, out *mat.Dense
}

func (op *matMulOp) Backward(g *mat.Dense) []*mat.Dense {
	ar, ac := op.a.Dims()
	br, bc := op.b.Dims()

	ga := mat.NewDense(ar, ac, nil)
	ga.Mul(g, op.b.T())

	gb := mat.NewDense(br, bc, nil)
	gb.Mul(op.a.T(), g)

	return []*mat.Dense{ga, gb}
}

func (op *matMulOp) Inputs() []*mat.Dense { return []*mat.Dense{op.a, op.b} }
func (op *matMulOp) Output() *mat.Dense   { return op.out }

// subOp is c = a − b. The gradient flows unchanged to a and negated to b.
type subOp struct {
	a, b, out *mat.Dense
}

func (op *subOp) Backward(g *mat.Dense) []*mat.Dense {
	r, c := g.Dims()
	ga := mat.NewDense(r, c, nil)
	ga.Copy(g)
	gb := mat.NewDense(r, c, nil)
	gb.Scale(-1, g)
	return []*mat.Dense{ga, gb}
}

func (op *subOp) Inputs() []*mat.Dense { return []*mat.Dense{op.a, op.b} }
func (op *subOp) Output() *mat.Dense   { return op.out }

// rowSoftmaxOp caches the softmax output s; the Jacobian-vector product
// per row reduces to
//
//	gIn_j = s_j · (g_j − Σ_i g_i·s_i)
type rowSoftmaxOp struct {
	in, out *mat.Dense
}

func (op *rowSoftmaxOp) Backward(g *mat.Dense) []*mat.Dense {
	r, c := op.in.Dims()
	gin := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		s := op.out.RawRowView(i)
		gr := g.RawRowView(i)
		var dot float64
		for j := 0; j < c; j++ {
			dot += gr[j] * s[j]
		}
		dst := gin.RawRowView(i)
		for j := 0; j < c; j++ {
			dst[j] = s[j] * (gr[j] - dot)
		}
	}
	return []*mat.Dense{gin}
}

func (op *rowSoftmaxOp) Inputs() []*mat.Dense { return []*mat.Dense{op.in} }
func (op *rowSoftmaxOp) Output() *mat.Dense   { return op.out }

// sumSquaresOp is the squared Frobenius norm reduced to a 1×1 matrix.
//
// Backward: d(Σ aᵢⱼ²)/da = 2·g₀₀·a.
type sumSquaresOp struct {
	in, out *mat.Dense
}

func (op *sumSquaresOp) Backward(g *mat.Dense) []*mat.Dense {
	r, c := op.in.Dims()
	gin := mat.NewDense(r, c, nil)
	gin.Scale(2*g.At(0, 0), op.in)
	return []*mat.Dense{gin}
}

func (op *sumSquaresOp) Inputs() []*mat.Dense { return []*mat.Dense{op.in} }
func (op *sumSquaresOp) Output() *mat.Dense   { return op.out }
