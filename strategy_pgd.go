// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"gonum.org/v1/gonum/mat"
)

// clampFloor replaces negative entries during the simplex projection.
// The same floor is applied to both coefficient matrices.
const clampFloor = 1e-8

// pgdStrategy performs projected gradient descent on the closed-form
// quadratic losses of each block, working in transposed orientation
// (coefficients per column) and evaluating the loss through
// pre-computed Gram terms instead of the full reconstruction.
//
// Step sizes for A and B are independent, persist across outer
// iterations and self-tune through a backtracking line search: a trial
// step that does not increase the loss is accepted and the step size
// grows by 1/beta; otherwise it shrinks by beta and the trial repeats.
// When no trial improves the loss within the budget, the matrix is left
// at the last (projected) trial point and the outer step is still
// consumed. That is an observable stall, not an error.
type pgdStrategy struct {
	beta    float64
	nIter   int
	maxIter int
	lr      float64
}

func (s pgdStrategy) initA(m *Model, _ *mat.Dense) { initAOneHot(m) }

func (s pgdStrategy) initB(m *Model, x *mat.Dense) error { return initBOneHot(m, x) }

// fit pre-computes the sample Gram matrix and the gradient buffers,
// seeds both step sizes, then runs the generic loop.
func (s pgdStrategy) fit(m *Model, x *mat.Dense) error {
	m.xxt = mat.NewDense(m.n, m.n, nil)
	m.xxt.Mul(x, x.T())
	m.ga = mat.NewDense(m.n, m.k, nil)
	m.gb = mat.NewDense(m.k, m.n, nil)
	m.stepA = s.lr
	m.stepB = s.lr
	return runFit(s, m, x)
}

// optimizeA descends on S = Aᵀ (k×n) holding B fixed.
//
// With G = X·Xᵗ, the loss restricted to this block is, up to a constant,
//
//	rss(S) = −2·Σ (BG ⊙ S) + Σ (BGBᵀ ⊙ S·Sᵀ)
//
// so each line-search trial costs O(k²·n) instead of a full product
// with X.
func (s pgdStrategy) optimizeA(m *Model, _ *mat.Dense) error {
	k, n := m.k, m.n

	st := mat.NewDense(k, n, nil)
	st.Copy(m.a.T())

	// bg = B·G (k×n), bgb = B·G·Bᵀ (k×k).
	bg := mat.NewDense(k, n, nil)
	bg.Mul(m.b, m.xxt)
	bgb := mat.NewDense(k, k, nil)
	bgb.Mul(bg, m.b.T())

	sst := mat.NewDense(k, k, nil)
	sst.Mul(st, st.T())
	rssPrev := -2*matDot(bg, st) + matDot(bgb, sst)

	grad := mat.NewDense(k, n, nil)
	prev := mat.NewDense(k, n, nil)
	for i := 0; i < s.nIter; i++ {
		// Gradient of the quadratic, re-centered per column so the step
		// stays tangent to the sum-to-one constraint.
		grad.Mul(bgb, st)
		grad.Sub(grad, bg)
		recenterColumns(grad, st)

		prev.Copy(st)
		for trial := 0; trial < s.maxIter; trial++ {
			stepColumns(st, prev, grad, m.stepA)
			sst.Mul(st, st.T())
			rss := -2*matDot(bg, st) + matDot(bgb, sst)
			if rss <= rssPrev {
				m.stepA /= s.beta
				rssPrev = rss
				break
			}
			m.stepA *= s.beta
		}
	}

	m.ga.Copy(grad.T())
	m.a.Copy(st.T())
	return nil
}

// optimizeB descends on C = Bᵀ (n×k) holding A fixed; the roles of the
// pre-computed terms mirror optimizeA with
//
//	rss(C) = −2·Σ (G·A ⊙ C) + Σ (Cᵀ·G·C ⊙ AᵀA)
func (s pgdStrategy) optimizeB(m *Model, _ *mat.Dense) error {
	k, n := m.k, m.n

	ct := mat.NewDense(n, k, nil)
	ct.Copy(m.b.T())

	// sst = AᵀA (k×k), ga = G·A (n×k).
	sst := mat.NewDense(k, k, nil)
	sst.Mul(m.a.T(), m.a)
	xa := mat.NewDense(n, k, nil)
	xa.Mul(m.xxt, m.a)

	rssPrev := -2*matDot(xa, ct) + pgdQuadratic(ct, m.xxt, sst)

	grad := mat.NewDense(n, k, nil)
	prev := mat.NewDense(n, k, nil)
	gc := mat.NewDense(n, k, nil)
	for i := 0; i < s.nIter; i++ {
		gc.Mul(m.xxt, ct)
		grad.Mul(gc, sst)
		grad.Sub(grad, xa)
		recenterColumns(grad, ct)

		prev.Copy(ct)
		for trial := 0; trial < s.maxIter; trial++ {
			stepColumns(ct, prev, grad, m.stepB)
			rss := -2*matDot(xa, ct) + pgdQuadratic(ct, m.xxt, sst)
			if rss <= rssPrev {
				m.stepB /= s.beta
				rssPrev = rss
				break
			}
			m.stepB *= s.beta
		}
	}

	m.gb.Copy(grad.T())
	m.b.Copy(ct.T())
	return nil
}

// pgdQuadratic evaluates Σ ((Cᵀ·G·C) ⊙ sst).
func pgdQuadratic(c, g, sst *mat.Dense) float64 {
	var gc, cgc mat.Dense
	gc.Mul(g, c)
	cgc.Mul(c.T(), &gc)
	return matDot(&cgc, sst)
}

// matDot is the element-wise (Frobenius) inner product Σ a ⊙ b.
func matDot(a, b *mat.Dense) float64 {
	r, c := a.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		ra := a.RawRowView(i)
		rb := b.RawRowView(i)
		for j := 0; j < c; j++ {
			sum += ra[j] * rb[j]
		}
	}
	return sum
}

// recenterColumns subtracts from every column of grad its inner product
// with the corresponding column of s, removing the component normal to
// the simplex.
func recenterColumns(grad, s *mat.Dense) {
	r, c := grad.Dims()
	for j := 0; j < c; j++ {
		var dot float64
		for i := 0; i < r; i++ {
			dot += grad.At(i, j) * s.At(i, j)
		}
		for i := 0; i < r; i++ {
			grad.Set(i, j, grad.At(i, j)-dot)
		}
	}
}

// stepColumns sets dst = prev − step·grad and projects each column onto
// the simplex: negative entries are clamped to a small floor and the
// column is renormalized to sum to one.
func stepColumns(dst, prev, grad *mat.Dense, step float64) {
	r, c := dst.Dims()
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			v := prev.At(i, j) - step*grad.At(i, j)
			if v < 0 {
				v = clampFloor
			}
			dst.Set(i, j, v)
			sum += v
		}
		for i := 0; i < r; i++ {
			dst.Set(i, j, dst.At(i, j)/sum)
		}
	}
}
