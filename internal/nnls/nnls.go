// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nnls implements non-negative least squares solves with an
// approximate sum-to-one (simplex) constraint.
//
// The core routine is an active-set method in the style of Lawson and
// Hanson ("Solving Least Squares Problems", 1974, Ch. 23), reformulated
// on the normal equations so that one Gram matrix can be shared across
// many right-hand sides. The simplex constraint is handled by augmenting
// the system with a constant row: larger weights push solutions closer
// to an exact simplex at the cost of conditioning.
package nnls

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const featureTol = 1e-10

// SolveSimplex returns the coefficient matrix W (m×p) whose rows are
// non-negative and approximately sum to one, minimizing for each row i
//
//	‖design[i,:] − W[i,:]·target‖² + c²·(Σ_j W[i,j] − 1)²
//
// where design is m×f and target is p×f. maxIter bounds the active-set
// iterations per row (0 selects 3p, the Lawson-Hanson default). The
// solver does not fail on non-convergence within the budget: the
// best-effort iterate found so far is kept for that row.
func SolveSimplex(design, target mat.Matrix, maxIter int, c float64) (*mat.Dense, error) {
	m, f := design.Dims()
	p, ft := target.Dims()
	if f != ft {
		return nil, fmt.Errorf("nnls: design has %d features, target has %d", f, ft)
	}
	if c <= 0 {
		return nil, fmt.Errorf("nnls: simplex weight must be positive, got %g", c)
	}
	if maxIter <= 0 {
		maxIter = 3 * p
	}

	// Normal equations of the augmented system [targetᵀ; c·1ᵀ]:
	// gram = target·targetᵀ + c²·J where J is the all-ones matrix.
	gram := mat.NewDense(p, p, nil)
	gram.Mul(target, target.T())
	cc := c * c
	gram.Apply(func(_, _ int, v float64) float64 { return v + cc }, gram)

	w := mat.NewDense(m, p, nil)
	rhs := make([]float64, p)
	ws := newWorkspace(p)
	for i := 0; i < m; i++ {
		// rhs = target·design[i,:]ᵀ + c².
		for j := 0; j < p; j++ {
			var dot float64
			for l := 0; l < f; l++ {
				dot += target.At(j, l) * design.At(i, l)
			}
			rhs[j] = dot + cc
		}
		solveRow(gram, rhs, maxIter, ws)
		w.SetRow(i, ws.x)
	}
	return w, nil
}

// workspace holds per-row solver state so SolveSimplex allocates the
// active-set buffers once.
type workspace struct {
	x       []float64 // current iterate
	grad    []float64 // dual vector: rhs − gram·x
	passive []bool
	idx     []int // scratch for the passive index list
}

func newWorkspace(p int) *workspace {
	return &workspace{
		x:       make([]float64, p),
		grad:    make([]float64, p),
		passive: make([]bool, p),
		idx:     make([]int, 0, p),
	}
}

// solveRow runs the active-set iteration for a single right-hand side,
// leaving the solution in ws.x.
//
// Starting from x = 0 with every index constrained, the index with the
// most positive dual component is freed, the unconstrained subproblem on
// the free set is solved, and any free coefficient driven negative is
// pulled back to the boundary and re-constrained. The loop terminates at
// the KKT point (all dual components non-positive) or when the iteration
// budget is spent.
func solveRow(gram *mat.Dense, rhs []float64, maxIter int, ws *workspace) {
	p := len(rhs)
	for j := 0; j < p; j++ {
		ws.x[j] = 0
		ws.grad[j] = rhs[j]
		ws.passive[j] = false
	}

	scale := math.Abs(floatsMax(rhs))
	if scale == 0 {
		scale = 1
	}
	tol := featureTol * scale

	iter := 0
	for {
		// Pick the most violated constraint.
		t, wmax := -1, tol
		for j := 0; j < p; j++ {
			if !ws.passive[j] && ws.grad[j] > wmax {
				t, wmax = j, ws.grad[j]
			}
		}
		if t < 0 {
			return // KKT conditions hold
		}
		ws.passive[t] = true

		for {
			if iter++; iter > maxIter {
				return // budget spent, keep best effort
			}

			z, ok := solveFree(gram, rhs, ws)
			if !ok {
				// Near-singular free set: reject the newest candidate.
				ws.passive[t] = false
				ws.grad[t] = 0
				break
			}

			if minFree(z, ws) > tol {
				for k, j := range ws.idx {
					ws.x[j] = z[k]
				}
				break
			}

			// Interpolate back to the feasible boundary.
			alpha := math.Inf(1)
			for k, j := range ws.idx {
				if z[k] <= tol {
					if a := ws.x[j] / (ws.x[j] - z[k]); a < alpha {
						alpha = a
					}
				}
			}
			for k, j := range ws.idx {
				ws.x[j] += alpha * (z[k] - ws.x[j])
			}
			for _, j := range ws.idx {
				if ws.x[j] <= tol {
					ws.x[j] = 0
					ws.passive[j] = false
				}
			}
		}

		// Refresh the dual vector: grad = rhs − gram·x.
		for j := 0; j < p; j++ {
			row := gram.RawRowView(j)
			dot := 0.0
			for l, v := range ws.x {
				if v != 0 {
					dot += row[l] * v
				}
			}
			ws.grad[j] = rhs[j] - dot
		}
	}
}

// solveFree solves the unconstrained subproblem restricted to the
// passive (free) index set. Returns false when the subsystem is too
// ill-conditioned to trust.
func solveFree(gram *mat.Dense, rhs []float64, ws *workspace) ([]float64, bool) {
	ws.idx = ws.idx[:0]
	for j, free := range ws.passive {
		if free {
			ws.idx = append(ws.idx, j)
		}
	}
	np := len(ws.idx)
	sub := mat.NewDense(np, np, nil)
	b := mat.NewVecDense(np, nil)
	for a, j := range ws.idx {
		for bcol, l := range ws.idx {
			sub.Set(a, bcol, gram.At(j, l))
		}
		b.SetVec(a, rhs[j])
	}
	var sol mat.VecDense
	if err := sol.SolveVec(sub, b); err != nil {
		if _, near := err.(mat.Condition); !near {
			return nil, false
		}
	}
	z := make([]float64, np)
	for a := range z {
		z[a] = sol.AtVec(a)
		if math.IsNaN(z[a]) || math.IsInf(z[a], 0) {
			return nil, false
		}
	}
	return z, true
}

func minFree(z []float64, ws *workspace) float64 {
	m := math.Inf(1)
	for k := range ws.idx {
		if z[k] < m {
			m = z[k]
		}
	}
	return m
}

func floatsMax(s []float64) float64 {
	m := math.Inf(-1)
	for _, v := range s {
		if v > m {
			m = v
		}
	}
	return m
}
