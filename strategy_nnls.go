// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes/internal/nnls"
)

// nnlsStrategy updates each coefficient matrix with one bounded simplex
// least-squares solve per outer iteration: no inner iteration of its
// own, so the cost is dominated by the two solves.
type nnlsStrategy struct {
	maxIter int
	c       float64
}

func (s nnlsStrategy) initA(m *Model, _ *mat.Dense) { initAOneHot(m) }

func (s nnlsStrategy) initB(m *Model, x *mat.Dense) error { return initBOneHot(m, x) }

// optimizeA solves X ≈ A·Z for A with the current archetypes as the
// dictionary.
func (s nnlsStrategy) optimizeA(m *Model, x *mat.Dense) error {
	a, err := nnls.SolveSimplex(x, m.z, s.maxIter, s.c)
	if err != nil {
		return err
	}
	m.a = a
	return nil
}

// optimizeB first forms the unconstrained archetype estimate through
// the Moore-Penrose pseudo-inverse of A, then solves estimate ≈ B·X so
// each archetype is re-expressed as a simplex combination of the data.
func (s nnlsStrategy) optimizeB(m *Model, x *mat.Dense) error {
	pinv, err := pseudoInverse(m.a)
	if err != nil {
		return err
	}
	m.z.Mul(pinv, x)

	b, err := nnls.SolveSimplex(m.z, x, s.maxIter, s.c)
	if err != nil {
		return err
	}
	m.b = b
	return nil
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse V·Σ⁺·Uᵀ,
// zeroing reciprocals of singular values below the usual relative
// cutoff. An SVD that fails to converge is a fatal numerical error.
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("archetypes: SVD of the assignment matrix failed to converge")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	r, c := a.Dims()
	cutoff := 1e-15 * math.Max(float64(r), float64(c)) * s[0]
	sinv := mat.NewDense(len(s), len(s), nil)
	for i, si := range s {
		if si > cutoff {
			sinv.Set(i, i, 1/si)
		}
	}

	pinv := mat.NewDense(c, r, nil)
	var vs mat.Dense
	vs.Mul(&v, sinv)
	pinv.Mul(&vs, u.T())
	return pinv, nil
}

func (s nnlsStrategy) fit(m *Model, x *mat.Dense) error { return runFit(s, m, x) }
