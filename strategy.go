// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"gonum.org/v1/gonum/mat"
)

// strategy is one numerical method for the alternating loop. All five
// operations mutate the per-fit Model in place; the strategy value
// itself is immutable configuration and safe to share across fits.
//
// fit is the entry point: it performs any one-time pre-computation and
// then hands control to the generic engine loop (runFit), which calls
// the other four operations.
type strategy interface {
	initA(m *Model, x *mat.Dense)
	initB(m *Model, x *mat.Dense) error
	optimizeA(m *Model, x *mat.Dense) error
	optimizeB(m *Model, x *mat.Dense) error
	fit(m *Model, x *mat.Dense) error
}

// strategyFor resolves the closed method set. cfg has been validated,
// so the default arm is unreachable.
func strategyFor(cfg Config) strategy {
	switch cfg.Method {
	case MethodPGD:
		return pgdStrategy{
			beta:    cfg.PGD.Beta,
			nIter:   cfg.PGD.NIterOptimizer,
			maxIter: cfg.PGD.MaxIterOptimizer,
			lr:      cfg.PGD.LearningRate,
		}
	case MethodGradient:
		return gradientStrategy{opt: cfg.Gradient.Optimizer}
	default:
		return nnlsStrategy{
			maxIter: cfg.NNLS.MaxIterOptimizer,
			c:       cfg.NNLS.Const,
		}
	}
}

// initAOneHot assigns every sample to one archetype uniformly at
// random: the default A seed shared by all strategies.
func initAOneHot(m *Model) {
	m.a = mat.NewDense(m.n, m.k, nil)
	for i := 0; i < m.n; i++ {
		m.a.Set(i, m.rng.Intn(m.k), 1)
	}
}

// initBOneHot seeds every archetype with a single data point chosen by
// the configured initializer: the default B seed shared by all
// strategies.
func initBOneHot(m *Model, x *mat.Dense) error {
	ind, err := selectIndices(m.cfg.Init, x, m.k, m.rng)
	if err != nil {
		return err
	}
	m.b = mat.NewDense(m.k, m.n, nil)
	for i, j := range ind {
		m.b.Set(i, j, 1)
	}
	return nil
}
