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

// AA is an archetypal analysis estimator. It holds validated, immutable
// configuration; every Fit owns its own state, so one estimator may run
// concurrent fits on independent data.
type AA struct {
	cfg   Config
	strat strategy
}

// New validates cfg (after applying defaults) and returns the
// estimator. All configuration errors (an unsupported method or
// initializer, out-of-range numeric options) are reported here, before
// any fit is attempted.
func New(cfg Config) (*AA, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &AA{cfg: cfg, strat: strategyFor(cfg)}, nil
}

// Config returns the estimator's completed configuration.
func (aa *AA) Config() Config { return aa.cfg }

// Fit factorizes x (n samples × f features) and returns the fitted
// model. The input is not modified and must be finite; the number of
// archetypes may not exceed n.
func (aa *AA) Fit(x *mat.Dense) (*Model, error) {
	n, f := x.Dims()
	if aa.cfg.NArchetypes > n {
		return nil, fmt.Errorf("archetypes: %d archetypes requested but only %d samples", aa.cfg.NArchetypes, n)
	}
	for i := 0; i < n; i++ {
		for _, v := range x.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("archetypes: input contains non-finite value at row %d", i)
			}
		}
	}

	m := newModel(aa.cfg, n, f)
	if err := aa.strat.fit(m, x); err != nil {
		return nil, err
	}
	return m, nil
}

// Transform projects new samples onto a fitted model's archetypes,
// returning the n×k simplex weights that best reconstruct each sample.
// The projection uses the bounded simplex least-squares solve
// regardless of the method the model was fitted with.
func (aa *AA) Transform(m *Model, x *mat.Dense) (*mat.Dense, error) {
	return m.Transform(x)
}

// Transform projects samples onto the fitted archetypes; see
// AA.Transform.
func (m *Model) Transform(x *mat.Dense) (*mat.Dense, error) {
	if m.z == nil {
		return nil, fmt.Errorf("archetypes: model has not been fitted")
	}
	_, f := x.Dims()
	if f != m.f {
		return nil, fmt.Errorf("archetypes: input has %d features, model was fitted with %d", f, m.f)
	}
	c := m.cfg.NNLS.Const
	if c == 0 {
		c = 100
	}
	return nnls.SolveSimplex(x, m.z, m.cfg.NNLS.MaxIterOptimizer, c)
}
