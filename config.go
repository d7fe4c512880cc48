// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"fmt"

	"github.com/wangzcl/archetypes/optim"
)

// Method selects the numerical strategy driving the alternating loop.
type Method string

// Supported optimization methods. The set is closed: an unrecognized
// value is a configuration error reported by New.
const (
	MethodNNLS     Method = "nnls"
	MethodPGD      Method = "pgd"
	MethodGradient Method = "gradient"
)

// Init selects how the initial archetype-to-sample assignment (the
// one-hot seed of B) is drawn.
type Init string

// Supported initializers.
const (
	InitUniform     Init = "uniform"
	InitFurthestSum Init = "furthest_sum"
)

// NNLSConfig holds options for MethodNNLS.
type NNLSConfig struct {
	// MaxIterOptimizer bounds the active-set iterations of each
	// least-squares solve. Zero selects the solver default (3k).
	MaxIterOptimizer int

	// Const weights the sum-to-one augmentation row. Larger values push
	// solutions closer to an exact simplex at the cost of conditioning.
	// Zero selects 100.
	Const float64
}

// PGDConfig holds options for MethodPGD.
type PGDConfig struct {
	// Beta is the line-search decay factor in (0, 1): step sizes shrink
	// by Beta on a rejected trial and grow by 1/Beta on acceptance.
	// Zero selects 0.5.
	Beta float64

	// NIterOptimizer is the number of gradient steps per matrix per
	// outer iteration. Zero selects 10.
	NIterOptimizer int

	// MaxIterOptimizer bounds the line-search trials within one
	// gradient step. Zero selects 1000.
	MaxIterOptimizer int

	// LearningRate is the initial step size for both matrices; each
	// matrix then self-tunes its own step across outer iterations.
	// Zero selects 1.0.
	LearningRate float64
}

// GradientConfig holds options for MethodGradient.
type GradientConfig struct {
	// Optimizer is the update rule applied to both logits matrices
	// (each with independent state). Nil selects optim.SGD{LR: 1e-3}.
	Optimizer optim.Optimizer
}

// Config configures an AA estimator.
//
// Zero values of Tol, Init, Method and the per-method options select
// the documented defaults. MaxIter is taken literally: zero runs no
// optimization iterations and returns the initial assignment, so use
// DefaultConfig (or set MaxIter explicitly) for a real fit.
type Config struct {
	// NArchetypes is the number of archetypes k. Required, at least 1,
	// and at most the number of samples passed to Fit.
	NArchetypes int

	// MaxIter bounds the outer alternating iterations.
	MaxIter int

	// Tol stops the loop once the absolute change in reconstruction
	// error between consecutive iterations drops below it. Zero selects
	// 1e-4.
	Tol float64

	// Init selects the seed for B's one-hot assignment.
	Init Init

	// SaveInit retains a copy of the archetypes computed from the
	// initial assignment, before any optimization.
	SaveInit bool

	// Verbose logs the reconstruction error every 10 iterations.
	Verbose bool

	// Seed fixes the random source, making fits reproducible.
	Seed int64

	// Method selects the optimization strategy.
	Method Method

	NNLS     NNLSConfig
	PGD      PGDConfig
	Gradient GradientConfig
}

// DefaultConfig returns the configuration matching the historical
// defaults: 300 outer iterations, tolerance 1e-4, uniform
// initialization and the NNLS method.
func DefaultConfig(nArchetypes int) Config {
	return Config{
		NArchetypes: nArchetypes,
		MaxIter:     300,
		Tol:         1e-4,
		Init:        InitUniform,
		Method:      MethodNNLS,
	}
}

// withDefaults fills zero-valued options and returns the completed
// configuration.
func (c Config) withDefaults() Config {
	if c.Tol == 0 {
		c.Tol = 1e-4
	}
	if c.Init == "" {
		c.Init = InitUniform
	}
	if c.Method == "" {
		c.Method = MethodNNLS
	}
	if c.NNLS.Const == 0 {
		c.NNLS.Const = 100
	}
	if c.PGD.Beta == 0 {
		c.PGD.Beta = 0.5
	}
	if c.PGD.NIterOptimizer == 0 {
		c.PGD.NIterOptimizer = 10
	}
	if c.PGD.MaxIterOptimizer == 0 {
		c.PGD.MaxIterOptimizer = 1000
	}
	if c.PGD.LearningRate == 0 {
		c.PGD.LearningRate = 1.0
	}
	if c.Gradient.Optimizer == nil {
		c.Gradient.Optimizer = optim.SGD{LR: 1e-3}
	}
	return c
}

// validate reports the first configuration error, after defaults have
// been applied.
func (c Config) validate() error {
	if c.NArchetypes < 1 {
		return fmt.Errorf("archetypes: NArchetypes must be at least 1, got %d", c.NArchetypes)
	}
	if c.MaxIter < 0 {
		return fmt.Errorf("archetypes: MaxIter must be non-negative, got %d", c.MaxIter)
	}
	if c.Tol <= 0 {
		return fmt.Errorf("archetypes: Tol must be positive, got %g", c.Tol)
	}
	switch c.Init {
	case InitUniform, InitFurthestSum:
	default:
		return fmt.Errorf("archetypes: unsupported init %q", c.Init)
	}
	switch c.Method {
	case MethodNNLS:
		if c.NNLS.MaxIterOptimizer < 0 {
			return fmt.Errorf("archetypes: NNLS.MaxIterOptimizer must be non-negative, got %d", c.NNLS.MaxIterOptimizer)
		}
		if c.NNLS.Const <= 0 {
			return fmt.Errorf("archetypes: NNLS.Const must be positive, got %g", c.NNLS.Const)
		}
	case MethodPGD:
		if c.PGD.Beta <= 0 || c.PGD.Beta >= 1 {
			return fmt.Errorf("archetypes: PGD.Beta must be in (0, 1), got %g", c.PGD.Beta)
		}
		if c.PGD.NIterOptimizer < 1 {
			return fmt.Errorf("archetypes: PGD.NIterOptimizer must be at least 1, got %d", c.PGD.NIterOptimizer)
		}
		if c.PGD.MaxIterOptimizer < 1 {
			return fmt.Errorf("archetypes: PGD.MaxIterOptimizer must be at least 1, got %d", c.PGD.MaxIterOptimizer)
		}
		if c.PGD.LearningRate <= 0 {
			return fmt.Errorf("archetypes: PGD.LearningRate must be positive, got %g", c.PGD.LearningRate)
		}
	case MethodGradient:
		if c.Gradient.Optimizer == nil {
			return fmt.Errorf("archetypes: Gradient.Optimizer must be set")
		}
	default:
		return fmt.Errorf("archetypes: unsupported method %q", c.Method)
	}
	return nil
}
