// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes/optim"
)

// Model is the state of one fit. During Fit it is the mutable record
// every strategy operation works against; afterwards it carries the
// fitted factorization, read-only to callers.
type Model struct {
	cfg Config
	rng *rand.Rand

	n, k, f int

	a      *mat.Dense // n×k, similarity degree
	b      *mat.Dense // k×n, archetypes similarity degree
	z      *mat.Dense // k×f, archetypes (always B·X)
	losses []float64
	labels []int

	initArchetypes *mat.Dense // only when cfg.SaveInit

	// Strategy-private state, discarded once the engine returns.
	xxt          *mat.Dense // X·Xᵗ Gram matrix (PGD)
	ga, gb       *mat.Dense // running gradients of A and B (PGD)
	stepA, stepB float64    // warm-started step sizes (PGD)

	logitsA, logitsB *mat.Dense  // unconstrained parameters (gradient)
	stateA, stateB   optim.State // optimizer state per matrix (gradient)
}

func newModel(cfg Config, n, f int) *Model {
	return &Model{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		n:   n,
		k:   cfg.NArchetypes,
		f:   f,
	}
}

// computeArchetypes refreshes the derived matrix Z = B·X.
func (m *Model) computeArchetypes(x *mat.Dense) {
	if m.z == nil {
		m.z = mat.NewDense(m.k, m.f, nil)
	}
	m.z.Mul(m.b, x)
}

// rss is the reconstruction error ‖X − A·Z‖².
func (m *Model) rss(x *mat.Dense) float64 {
	var hat mat.Dense
	hat.Mul(m.a, m.z)
	hat.Sub(x, &hat)
	norm := mat.Norm(&hat, 2)
	return norm * norm
}

// finalize computes hard labels and releases strategy-private state.
func (m *Model) finalize() {
	m.labels = make([]int, m.n)
	for i := 0; i < m.n; i++ {
		row := m.a.RawRowView(i)
		best, bestv := 0, math.Inf(-1)
		for j, v := range row {
			if v > bestv {
				best, bestv = j, v
			}
		}
		m.labels[i] = best
	}

	m.xxt = nil
	m.ga, m.gb = nil, nil
	m.logitsA, m.logitsB = nil, nil
	m.stateA, m.stateB = nil, nil
}

// Archetypes returns the k×f archetype matrix Z = B·X.
func (m *Model) Archetypes() *mat.Dense { return m.z }

// A returns the n×k similarity degree matrix: row i holds the convex
// combination expressing sample i in terms of the archetypes.
func (m *Model) A() *mat.Dense { return m.a }

// B returns the k×n archetypes similarity degree matrix: row j holds
// the convex combination expressing archetype j in terms of the data.
func (m *Model) B() *mat.Dense { return m.b }

// Labels returns the per-sample hard assignment, argmax over the rows
// of A with ties broken by the lowest index.
func (m *Model) Labels() []int { return m.labels }

// Losses returns the reconstruction error history, one entry per
// completed iteration including the pre-optimization value.
func (m *Model) Losses() []float64 { return m.losses }

// InitialArchetypes returns the archetypes computed from the initial
// assignment, or nil unless the fit ran with Config.SaveInit.
func (m *Model) InitialArchetypes() *mat.Dense { return m.initArchetypes }

// Dims returns the fitted problem dimensions: samples, archetypes,
// features.
func (m *Model) Dims() (n, k, f int) { return m.n, m.k, m.f }
