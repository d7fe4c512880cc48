// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes"
	"github.com/wangzcl/archetypes/optim"
)

// squareData returns four points forming the unit square in 2D.
func squareData() *mat.Dense {
	return mat.NewDense(4, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
	})
}

func allMethods() []archetypes.Method {
	return []archetypes.Method{
		archetypes.MethodNNLS,
		archetypes.MethodPGD,
		archetypes.MethodGradient,
	}
}

func fitSquare(t *testing.T, cfg archetypes.Config) *archetypes.Model {
	t.Helper()
	aa, err := archetypes.New(cfg)
	require.NoError(t, err)
	model, err := aa.Fit(squareData())
	require.NoError(t, err)
	return model
}

// With as many archetypes as samples, the archetypes can equal the data
// and the reconstruction error collapses to zero.
func TestFitNNLSSquareExactRecovery(t *testing.T) {
	cfg := archetypes.DefaultConfig(4)
	cfg.Seed = 1
	model := fitSquare(t, cfg)

	losses := model.Losses()
	assert.Less(t, losses[len(losses)-1], 1e-6, "final rss should be near zero")

	// Every corner of the square should be matched by some archetype.
	x := squareData()
	z := model.Archetypes()
	for i := 0; i < 4; i++ {
		best := math.Inf(1)
		for j := 0; j < 4; j++ {
			d := math.Hypot(x.At(i, 0)-z.At(j, 0), x.At(i, 1)-z.At(j, 1))
			if d < best {
				best = d
			}
		}
		assert.Less(t, best, 1e-3, "corner %d has no nearby archetype", i)
	}
}

func TestFitTwoArchetypesLossDecreases(t *testing.T) {
	for _, method := range allMethods() {
		t.Run(string(method), func(t *testing.T) {
			cfg := archetypes.DefaultConfig(2)
			cfg.Method = method
			cfg.Seed = 7
			cfg.MaxIter = 50
			if method == archetypes.MethodGradient {
				cfg.Gradient.Optimizer = optim.Adam{LR: 0.05}
			}
			model := fitSquare(t, cfg)

			losses := model.Losses()
			require.GreaterOrEqual(t, len(losses), 2)
			assert.Greater(t, losses[len(losses)-1], 0.0, "two archetypes cannot reconstruct a square exactly")
			assert.Less(t, losses[len(losses)-1], losses[0], "fit should improve on the initial assignment")

			if method != archetypes.MethodGradient {
				for i := 1; i < len(losses); i++ {
					slack := 1e-6 * (1 + losses[i-1])
					assert.LessOrEqual(t, losses[i], losses[i-1]+slack,
						"loss increased at iteration %d", i)
				}
			}
		})
	}
}

// With two archetypes on the square the fit cannot be exact, and the
// archetypes must lie on the convex hull of the data: inside the unit
// square, with at least one coordinate pushed to the boundary.
func TestFitTwoArchetypesOnConvexHull(t *testing.T) {
	for _, method := range allMethods() {
		t.Run(string(method), func(t *testing.T) {
			cfg := archetypes.DefaultConfig(2)
			cfg.Method = method
			cfg.Seed = 7
			cfg.MaxIter = 50
			if method == archetypes.MethodGradient {
				cfg.Gradient.Optimizer = optim.Adam{LR: 0.05}
			}
			model := fitSquare(t, cfg)

			// Membership: Z = B·X with simplex rows of B keeps every
			// archetype inside the hull of the corners.
			const eps = 1e-2
			z := model.Archetypes()
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					v := z.At(i, j)
					assert.GreaterOrEqual(t, v, -eps, "archetype %d leaves the square", i)
					assert.LessOrEqual(t, v, 1+eps, "archetype %d leaves the square", i)
				}
			}

			// The gradient method moves its softmax-blended archetypes
			// toward the boundary too slowly to pin down here; the
			// alternating least-squares and line-search methods land on it.
			if method == archetypes.MethodGradient {
				return
			}
			for i := 0; i < 2; i++ {
				onBoundary := false
				for j := 0; j < 2; j++ {
					v := z.At(i, j)
					if v < 0.1 || v > 0.9 {
						onBoundary = true
					}
				}
				assert.True(t, onBoundary, "archetype %d = (%g, %g) sits in the interior",
					i, z.At(i, 0), z.At(i, 1))
			}
		})
	}
}

func TestFitSimplexConstraints(t *testing.T) {
	for _, method := range allMethods() {
		t.Run(string(method), func(t *testing.T) {
			cfg := archetypes.DefaultConfig(2)
			cfg.Method = method
			cfg.Seed = 3
			cfg.MaxIter = 25
			model := fitSquare(t, cfg)

			const eps = 1e-2
			checkSimplexRows(t, model.A(), eps)
			checkSimplexRows(t, model.B(), eps)
		})
	}
}

func checkSimplexRows(t *testing.T, m *mat.Dense, eps float64) {
	t.Helper()
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		var sum float64
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			assert.GreaterOrEqual(t, v, -eps, "entry (%d,%d) is negative", i, j)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, eps, "row %d does not sum to one", i)
	}
}

// Row sums of the softmax-reparameterized matrices are an identity, not
// an approximation, whatever the optimizer hyperparameters.
func TestGradientRowSumsExact(t *testing.T) {
	for _, opt := range []optim.Optimizer{
		optim.SGD{LR: 10},
		optim.Momentum{LR: 1, Momentum: 0.9},
		optim.Adam{LR: 0.5},
	} {
		cfg := archetypes.DefaultConfig(2)
		cfg.Method = archetypes.MethodGradient
		cfg.Gradient.Optimizer = opt
		cfg.MaxIter = 5
		cfg.Seed = 11
		model := fitSquare(t, cfg)

		for _, m := range []*mat.Dense{model.A(), model.B()} {
			r, c := m.Dims()
			for i := 0; i < r; i++ {
				var sum float64
				for j := 0; j < c; j++ {
					sum += m.At(i, j)
				}
				assert.InDelta(t, 1.0, sum, 1e-12)
			}
		}
	}
}

// Identical configuration and seed must reproduce the loss history
// bit-for-bit.
func TestFitDeterministic(t *testing.T) {
	for _, method := range allMethods() {
		t.Run(string(method), func(t *testing.T) {
			cfg := archetypes.DefaultConfig(2)
			cfg.Method = method
			cfg.Seed = 42
			cfg.MaxIter = 20

			first := fitSquare(t, cfg)
			second := fitSquare(t, cfg)
			require.Equal(t, first.Losses(), second.Losses())
			require.Equal(t, first.Labels(), second.Labels())
		})
	}
}

func TestMaxIterZeroReturnsInitialAssignment(t *testing.T) {
	cfg := archetypes.DefaultConfig(2)
	cfg.MaxIter = 0
	cfg.Seed = 5
	model := fitSquare(t, cfg)

	assert.Len(t, model.Losses(), 1)
	assert.Len(t, model.Labels(), 4)
	n, k, f := model.Dims()
	assert.Equal(t, [3]int{4, 2, 2}, [3]int{n, k, f})
}

func TestLossHistoryBounds(t *testing.T) {
	for _, method := range allMethods() {
		cfg := archetypes.DefaultConfig(2)
		cfg.Method = method
		cfg.MaxIter = 15
		cfg.Seed = 9
		model := fitSquare(t, cfg)

		losses := model.Losses()
		assert.LessOrEqual(t, len(losses), cfg.MaxIter+1)
		for i, l := range losses {
			assert.GreaterOrEqual(t, l, 0.0, "loss %d is negative", i)
		}
	}
}

func TestSaveInit(t *testing.T) {
	cfg := archetypes.DefaultConfig(2)
	cfg.SaveInit = true
	cfg.Seed = 2
	model := fitSquare(t, cfg)
	require.NotNil(t, model.InitialArchetypes())
	r, c := model.InitialArchetypes().Dims()
	assert.Equal(t, [2]int{2, 2}, [2]int{r, c})

	cfg.SaveInit = false
	model = fitSquare(t, cfg)
	assert.Nil(t, model.InitialArchetypes())
}

func TestConfigErrors(t *testing.T) {
	base := archetypes.DefaultConfig(2)

	cases := map[string]func(archetypes.Config) archetypes.Config{
		"zero archetypes":   func(c archetypes.Config) archetypes.Config { c.NArchetypes = 0; return c },
		"negative max iter": func(c archetypes.Config) archetypes.Config { c.MaxIter = -1; return c },
		"negative tol":      func(c archetypes.Config) archetypes.Config { c.Tol = -0.5; return c },
		"unknown method":    func(c archetypes.Config) archetypes.Config { c.Method = "dogleg"; return c },
		"unknown init":      func(c archetypes.Config) archetypes.Config { c.Init = "kmeans++"; return c },
		"bad beta": func(c archetypes.Config) archetypes.Config {
			c.Method = archetypes.MethodPGD
			c.PGD.Beta = 1.5
			return c
		},
		"negative learning rate": func(c archetypes.Config) archetypes.Config {
			c.Method = archetypes.MethodPGD
			c.PGD.LearningRate = -1
			return c
		},
		"negative const": func(c archetypes.Config) archetypes.Config {
			c.NNLS.Const = -2
			return c
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := archetypes.New(mutate(base))
			assert.Error(t, err)
		})
	}
}

func TestFitInputErrors(t *testing.T) {
	aa, err := archetypes.New(archetypes.DefaultConfig(5))
	require.NoError(t, err)
	_, err = aa.Fit(squareData())
	assert.Error(t, err, "more archetypes than samples")

	aa, err = archetypes.New(archetypes.DefaultConfig(2))
	require.NoError(t, err)
	bad := squareData()
	bad.Set(1, 1, math.NaN())
	_, err = aa.Fit(bad)
	assert.Error(t, err, "non-finite input")
}

func TestTransform(t *testing.T) {
	cfg := archetypes.DefaultConfig(4)
	cfg.Seed = 1
	model := fitSquare(t, cfg)

	// The center of the square should be an even mix of the corners.
	center := mat.NewDense(1, 2, []float64{0.5, 0.5})
	w, err := model.Transform(center)
	require.NoError(t, err)

	var sum float64
	for j := 0; j < 4; j++ {
		v := w.At(0, j)
		assert.GreaterOrEqual(t, v, -1e-9)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-2)

	// Reconstruction through the archetypes recovers the point.
	var recon mat.Dense
	recon.Mul(w, model.Archetypes())
	assert.InDelta(t, 0.5, recon.At(0, 0), 1e-2)
	assert.InDelta(t, 0.5, recon.At(0, 1), 1e-2)

	_, err = model.Transform(mat.NewDense(1, 3, nil))
	assert.Error(t, err, "feature mismatch")
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := archetypes.DefaultConfig(2)
	cfg.Seed = 8
	model := fitSquare(t, cfg)

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, model.Save(path))

	loaded, err := archetypes.LoadModel(path)
	require.NoError(t, err)

	assert.Equal(t, model.Labels(), loaded.Labels())
	assert.Equal(t, model.Losses(), loaded.Losses())
	assert.True(t, mat.EqualApprox(model.Archetypes(), loaded.Archetypes(), 1e-15))
	assert.True(t, mat.EqualApprox(model.A(), loaded.A(), 1e-15))
	assert.True(t, mat.EqualApprox(model.B(), loaded.B(), 1e-15))

	// A loaded model still projects new samples.
	w, err := loaded.Transform(squareData())
	require.NoError(t, err)
	r, c := w.Dims()
	assert.Equal(t, [2]int{4, 2}, [2]int{r, c})
}
