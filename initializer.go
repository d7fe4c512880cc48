// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// selectIndices returns k distinct row indices into x used to seed the
// one-hot archetype-to-sample assignment.
func selectIndices(init Init, x *mat.Dense, k int, rng *rand.Rand) ([]int, error) {
	switch init {
	case InitUniform:
		return uniformIndices(x, k, rng), nil
	case InitFurthestSum:
		return furthestSumIndices(x, k, rng), nil
	default:
		return nil, fmt.Errorf("archetypes: unsupported init %q", init)
	}
}

// uniformIndices draws k distinct indices uniformly at random.
func uniformIndices(x *mat.Dense, k int, rng *rand.Rand) []int {
	n, _ := x.Dims()
	return rng.Perm(n)[:k]
}

// furthestSumIndices implements furthest-sum seeding (Mørup & Hansen,
// "Archetypal analysis for machine learning and data mining", 2012):
// starting from one random point, repeatedly add the point maximizing
// the summed distance to the points chosen so far; once k points are
// chosen, the arbitrary initial pick is dropped and re-selected by the
// same rule. The result spreads the seeds toward the convex hull.
func furthestSumIndices(x *mat.Dense, k int, rng *rand.Rand) []int {
	n, _ := x.Dims()
	first := rng.Intn(n)

	chosen := []int{first}
	inSet := make([]bool, n)
	inSet[first] = true

	// sumDist[i] accumulates Σ_{c ∈ chosen} ‖x_i − x_c‖.
	sumDist := make([]float64, n)
	addDistances(x, first, sumDist)

	for len(chosen) < k {
		next := argmaxExcluding(sumDist, inSet)
		chosen = append(chosen, next)
		inSet[next] = true
		addDistances(x, next, sumDist)
	}

	// Re-select the random starting point against the full set.
	if k > 1 {
		inSet[first] = false
		subDistances(x, first, sumDist)
		replacement := argmaxExcluding(sumDist, inSet)
		chosen[0] = replacement
		inSet[replacement] = true
	}
	return chosen
}

func addDistances(x *mat.Dense, j int, sumDist []float64) {
	rowJ := x.RawRowView(j)
	for i := range sumDist {
		sumDist[i] += floats.Distance(x.RawRowView(i), rowJ, 2)
	}
}

func subDistances(x *mat.Dense, j int, sumDist []float64) {
	rowJ := x.RawRowView(j)
	for i := range sumDist {
		sumDist[i] -= floats.Distance(x.RawRowView(i), rowJ, 2)
	}
}

func argmaxExcluding(vals []float64, excluded []bool) int {
	best, bestv := -1, math.Inf(-1)
	for i, v := range vals {
		if !excluded[i] && v > bestv {
			best, bestv = i, v
		}
	}
	return best
}
