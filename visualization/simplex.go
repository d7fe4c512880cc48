// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package visualization computes plotting coordinates for simplex
// (barycentric) views of archetypal weights. It produces numbers only;
// rendering is left to whatever plotting front end the caller uses.
package visualization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SimplexVertices returns the k vertices of the regular simplex view,
// evenly spaced on the unit circle around origin. The result is k×2
// with columns (x, y).
func SimplexVertices(k int, origin [2]float64) *mat.Dense {
	v := mat.NewDense(k, 2, nil)
	for i := 0; i < k; i++ {
		theta := 2 * math.Pi * float64(i) / float64(k)
		v.Set(i, 0, math.Cos(theta)+origin[0])
		v.Set(i, 1, math.Sin(theta)+origin[1])
	}
	return v
}

// ProjectSimplex maps simplex weights (n×k, rows summing to one, such
// as a fitted A matrix) to 2D points: each point is the weighted
// average of the k simplex vertices. It returns the n×2 points and the
// k×2 vertices.
func ProjectSimplex(weights *mat.Dense, origin [2]float64) (points, vertices *mat.Dense, err error) {
	n, k := weights.Dims()
	if k < 2 {
		return nil, nil, fmt.Errorf("visualization: need at least 2 archetypes to project, got %d", k)
	}
	vertices = SimplexVertices(k, origin)
	points = mat.NewDense(n, 2, nil)
	points.Mul(weights, vertices)
	return points, vertices, nil
}
