// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package archetypes implements archetypal analysis: approximating a
// data matrix X (n samples × f features) as X ≈ A·B·X, where the rows
// of A and B are non-negative and sum to one. The k rows of Z = B·X are
// the archetypes, extreme patterns on the convex hull of the data,
// and row i of A expresses sample i as a convex combination of them.
//
// The factorization is biconvex and is driven to a fixed point by an
// alternating loop: optimize A holding B, optimize B holding the
// updated A, recompute the archetypes and the reconstruction error,
// and stop when the error stalls or the iteration budget runs out.
// Three interchangeable numerical methods perform the per-iteration
// updates:
//
//   - MethodNNLS: two bounded non-negative least-squares solves per
//     iteration, with the simplex constraint enforced approximately
//     through a weighted augmentation row.
//   - MethodPGD: projected gradient descent on closed-form quadratic
//     losses, with per-matrix warm-started step sizes tuned by a
//     backtracking line search.
//   - MethodGradient: reverse-mode automatic differentiation of the
//     reconstruction loss with respect to unconstrained logits; a
//     row-softmax reparameterization keeps the constraint exact and a
//     pluggable optim.Optimizer supplies the update rule.
//
// Example:
//
//	x := mat.NewDense(n, f, data)
//	aa, err := archetypes.New(archetypes.DefaultConfig(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model, err := aa.Fit(x)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	z := model.Archetypes()  // 4×f
//	labels := model.Labels() // hard assignment per sample
package archetypes
