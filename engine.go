// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// runFit is the generic alternating loop every strategy delegates to
// after its one-time pre-computation.
//
// Per iteration the order is strict: A is optimized against the
// previous B, then B against the updated A, then the archetypes and the
// reconstruction error are refreshed. The loop stops as soon as the
// error change drops below the tolerance, or when the iteration budget
// is exhausted. The latter is a normal, non-convergent termination,
// not an error.
func runFit(st strategy, m *Model, x *mat.Dense) error {
	st.initA(m, x)
	if err := st.initB(m, x); err != nil {
		return err
	}

	m.computeArchetypes(x)
	if m.cfg.SaveInit {
		m.initArchetypes = mat.DenseCopyOf(m.z)
	}
	m.losses = append(m.losses, m.rss(x))

	for i := 0; i < m.cfg.MaxIter; i++ {
		if m.cfg.Verbose && i%10 == 0 {
			log.Printf("archetypes: iteration %d/%d: rss = %g", i, m.cfg.MaxIter, m.losses[len(m.losses)-1])
		}

		if err := st.optimizeA(m, x); err != nil {
			return err
		}
		if err := st.optimizeB(m, x); err != nil {
			return err
		}

		m.computeArchetypes(x)
		m.losses = append(m.losses, m.rss(x))

		last := len(m.losses) - 1
		if math.Abs(m.losses[last]-m.losses[last-1]) < m.cfg.Tol {
			break
		}
	}

	m.finalize()
	return nil
}
