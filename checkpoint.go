// Copyright 2026 The Archetypes Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package archetypes

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// checkpoint is the JSON snapshot of a fitted model. Matrices are
// stored as row-major flat slices alongside their shapes.
type checkpoint struct {
	Samples    int       `json:"samples"`
	Archetypes int       `json:"archetypes"`
	Features   int       `json:"features"`
	A          []float64 `json:"a"`
	B          []float64 `json:"b"`
	Z          []float64 `json:"z"`
	Labels     []int     `json:"labels"`
	Losses     []float64 `json:"losses"`
	Method     Method    `json:"method"`
	Seed       int64     `json:"seed"`
}

// Save writes the fitted model to path as JSON. Only the fitted
// factorization and its loss history are stored; strategy-private state
// never survives a fit and is not part of the snapshot.
func (m *Model) Save(path string) error {
	if m.z == nil {
		return fmt.Errorf("archetypes: cannot save an unfitted model")
	}
	ck := checkpoint{
		Samples:    m.n,
		Archetypes: m.k,
		Features:   m.f,
		A:          flatten(m.a),
		B:          flatten(m.b),
		Z:          flatten(m.z),
		Labels:     m.labels,
		Losses:     m.losses,
		Method:     m.cfg.Method,
		Seed:       m.cfg.Seed,
	}
	data, err := json.MarshalIndent(&ck, "", "  ")
	if err != nil {
		return fmt.Errorf("archetypes: encoding checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("archetypes: writing checkpoint: %w", err)
	}
	return nil
}

// LoadModel reads a model snapshot written by Save. The returned model
// supports the read accessors and Transform, but cannot resume a fit.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("archetypes: reading checkpoint: %w", err)
	}
	var ck checkpoint
	if err := json.Unmarshal(data, &ck); err != nil {
		return nil, fmt.Errorf("archetypes: decoding checkpoint: %w", err)
	}
	if ck.Samples < 1 || ck.Archetypes < 1 || ck.Features < 1 {
		return nil, fmt.Errorf("archetypes: checkpoint has invalid dimensions %d×%d×%d", ck.Samples, ck.Archetypes, ck.Features)
	}
	if len(ck.A) != ck.Samples*ck.Archetypes ||
		len(ck.B) != ck.Archetypes*ck.Samples ||
		len(ck.Z) != ck.Archetypes*ck.Features {
		return nil, fmt.Errorf("archetypes: checkpoint matrix sizes do not match dimensions")
	}

	m := &Model{
		cfg:    Config{NArchetypes: ck.Archetypes, Method: ck.Method, Seed: ck.Seed},
		n:      ck.Samples,
		k:      ck.Archetypes,
		f:      ck.Features,
		a:      mat.NewDense(ck.Samples, ck.Archetypes, ck.A),
		b:      mat.NewDense(ck.Archetypes, ck.Samples, ck.B),
		z:      mat.NewDense(ck.Archetypes, ck.Features, ck.Z),
		labels: ck.Labels,
		losses: ck.Losses,
	}
	return m, nil
}

func flatten(a *mat.Dense) []float64 {
	r, c := a.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, a.RawRowView(i)...)
	}
	return out
}
