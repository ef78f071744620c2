// Copyright 2025 The Loomgraph Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mock is a deterministic embedder for tests: it derives a fixed
// dimension vector from each text's hash rather than calling a real
// embedding model, so semantic-search code paths are exercisable without
// network access.
package mock

import (
	"context"
	"hash/fnv"
)

const defaultDimension = 16

// Embedder is a deterministic, hash-based memory.Embedder.
type Embedder struct {
	dimension int
}

// New returns a mock embedder with the default dimension.
func New() *Embedder { return &Embedder{dimension: defaultDimension} }

// NewWithDimension returns a mock embedder with a custom dimension.
func NewWithDimension(dim int) *Embedder {
	if dim <= 0 {
		dim = defaultDimension
	}
	return &Embedder{dimension: dim}
}

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.embedOne(text)
	}
	return out, nil
}

// embedOne derives a vector by hashing the text with a different seed per
// dimension, then normalizing into [-1, 1]. Two calls with the same text
// always produce the same vector, and unrelated texts hash to
// near-orthogonal vectors, enough to exercise cosine-similarity ranking
// in tests without a real model.
func (e *Embedder) embedOne(text string) []float32 {
	vec := make([]float32, e.dimension)
	for i := 0; i < e.dimension; i++ {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		sum := h.Sum32()
		vec[i] = float32(sum%2000)/1000.0 - 1.0
	}
	return vec
}
