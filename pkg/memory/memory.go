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

// Package memory is the long-term memory contract tools use to persist
// and recall facts across runs and threads, namespaced by an ordered
// list of strings so different agents/users never collide on a key.
package memory

import (
	"context"
	"fmt"

	"github.com/loomgraph/runtime/pkg/state"
)

// NotFoundError reports a missing key within a namespace.
type NotFoundError struct {
	Namespace state.Namespace
	Key       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory: key %q not found in namespace %v", e.Key, e.Namespace)
}

// SearchOptions configures a Search call.
type SearchOptions struct {
	// Query triggers semantic ranking when the backing store supports
	// embeddings; otherwise it falls back to substring matching on the
	// serialized value.
	Query string

	// Limit caps the number of results. Zero means the backend default.
	Limit int

	// Filter restricts results to items whose Value contains matching
	// key/value pairs.
	Filter map[string]any

	Offset int
}

// SearchResult pairs a stored item with its relevance score.
type SearchResult struct {
	Item  state.Item
	Score float64
}

// StoreOp is one operation in a Batch call.
type StoreOp struct {
	Kind      StoreOpKind
	Namespace state.Namespace
	Key       string
	Value     map[string]any
}

// StoreOpKind discriminates a StoreOp.
type StoreOpKind int

const (
	OpPut StoreOpKind = iota
	OpDelete
)

// StoreOpResult is the outcome of one StoreOp within a Batch call.
type StoreOpResult struct {
	Err error
}

// Store is the long-term memory contract. Implementations may be purely
// lexical (inmemory) or embedding-backed (qdrantstore); callers that need
// semantic ranking degrade gracefully to substring search when the
// backend has no embedder configured.
type Store interface {
	Put(ctx context.Context, namespace state.Namespace, key string, value map[string]any) error
	Get(ctx context.Context, namespace state.Namespace, key string) (*state.Item, error)
	Delete(ctx context.Context, namespace state.Namespace, key string) error
	List(ctx context.Context, namespace state.Namespace) ([]string, error)
	Search(ctx context.Context, namespace state.Namespace, opts SearchOptions) ([]SearchResult, error)
	Batch(ctx context.Context, ops []StoreOp) ([]StoreOpResult, error)
}

// Embedder produces vector embeddings from text for semantic search.
// A Store without one falls back to lexical matching in Search.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}
