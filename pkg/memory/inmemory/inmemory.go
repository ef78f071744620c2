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

// Package inmemory is the default long-term memory backend: a
// process-local map with substring-match search, used whenever no
// embedder-backed store is configured.
package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/loomgraph/runtime/pkg/memory"
	"github.com/loomgraph/runtime/pkg/state"
)

type entry struct {
	value     map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory memory.Store, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]entry // namespace key -> item key -> entry
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string]map[string]entry)}
}

var _ memory.Store = (*Store)(nil)

func nsKey(ns state.Namespace) string { return strings.Join(ns, "\x1f") }

func (s *Store) Put(_ context.Context, namespace state.Namespace, key string, value map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	nk := nsKey(namespace)
	bucket, ok := s.data[nk]
	if !ok {
		bucket = make(map[string]entry)
		s.data[nk] = bucket
	}
	now := time.Now()
	created := now
	if existing, ok := bucket[key]; ok {
		created = existing.createdAt
	}
	bucket[key] = entry{value: value, createdAt: created, updatedAt: now}
	return nil
}

func (s *Store) Get(_ context.Context, namespace state.Namespace, key string) (*state.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.data[nsKey(namespace)]
	if !ok {
		return nil, nil
	}
	e, ok := bucket[key]
	if !ok {
		return nil, nil
	}
	return &state.Item{
		Namespace: namespace,
		Key:       key,
		Value:     e.value,
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}, nil
}

func (s *Store) Delete(_ context.Context, namespace state.Namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[nsKey(namespace)]
	if !ok {
		return nil
	}
	delete(bucket, key)
	return nil
}

func (s *Store) List(_ context.Context, namespace state.Namespace) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.data[nsKey(namespace)]
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Search matches namespace has no embedder, so it falls back to substring
// matching of the query against the item's serialized JSON value, per the
// contract's lexical-fallback clause.
func (s *Store) Search(_ context.Context, namespace state.Namespace, opts memory.SearchOptions) ([]memory.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket := s.data[nsKey(namespace)]

	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var results []memory.SearchResult
	for _, k := range keys {
		e := bucket[k]
		if !matchesFilter(e.value, opts.Filter) {
			continue
		}
		score := 1.0
		if opts.Query != "" {
			serialized, err := json.Marshal(e.value)
			if err != nil {
				continue
			}
			if !strings.Contains(strings.ToLower(string(serialized)), strings.ToLower(opts.Query)) {
				continue
			}
		}
		results = append(results, memory.SearchResult{
			Item: state.Item{
				Namespace: namespace,
				Key:       k,
				Value:     e.value,
				CreatedAt: e.createdAt,
				UpdatedAt: e.updatedAt,
			},
			Score: score,
		})
	}

	if opts.Offset > 0 && opts.Offset < len(results) {
		results = results[opts.Offset:]
	} else if opts.Offset >= len(results) {
		results = nil
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func matchesFilter(value map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := value[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (s *Store) Batch(ctx context.Context, ops []memory.StoreOp) ([]memory.StoreOpResult, error) {
	results := make([]memory.StoreOpResult, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case memory.OpPut:
			results[i] = memory.StoreOpResult{Err: s.Put(ctx, op.Namespace, op.Key, op.Value)}
		case memory.OpDelete:
			results[i] = memory.StoreOpResult{Err: s.Delete(ctx, op.Namespace, op.Key)}
		}
	}
	return results, nil
}
