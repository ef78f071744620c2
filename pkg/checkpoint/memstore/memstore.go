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

// Package memstore is the default, non-durable checkpoint.Store: a
// process-local map keyed by thread and checkpoint namespace, good enough
// for a single-process run that only needs resumability across
// interrupts, not across restarts.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/loomgraph/runtime/pkg/checkpoint"
	"github.com/loomgraph/runtime/pkg/state"
)

type threadKey struct {
	threadID string
	ns       string
}

// Store is an in-memory checkpoint.Store, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data map[threadKey][]state.Checkpoint
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[threadKey][]state.Checkpoint)}
}

var _ checkpoint.Store = (*Store)(nil)

func (s *Store) Put(_ context.Context, cp state.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := threadKey{threadID: cp.ThreadID, ns: cp.CheckpointNS}
	s.data[key] = append(s.data[key], cp)
	return nil
}

func (s *Store) GetLatest(_ context.Context, threadID, checkpointNS string) (*state.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.data[threadKey{threadID: threadID, ns: checkpointNS}]
	if len(list) == 0 {
		return nil, nil
	}
	cp := list[len(list)-1]
	return &cp, nil
}

func (s *Store) GetTuple(_ context.Context, threadID, checkpointNS, checkpointID string) (*state.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cp := range s.data[threadKey{threadID: threadID, ns: checkpointNS}] {
		if cp.CheckpointID == checkpointID {
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) List(_ context.Context, threadID, checkpointNS string) ([]state.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.data[threadKey{threadID: threadID, ns: checkpointNS}]
	out := make([]state.Checkpoint, len(list))
	copy(out, list)
	return out, nil
}

func (s *Store) ListThreads(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for k := range s.data {
		seen[k.threadID] = struct{}{}
	}
	threads := make([]string, 0, len(seen))
	for id := range seen {
		threads = append(threads, id)
	}
	sort.Strings(threads)
	return threads, nil
}

func (s *Store) Delete(_ context.Context, threadID, checkpointNS string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, threadKey{threadID: threadID, ns: checkpointNS})
	return nil
}
