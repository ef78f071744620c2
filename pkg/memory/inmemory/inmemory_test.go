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

package inmemory

import (
	"context"
	"testing"

	"github.com/loomgraph/runtime/pkg/memory"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestNamespaceIsolation(t *testing.T) {
	s := New()
	ctx := context.Background()
	nsA := state.Namespace{"user", "alice"}
	nsB := state.Namespace{"user", "bob"}

	if err := s.Put(ctx, nsA, "k", map[string]any{"v": "a"}); err != nil {
		t.Fatalf("Put(nsA) error = %v", err)
	}
	if err := s.Put(ctx, nsB, "k", map[string]any{"v": "b"}); err != nil {
		t.Fatalf("Put(nsB) error = %v", err)
	}

	gotA, err := s.Get(ctx, nsA, "k")
	if err != nil || gotA == nil {
		t.Fatalf("Get(nsA) = %v, %v", gotA, err)
	}
	if gotA.Value["v"] != "a" {
		t.Errorf("nsA value = %v, want a", gotA.Value["v"])
	}

	gotB, err := s.Get(ctx, nsB, "k")
	if err != nil || gotB == nil {
		t.Fatalf("Get(nsB) = %v, %v", gotB, err)
	}
	if gotB.Value["v"] != "b" {
		t.Errorf("nsB value = %v, want b", gotB.Value["v"])
	}
}

func TestGetMissingKeyReturnsNilNil(t *testing.T) {
	s := New()
	got, err := s.Get(context.Background(), state.Namespace{"ns"}, "missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestSearchSubstringFallback(t *testing.T) {
	s := New()
	ctx := context.Background()
	ns := state.Namespace{"notes"}
	_ = s.Put(ctx, ns, "k1", map[string]any{"text": "the quick brown fox"})
	_ = s.Put(ctx, ns, "k2", map[string]any{"text": "lazy dog sleeps"})

	results, err := s.Search(ctx, ns, memory.SearchOptions{Query: "fox"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Item.Key != "k1" {
		t.Fatalf("Search(fox) = %+v, want only k1", results)
	}
}

func TestSearchRespectsLimitAndOffset(t *testing.T) {
	s := New()
	ctx := context.Background()
	ns := state.Namespace{"notes"}
	for _, k := range []string{"a", "b", "c"} {
		_ = s.Put(ctx, ns, k, map[string]any{"text": k})
	}
	results, err := s.Search(ctx, ns, memory.SearchOptions{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Item.Key != "b" {
		t.Fatalf("Search(offset=1,limit=1) = %+v, want only b", results)
	}
}

func TestDeleteThenListOmitsKey(t *testing.T) {
	s := New()
	ctx := context.Background()
	ns := state.Namespace{"notes"}
	_ = s.Put(ctx, ns, "k1", map[string]any{})
	_ = s.Put(ctx, ns, "k2", map[string]any{})

	if err := s.Delete(ctx, ns, "k1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	keys, err := s.List(ctx, ns)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != "k2" {
		t.Errorf("List() = %v, want [k2]", keys)
	}
}

func TestBatchAppliesAllOpsInOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	ns := state.Namespace{"notes"}
	ops := []memory.StoreOp{
		{Kind: memory.OpPut, Namespace: ns, Key: "k1", Value: map[string]any{"v": 1}},
		{Kind: memory.OpPut, Namespace: ns, Key: "k2", Value: map[string]any{"v": 2}},
		{Kind: memory.OpDelete, Namespace: ns, Key: "k1"},
	}
	results, err := s.Batch(ctx, ops)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("Batch() op[%d] error = %v", i, r.Err)
		}
	}
	keys, _ := s.List(ctx, ns)
	if len(keys) != 1 || keys[0] != "k2" {
		t.Errorf("List() after Batch = %v, want [k2]", keys)
	}
}
