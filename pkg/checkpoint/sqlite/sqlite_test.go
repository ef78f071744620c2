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

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/loomgraph/runtime/pkg/state"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "checkpoints.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutThenGetLatestReturnsNewestCheckpoint(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := state.Checkpoint{
		ThreadID: "t1", CheckpointNS: "", CheckpointID: "c1",
		CreatedAt: time.Now().Add(-time.Minute), NextNode: "act", Payload: []byte(`{"n":1}`),
	}
	newer := state.Checkpoint{
		ThreadID: "t1", CheckpointNS: "", CheckpointID: "c2", ParentID: "c1",
		CreatedAt: time.Now(), NextNode: "observe", Payload: []byte(`{"n":2}`),
		Metadata: map[string]string{"source": "test"},
	}
	if err := s.Put(ctx, older); err != nil {
		t.Fatalf("Put(older) error = %v", err)
	}
	if err := s.Put(ctx, newer); err != nil {
		t.Fatalf("Put(newer) error = %v", err)
	}

	got, err := s.GetLatest(ctx, "t1", "")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetLatest() returned nil, want newer checkpoint")
	}
	if got.CheckpointID != "c2" {
		t.Errorf("CheckpointID = %q, want c2", got.CheckpointID)
	}
	if got.NextNode != "observe" {
		t.Errorf("NextNode = %q, want observe", got.NextNode)
	}
	if got.Metadata["source"] != "test" {
		t.Errorf("Metadata[source] = %q, want test", got.Metadata["source"])
	}
}

func TestGetLatestReturnsNilForUnknownThread(t *testing.T) {
	s := openTestStore(t)
	got, err := s.GetLatest(context.Background(), "missing", "")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetLatest() = %+v, want nil", got)
	}
}

func TestGetTupleFindsCheckpointByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cp := state.Checkpoint{ThreadID: "t1", CheckpointNS: "ns", CheckpointID: "c1", CreatedAt: time.Now(), Payload: []byte("{}")}
	if err := s.Put(ctx, cp); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := s.GetTuple(ctx, "t1", "ns", "c1")
	if err != nil {
		t.Fatalf("GetTuple() error = %v", err)
	}
	if got == nil || got.CheckpointID != "c1" {
		t.Fatalf("GetTuple() = %+v, want checkpoint c1", got)
	}
}

func TestListReturnsCheckpointsOldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now()
	for i, id := range []string{"c1", "c2", "c3"} {
		cp := state.Checkpoint{
			ThreadID: "t1", CheckpointID: id,
			CreatedAt: base.Add(time.Duration(i) * time.Second), Payload: []byte("{}"),
		}
		if err := s.Put(ctx, cp); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}
	list, err := s.List(ctx, "t1", "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	for i, want := range []string{"c1", "c2", "c3"} {
		if list[i].CheckpointID != want {
			t.Errorf("list[%d].CheckpointID = %q, want %q", i, list[i].CheckpointID, want)
		}
	}
}

func TestListThreadsReturnsDistinctSortedThreads(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, put := range []struct{ threadID, id string }{{"b", "c1"}, {"a", "c2"}, {"b", "c3"}} {
		cp := state.Checkpoint{ThreadID: put.threadID, CheckpointID: put.id, CreatedAt: time.Now(), Payload: []byte("{}")}
		if err := s.Put(ctx, cp); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	threads, err := s.ListThreads(ctx)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if len(threads) != 2 || threads[0] != "a" || threads[1] != "b" {
		t.Errorf("ListThreads() = %v, want [a b]", threads)
	}
}

func TestDeleteRemovesAllCheckpointsForThread(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cp := state.Checkpoint{ThreadID: "t1", CheckpointNS: "ns", CheckpointID: "c1", CreatedAt: time.Now(), Payload: []byte("{}")}
	if err := s.Put(ctx, cp); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, "t1", "ns"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := s.GetLatest(ctx, "t1", "ns")
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetLatest() after Delete = %+v, want nil", got)
	}
}
