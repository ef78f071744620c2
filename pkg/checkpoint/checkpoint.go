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

// Package checkpoint defines the checkpoint persistence contract used by
// pkg/graph to durably record a run's state between node transitions, and
// a Manager/RecoveryManager pair used to resume interrupted or crashed
// runs on the next process start.
package checkpoint

import (
	"context"
	"fmt"

	"github.com/loomgraph/runtime/pkg/state"
)

// StoreError wraps a backend-specific failure (sqlite error, I/O error)
// with the operation and the thread it concerns, giving every
// storage-layer failure enough context to diagnose without a stack
// trace.
type StoreError struct {
	Op       string
	ThreadID string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("checkpoint: %s thread=%q: %v", e.Op, e.ThreadID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the persistence contract a checkpoint backend implements. It
// satisfies pkg/graph.CheckpointStore (Put + GetLatest) and adds the
// listing/deletion operations the Manager and RecoveryManager need.
type Store interface {
	// Put persists a new checkpoint. Backends append rather than
	// overwrite — checkpoints for a thread form a history.
	Put(ctx context.Context, cp state.Checkpoint) error

	// GetLatest returns the most recently written checkpoint for the
	// given thread/namespace, or nil if none exists.
	GetLatest(ctx context.Context, threadID, checkpointNS string) (*state.Checkpoint, error)

	// GetTuple returns a specific checkpoint by ID, or nil if not found.
	GetTuple(ctx context.Context, threadID, checkpointNS, checkpointID string) (*state.Checkpoint, error)

	// List returns every checkpoint for a thread/namespace, oldest first.
	List(ctx context.Context, threadID, checkpointNS string) ([]state.Checkpoint, error)

	// ListThreads returns the distinct thread IDs with at least one
	// checkpoint, used by RecoveryManager to find runs to resume.
	ListThreads(ctx context.Context) ([]string, error)

	// Delete removes every checkpoint for a thread/namespace.
	Delete(ctx context.Context, threadID, checkpointNS string) error
}
