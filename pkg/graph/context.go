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

package graph

import (
	"context"

	"github.com/loomgraph/runtime/pkg/state"
)

// RunnableConfig carries the identity and tunables of a single run:
// which thread/checkpoint namespace it belongs to, plus any
// pattern-specific extras (e.g. max turns, compaction settings) that
// nodes read out of Extra by convention.
type RunnableConfig struct {
	ThreadID     string
	CheckpointNS string
	Extra        map[string]any
}

// CheckpointStore is the narrow persistence contract the graph executor
// needs: write a checkpoint after a node runs, and look up the most
// recent one to resume a thread. Concrete backends live in pkg/checkpoint.
type CheckpointStore interface {
	Put(ctx context.Context, cp state.Checkpoint) error
	GetLatest(ctx context.Context, threadID, checkpointNS string) (*state.Checkpoint, error)
}

// RunContext bundles everything a node needs beyond its own state: the
// run's config, the checkpoint store, a way to emit stream events, the
// previous run's final state (when resuming), which stream modes are
// active, and the interrupt handler to consult if the node raises one.
//
// Mirrors the runtime context bundle pattern: Merge folds a partial
// override context into a base one, with Config always replaced by the
// override's Config regardless of whether the base had one.
type RunContext[S any] struct {
	Config           RunnableConfig
	Store            CheckpointStore
	Stream           EventSender
	StreamModes      StreamModeSet
	Previous         *S
	InterruptHandler InterruptHandler
}

// NewRunContext returns a RunContext carrying only a config; all other
// fields are left at their zero value until set via the With* helpers.
func NewRunContext[S any](cfg RunnableConfig) *RunContext[S] {
	return &RunContext[S]{Config: cfg, InterruptHandler: DefaultInterruptHandler{}}
}

func (rc *RunContext[S]) WithStore(store CheckpointStore) *RunContext[S] {
	rc.Store = store
	return rc
}

func (rc *RunContext[S]) WithStream(sender EventSender, modes StreamModeSet) *RunContext[S] {
	rc.Stream = sender
	rc.StreamModes = modes
	return rc
}

func (rc *RunContext[S]) WithPrevious(prev *S) *RunContext[S] {
	rc.Previous = prev
	return rc
}

func (rc *RunContext[S]) WithInterruptHandler(h InterruptHandler) *RunContext[S] {
	rc.InterruptHandler = h
	return rc
}

// Merge returns a new RunContext combining rc with other: every non-zero
// field of other overrides rc's, except Config, which is always taken
// from other even when other's Config is the zero value — matching the
// "config always wins" bundling rule runs use when a subgraph invocation
// supplies its own config but otherwise inherits the parent run.
func (rc *RunContext[S]) Merge(other *RunContext[S]) *RunContext[S] {
	merged := *rc
	merged.Config = other.Config
	if other.Store != nil {
		merged.Store = other.Store
	}
	if other.Stream.ch != nil {
		merged.Stream = other.Stream
	}
	if other.StreamModes != nil {
		merged.StreamModes = other.StreamModes
	}
	if other.Previous != nil {
		merged.Previous = other.Previous
	}
	if other.InterruptHandler != nil {
		merged.InterruptHandler = other.InterruptHandler
	}
	return &merged
}
