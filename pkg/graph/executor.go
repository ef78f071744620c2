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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loomgraph/runtime/pkg/state"
)

// CompiledGraph is an executable, validated graph. It is safe for
// concurrent use across multiple independent runs (it holds no run-scoped
// mutable state itself).
type CompiledGraph[S any] struct {
	nodes         map[string]Node[S]
	edges         map[string]string
	conditionals  map[string]Condition[S]
	entry         string
	retryPolicies map[string]RetryPolicy
}

// ExecutionError wraps a node failure that exhausted its retry policy (or
// had none) with the failing node's ID for diagnosis.
type ExecutionError struct {
	Node string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("graph: node %q failed: %v", e.Node, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Invoke runs the graph to completion (or until it ends/errors/interrupts)
// and returns the final state. It is a convenience wrapper over Stream
// that discards intermediate events.
func (g *CompiledGraph[S]) Invoke(ctx context.Context, initial S, rc *RunContext[S]) (S, error) {
	if rc == nil {
		rc = NewRunContext[S](RunnableConfig{})
	}
	return g.run(ctx, initial, rc)
}

// StreamResult is returned from Stream: Events is closed when the run
// finishes; Result resolves once Events has drained.
type StreamResult[S any] struct {
	Events  <-chan Event
	Result  func() (S, error)
	Dropped func() int64
}

// Stream runs the graph, emitting Event values for every mode enabled in
// rc.StreamModes onto a bounded channel. A slow consumer causes events to
// be dropped (counted, never blocking the run) rather than stalling
// execution.
func (g *CompiledGraph[S]) Stream(ctx context.Context, initial S, rc *RunContext[S], bufferSize int) *StreamResult[S] {
	if rc == nil {
		rc = NewRunContext[S](RunnableConfig{})
	}
	if bufferSize <= 0 {
		bufferSize = 64
	}
	events := make(chan Event, bufferSize)
	var dropped int64
	rc.Stream = NewEventSender(events, &dropped)

	type outcome struct {
		final S
		err   error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		defer close(events)
		final, err := g.run(ctx, initial, rc)
		resultCh <- outcome{final: final, err: err}
	}()

	return &StreamResult[S]{
		Events: events,
		Result: func() (S, error) {
			o := <-resultCh
			return o.final, o.err
		},
		Dropped: func() int64 { return dropped },
	}
}

// run is the core node-transition loop shared by Invoke and Stream.
func (g *CompiledGraph[S]) run(ctx context.Context, initial S, rc *RunContext[S]) (S, error) {
	current := initial
	nodeID := g.entry
	if rc.Previous != nil {
		current = *rc.Previous
	}

	for nodeID != END {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		default:
		}

		node, ok := g.nodes[nodeID]
		if !ok {
			return current, &CompileError{Reason: fmt.Sprintf("no such node %q", nodeID)}
		}

		if rc.StreamModes.Contains(StreamTasks) {
			rc.Stream.Send(Event{Kind: StreamTasks, Node: nodeID, Payload: "start"})
		}

		next, err := g.runNodeWithRetry(ctx, node, rc, &current)
		if err != nil {
			var interrupted *Interrupted
			if errors.As(err, &interrupted) {
				g.checkpoint(ctx, rc, current, nodeID)
				return current, err
			}
			return current, &ExecutionError{Node: nodeID, Err: err}
		}

		if rc.StreamModes.Contains(StreamValues) {
			rc.Stream.Send(Event{Kind: StreamValues, Node: nodeID, Payload: current})
		}
		if rc.StreamModes.Contains(StreamTasks) {
			rc.Stream.Send(Event{Kind: StreamTasks, Node: nodeID, Payload: "end"})
		}

		g.checkpoint(ctx, rc, current, nodeID)

		nodeID = g.nextNode(nodeID, next, current)
	}

	return current, nil
}

// runNodeWithRetry runs a single node, retrying per its configured policy
// (default NoRetry) on error.
func (g *CompiledGraph[S]) runNodeWithRetry(ctx context.Context, node Node[S], rc *RunContext[S], current *S) (Next, error) {
	policy := g.retryPolicies[node.ID()]
	attempt := 0
	for {
		newState, next, err := node.Run(ctx, rc, *current)
		if err == nil {
			*current = newState
			return next, nil
		}
		var interrupted *Interrupted
		if errors.As(err, &interrupted) {
			return Next{}, err
		}
		if !policy.ShouldRetry(attempt) {
			return Next{}, err
		}
		delay := policy.Delay(attempt)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return Next{}, ctx.Err()
			case <-time.After(delay):
			}
		}
		attempt++
	}
}

// nextNode resolves the node to transition to after fromID has run,
// applying (in order) the node's own explicit Next, then a registered
// conditional edge, then the static unconditional edge.
func (g *CompiledGraph[S]) nextNode(fromID string, next Next, current S) string {
	switch next.kind {
	case nextEnd:
		return END
	case nextNode:
		return next.node
	}
	if cond, ok := g.conditionals[fromID]; ok {
		return cond(current)
	}
	if to, ok := g.edges[fromID]; ok {
		return to
	}
	return END
}

// checkpoint persists the state after a node transition when a store is
// configured. Serialization and store errors are silently dropped rather
// than failing the run — checkpointing is a durability aid, not a
// correctness dependency for this run.
func (g *CompiledGraph[S]) checkpoint(ctx context.Context, rc *RunContext[S], current S, nodeID string) {
	if rc.Store == nil || rc.Config.ThreadID == "" {
		return
	}
	payload, err := json.Marshal(current)
	if err != nil {
		return
	}
	cp := state.Checkpoint{
		ThreadID:     rc.Config.ThreadID,
		CheckpointNS: rc.Config.CheckpointNS,
		CheckpointID: uuid.NewString(),
		CreatedAt:    time.Now(),
		NextNode:     nodeID,
		Payload:      payload,
	}
	if err := rc.Store.Put(ctx, cp); err != nil {
		return
	}
	if rc.StreamModes.Contains(StreamCheckpoints) {
		rc.Stream.Send(Event{Kind: StreamCheckpoints, Node: nodeID, Payload: cp.CheckpointID})
	}
}
