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

package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/loomgraph/runtime/pkg/checkpoint"
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// runInput carries one turn's worth of driving information down into a
// patternRunner, independent of which concrete state type backs it.
type runInput struct {
	userMessage  string
	threadID     string
	checkpointNS string
	mgr          *checkpoint.Manager
	streamModes  graph.StreamModeSet
}

// patternRunner abstracts over the four pattern-specific compiled graphs
// so Orchestrator can drive a turn without itself depending on which
// concrete state type (ReActState, DupState, TotState, GotState) backs
// the active run.
type patternRunner interface {
	invoke(ctx context.Context, in runInput) (RunResult, error)
	stream(ctx context.Context, in runInput, onEvent func(graph.Event)) (RunResult, error)
}

// RunResult is the outcome of one Invoke or Stream call: the extracted
// final reply (the last Assistant message, or the GoT summary), the
// turn's and run's cumulative token usage when the pattern tracks it, and
// how many stream events were dropped because the caller could not keep
// up (always zero for Invoke, which discards events entirely).
type RunResult struct {
	Reply         string
	Usage         *state.Usage
	TotalUsage    *state.Usage
	DroppedEvents int64
}

func newRunContext[S any](in runInput) *graph.RunContext[S] {
	rc := graph.NewRunContext[S](graph.RunnableConfig{ThreadID: in.threadID, CheckpointNS: in.checkpointNS})
	if in.mgr != nil && in.mgr.IsEnabled() {
		rc.WithStore(in.mgr.Store())
	}
	if in.streamModes != nil {
		rc.StreamModes = in.streamModes
	}
	return rc
}

// latestCheckpointPayload returns the most recent checkpoint's payload
// for in's thread, or nil if checkpointing is disabled, no thread id was
// given, or nothing has been checkpointed yet.
func latestCheckpointPayload(ctx context.Context, in runInput) ([]byte, error) {
	if in.mgr == nil || !in.mgr.IsEnabled() || in.threadID == "" {
		return nil, nil
	}
	cp, err := in.mgr.LatestCheckpoint(ctx, in.threadID, in.checkpointNS)
	if err != nil {
		return nil, &BuildError{Component: "checkpoint lookup", Err: err}
	}
	if cp == nil {
		return nil, nil
	}
	return cp.Payload, nil
}

func freshMessages(systemPrompt, userMessage string) []state.Message {
	messages := make([]state.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, state.NewSystemMessage(systemPrompt))
	}
	messages = append(messages, state.NewUserMessage(userMessage))
	return messages
}

// --- ReAct ---

type reactRunner struct {
	compiled     *graph.CompiledGraph[state.ReActState]
	systemPrompt string
}

func (r *reactRunner) loadOrInit(ctx context.Context, in runInput) (state.ReActState, error) {
	payload, err := latestCheckpointPayload(ctx, in)
	if err != nil {
		return state.ReActState{}, err
	}
	if payload == nil {
		return state.ReActState{Messages: freshMessages(r.systemPrompt, in.userMessage)}, nil
	}
	var loaded state.ReActState
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return state.ReActState{}, &BuildError{Component: "checkpoint decode", Err: err}
	}
	loaded.Messages = append(loaded.Messages, state.NewUserMessage(in.userMessage))
	return loaded, nil
}

func (r *reactRunner) invoke(ctx context.Context, in runInput) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	out, err := r.compiled.Invoke(ctx, initial, newRunContext[state.ReActState](in))
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.LastAssistantReply(), Usage: out.Usage, TotalUsage: out.TotalUsage}, nil
}

func (r *reactRunner) stream(ctx context.Context, in runInput, onEvent func(graph.Event)) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	sr := r.compiled.Stream(ctx, initial, newRunContext[state.ReActState](in), 0)
	for ev := range sr.Events {
		onEvent(ev)
	}
	out, err := sr.Result()
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.LastAssistantReply(), Usage: out.Usage, TotalUsage: out.TotalUsage, DroppedEvents: sr.Dropped()}, nil
}

// --- DUP ---

type dupRunner struct {
	compiled     *graph.CompiledGraph[state.DupState]
	systemPrompt string
}

func (r *dupRunner) loadOrInit(ctx context.Context, in runInput) (state.DupState, error) {
	payload, err := latestCheckpointPayload(ctx, in)
	if err != nil {
		return state.DupState{}, err
	}
	if payload == nil {
		return state.DupState{Core: state.ReActState{Messages: freshMessages(r.systemPrompt, in.userMessage)}}, nil
	}
	var loaded state.DupState
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return state.DupState{}, &BuildError{Component: "checkpoint decode", Err: err}
	}
	loaded.Core.Messages = append(loaded.Core.Messages, state.NewUserMessage(in.userMessage))
	return loaded, nil
}

func (r *dupRunner) invoke(ctx context.Context, in runInput) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	out, err := r.compiled.Invoke(ctx, initial, newRunContext[state.DupState](in))
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.Core.LastAssistantReply(), Usage: out.Core.Usage, TotalUsage: out.Core.TotalUsage}, nil
}

func (r *dupRunner) stream(ctx context.Context, in runInput, onEvent func(graph.Event)) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	sr := r.compiled.Stream(ctx, initial, newRunContext[state.DupState](in), 0)
	for ev := range sr.Events {
		onEvent(ev)
	}
	out, err := sr.Result()
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.Core.LastAssistantReply(), Usage: out.Core.Usage, TotalUsage: out.Core.TotalUsage, DroppedEvents: sr.Dropped()}, nil
}

// --- ToT ---

type totRunner struct {
	compiled     *graph.CompiledGraph[state.TotState]
	systemPrompt string
}

func (r *totRunner) loadOrInit(ctx context.Context, in runInput) (state.TotState, error) {
	payload, err := latestCheckpointPayload(ctx, in)
	if err != nil {
		return state.TotState{}, err
	}
	if payload == nil {
		return state.TotState{Core: state.ReActState{Messages: freshMessages(r.systemPrompt, in.userMessage)}}, nil
	}
	var loaded state.TotState
	if err := json.Unmarshal(payload, &loaded); err != nil {
		return state.TotState{}, &BuildError{Component: "checkpoint decode", Err: err}
	}
	loaded.Core.Messages = append(loaded.Core.Messages, state.NewUserMessage(in.userMessage))
	return loaded, nil
}

func (r *totRunner) invoke(ctx context.Context, in runInput) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	out, err := r.compiled.Invoke(ctx, initial, newRunContext[state.TotState](in))
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.Core.LastAssistantReply(), Usage: out.Core.Usage, TotalUsage: out.Core.TotalUsage}, nil
}

func (r *totRunner) stream(ctx context.Context, in runInput, onEvent func(graph.Event)) (RunResult, error) {
	initial, err := r.loadOrInit(ctx, in)
	if err != nil {
		return RunResult{}, err
	}
	sr := r.compiled.Stream(ctx, initial, newRunContext[state.TotState](in), 0)
	for ev := range sr.Events {
		onEvent(ev)
	}
	out, err := sr.Result()
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.Core.LastAssistantReply(), Usage: out.Core.Usage, TotalUsage: out.Core.TotalUsage, DroppedEvents: sr.Dropped()}, nil
}

// --- GoT ---

// gotRunner has no conversational shape to resume: a GoT run plans and
// executes one task graph per incoming message, so each invocation
// starts a fresh plan over that message rather than attempting to append
// to a prior run's task-graph state (see DESIGN.md's Open Question
// decision for §4.9 as applied to GoT).
type gotRunner struct {
	compiled *graph.CompiledGraph[state.GotState]
}

func (r *gotRunner) invoke(ctx context.Context, in runInput) (RunResult, error) {
	initial := state.GotState{InputMessage: in.userMessage}
	out, err := r.compiled.Invoke(ctx, initial, newRunContext[state.GotState](in))
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.SummaryResult()}, nil
}

func (r *gotRunner) stream(ctx context.Context, in runInput, onEvent func(graph.Event)) (RunResult, error) {
	initial := state.GotState{InputMessage: in.userMessage}
	sr := r.compiled.Stream(ctx, initial, newRunContext[state.GotState](in), 0)
	for ev := range sr.Events {
		onEvent(ev)
	}
	out, err := sr.Result()
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{Reply: out.SummaryResult(), DroppedEvents: sr.Dropped()}, nil
}
