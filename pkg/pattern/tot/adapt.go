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

package tot

import (
	"context"
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/pattern/react"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// minToolResultContentLen is the total tool-result content length below
// which a round is judged too thin to have made progress.
const minToolResultContentLen = 20

// actNode adapts react.ActNode to TotState: it runs the chosen candidate's
// tool calls (already applied to core by ThinkEvaluate or Backtrack)
// against core and writes the result back.
type actNode struct {
	inner *react.ActNode
}

var _ graph.Node[state.TotState] = actNode{}

func newActNode(source tools.ToolSource, approvalNames map[string]bool) actNode {
	return actNode{inner: react.NewActNode(source).WithApprovalSet(approvalNames)}
}

func (n actNode) ID() string { return "act" }

func (n actNode) Run(ctx context.Context, rc *graph.RunContext[state.TotState], s state.TotState) (state.TotState, graph.Next, error) {
	innerRC := liftRunContext(rc)
	core, next, err := n.inner.Run(ctx, innerRC, s.Core)
	if err != nil {
		return s, graph.Next{}, err
	}
	s.Core = core
	return s, next, nil
}

// observeNode adapts react.ObserveNode to TotState: beyond folding tool
// results into core the way ReAct does, it judges whether the chosen
// path looks weak (a tool error, or too little content came back) and,
// when another candidate at this depth hasn't been tried yet, sets
// SuggestBacktrack so the graph's conditional edge routes to Backtrack
// instead of starting a fresh ThinkExpand round.
type observeNode struct {
	inner *react.ObserveNode
}

var _ graph.Node[state.TotState] = observeNode{}

func newObserveNode() observeNode {
	return observeNode{inner: react.NewLoopingObserveNode()}
}

func (n observeNode) ID() string { return "observe" }

func (n observeNode) Run(ctx context.Context, rc *graph.RunContext[state.TotState], s state.TotState) (state.TotState, graph.Next, error) {
	results := s.Core.ToolResults
	canTryAnother := len(s.Tot.Candidates) > 1 && len(s.Tot.TriedIndices) < len(s.Tot.Candidates)
	hasError := false
	totalLen := 0
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Content), "error") || strings.Contains(strings.ToLower(r.Content), "failed") {
			hasError = true
		}
		totalLen += len(r.Content)
	}
	tooShort := totalLen < minToolResultContentLen

	innerRC := liftRunContext(rc)
	core, next, err := n.inner.Run(ctx, innerRC, s.Core)
	if err != nil {
		return s, graph.Next{}, err
	}
	s.Core = core

	if canTryAnother && (hasError || tooShort) {
		s.Tot.SuggestBacktrack = true
		reason := "tool results too short"
		if hasError {
			reason = "tool error or failure"
		}
		s.Tot.PathFailedReason = &reason
	}

	// The inner ObserveNode's own loop-back to "think" only applies to the
	// plain ReAct core loop; here the conditional edge registered on
	// "observe" decides between Backtrack and a fresh ThinkExpand round,
	// so that particular routing is folded into NextContinue and left to
	// the edge. Any other decision (end the run, e.g. MaxReActTurns or no
	// tool calls were made) is an explicit override and passes through.
	mapped := next
	if next == graph.NextTo("think") {
		mapped = graph.NextContinue()
	}

	return s, mapped, nil
}

func liftRunContext(rc *graph.RunContext[state.TotState]) *graph.RunContext[state.ReActState] {
	inner := graph.NewRunContext[state.ReActState](rc.Config)
	inner.Store = rc.Store
	inner.Stream = rc.Stream
	inner.StreamModes = rc.StreamModes
	inner.InterruptHandler = rc.InterruptHandler
	return inner
}
