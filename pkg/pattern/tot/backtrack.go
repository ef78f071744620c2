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

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// BacktrackNode retries the next untried candidate at the current depth:
// it undoes the last round's assistant message and tool results, applies
// the next candidate in its place, and routes straight back to Act.
type BacktrackNode struct{}

var _ graph.Node[state.TotState] = (*BacktrackNode)(nil)

// NewBacktrackNode returns a BacktrackNode.
func NewBacktrackNode() *BacktrackNode { return &BacktrackNode{} }

func (n *BacktrackNode) ID() string { return "backtrack" }

func (n *BacktrackNode) Run(ctx context.Context, rc *graph.RunContext[state.TotState], s state.TotState) (state.TotState, graph.Next, error) {
	nextIndex := s.Tot.NextUntried()

	s.Tot.TriedIndices = append(append([]int{}, s.Tot.TriedIndices...), nextIndex)
	s.Tot.ChosenIndex = &nextIndex
	s.Tot.SuggestBacktrack = false
	reason := ""
	if s.Tot.PathFailedReason != nil {
		reason = *s.Tot.PathFailedReason
	}
	s.Tot.PathFailedReason = nil

	picked := s.Tot.Candidates[nextIndex]
	s.Core.Messages = popLastRoundMessages(s.Core.Messages)
	s.Core.Messages = append(s.Core.Messages, state.NewAssistantMessage(picked.Thought))
	s.Core.ToolCalls = picked.ToolCalls
	s.Core.ToolResults = nil

	if rc.StreamModes.Contains(graph.StreamCustom) {
		if reason == "" {
			reason = "path failed"
		}
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{"reason": reason, "to_depth": s.Tot.Depth}})
	}

	return s, graph.NextTo("act"), nil
}

// popLastRoundMessages drops the trailing tool-result (user) messages from
// the failed round and the assistant thought that preceded them, so the
// next candidate's thought can be appended in their place.
func popLastRoundMessages(messages []state.Message) []state.Message {
	out := append([]state.Message{}, messages...)
	for len(out) > 0 && out[len(out)-1].Role == state.RoleUser {
		out = out[:len(out)-1]
	}
	if len(out) > 0 && out[len(out)-1].Role == state.RoleAssistant {
		out = out[:len(out)-1]
	}
	return out
}
