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
	"testing"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestPopLastRoundMessagesRemovesAssistantAndTrailingUsers(t *testing.T) {
	messages := []state.Message{
		state.NewUserMessage("u1"),
		state.NewAssistantMessage("a1"),
		state.NewUserMessage("tool result 1"),
		state.NewUserMessage("tool result 2"),
	}
	got := popLastRoundMessages(messages)
	if len(got) != 1 || got[0].Content != "u1" {
		t.Fatalf("got = %+v, want only the leading user message", got)
	}
}

func TestBacktrackNodeSelectsNextCandidateAndResetsCore(t *testing.T) {
	node := NewBacktrackNode()
	rc := graph.NewRunContext[state.TotState](graph.RunnableConfig{})

	reason := "first failed"
	s := state.TotState{
		Core: state.ReActState{
			Messages: []state.Message{
				state.NewUserMessage("question"),
				state.NewAssistantMessage("old plan"),
				state.NewUserMessage("old tool result"),
			},
			ToolCalls:   []state.ToolCall{{Name: "old_tool", Arguments: "{}"}},
			ToolResults: []state.ToolResult{{Name: "old_tool", Content: "err", IsError: true}},
		},
		Tot: state.TotExtension{
			Depth: 2,
			Candidates: []state.TotCandidate{
				{Thought: "first", ToolCalls: []state.ToolCall{{Name: "t1"}}},
				{Thought: "second", ToolCalls: []state.ToolCall{{Name: "t2"}}},
			},
			ChosenIndex:      intPtr(0),
			TriedIndices:     []int{0},
			SuggestBacktrack: true,
			PathFailedReason: &reason,
		},
	}

	out, next, err := node.Run(context.Background(), rc, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if next != graph.NextTo("act") {
		t.Errorf("next = %+v, want NextTo(act)", next)
	}
	if out.Tot.ChosenIndex == nil || *out.Tot.ChosenIndex != 1 {
		t.Fatalf("ChosenIndex = %v, want 1", out.Tot.ChosenIndex)
	}
	if len(out.Tot.TriedIndices) != 2 || out.Tot.TriedIndices[1] != 1 {
		t.Errorf("TriedIndices = %+v, want [0 1]", out.Tot.TriedIndices)
	}
	if out.Tot.SuggestBacktrack {
		t.Error("SuggestBacktrack = true, want false")
	}
	if out.Tot.PathFailedReason != nil {
		t.Error("PathFailedReason not cleared")
	}
	if len(out.Core.ToolResults) != 0 {
		t.Errorf("ToolResults = %+v, want cleared", out.Core.ToolResults)
	}
	if len(out.Core.ToolCalls) != 1 || out.Core.ToolCalls[0].Name != "t2" {
		t.Errorf("ToolCalls = %+v, want second candidate's tool calls", out.Core.ToolCalls)
	}
	if got := out.Core.LastAssistantReply(); got != "second" {
		t.Errorf("LastAssistantReply() = %q, want \"second\"", got)
	}
}

func intPtr(i int) *int { return &i }
