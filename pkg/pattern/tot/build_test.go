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
	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/pattern/react"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

type singleToolSource struct{}

func (singleToolSource) ListTools(ctx context.Context) ([]tools.ToolSpec, error) {
	return []tools.ToolSpec{{Name: "get_time"}}, nil
}

func (s singleToolSource) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (singleToolSource) CallToolWithContext(ctx context.Context, name, argumentsJSON string, callCtx *tools.CallContext) (tools.CallContent, error) {
	return tools.CallContent{Text: "the current time is 12:00 noon"}, nil
}

func (singleToolSource) SetCallContext(callCtx *tools.CallContext) {}

func TestBuildEndsAfterEvaluateWhenChosenCandidateHasNoToolCalls(t *testing.T) {
	client := mock.WithNoToolCalls(`[{"thought": "I can answer this directly without any tools"}]`)
	compiled, err := Build(client, singleToolSource{}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	initial := state.TotState{Core: state.ReActState{Messages: []state.Message{state.NewUserMessage("what is 2+2?")}}}
	out, err := compiled.Invoke(context.Background(), initial, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if out.Tot.Depth != 1 {
		t.Errorf("Depth = %d, want 1 (single expand round)", out.Tot.Depth)
	}
	if out.Core.TurnCount != 0 {
		t.Errorf("TurnCount = %d, want 0 (Act/Observe never ran)", out.Core.TurnCount)
	}
	if got := out.Core.LastAssistantReply(); got != "I can answer this directly without any tools" {
		t.Errorf("LastAssistantReply() = %q", got)
	}
}

func TestBuildLoopsThroughActObserveUntilMaxReActTurns(t *testing.T) {
	client := mock.WithNoToolCalls(`[{"thought": "let me check the time for this single-candidate round", "tool_calls": [{"name": "get_time", "arguments": "{}"}]}]`)
	compiled, err := Build(client, singleToolSource{}, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	initial := state.TotState{Core: state.ReActState{Messages: []state.Message{state.NewUserMessage("what time is it?")}}}
	out, err := compiled.Invoke(context.Background(), initial, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	// Only one candidate ever exists per round, so Observe never has another
	// candidate to suggest backtracking to; the loop keeps returning to a
	// fresh think_expand round until the core's MaxReActTurns cap ends it.
	if out.Core.TurnCount != react.MaxReActTurns {
		t.Errorf("TurnCount = %d, want %d (the MaxReActTurns cap)", out.Core.TurnCount, react.MaxReActTurns)
	}
	if out.Tot.SuggestBacktrack {
		t.Error("SuggestBacktrack = true, want false with a single candidate throughout")
	}
}

func TestToolsConditionRoutesOnChosenCandidateToolCalls(t *testing.T) {
	withTools := state.TotState{Core: state.ReActState{ToolCalls: []state.ToolCall{{Name: "x"}}}}
	if got := toolsCondition(withTools); got != "act" {
		t.Errorf("toolsCondition() = %q, want act", got)
	}
	without := state.TotState{}
	if got := toolsCondition(without); got != graph.END {
		t.Errorf("toolsCondition() = %q, want END", got)
	}
}

func TestObserveConditionChoosesBacktrackOnlyWhenSuggestedAndUntriedRemain(t *testing.T) {
	s := state.TotState{Tot: state.TotExtension{
		SuggestBacktrack: true,
		Candidates:       []state.TotCandidate{{}, {}},
		TriedIndices:     []int{0},
	}}
	if got := observeCondition(s); got != "backtrack" {
		t.Errorf("observeCondition() = %q, want backtrack", got)
	}

	s.Tot.TriedIndices = []int{0, 1}
	if got := observeCondition(s); got != "think_expand" {
		t.Errorf("observeCondition() = %q, want think_expand once all candidates are tried", got)
	}
}
