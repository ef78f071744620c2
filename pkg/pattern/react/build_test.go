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

package react

import (
	"context"
	"testing"

	"github.com/loomgraph/runtime/pkg/compress"
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestBuildLinearStopsAfterOneRoundEvenWithToolCalls(t *testing.T) {
	compiled, err := BuildLinear(mock.WithGetTimeCall(), fakeSource{})
	if err != nil {
		t.Fatalf("BuildLinear() error = %v", err)
	}

	initial := state.ReActState{Messages: []state.Message{state.NewUserMessage("what time is it?")}}
	out, err := compiled.Invoke(context.Background(), initial, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	last := out.Messages[len(out.Messages)-1]
	if len(out.ToolResults) != 0 || last.Content != "Tool get_time returned: 12:00" {
		t.Fatalf("last message = %q, ToolResults = %+v, want the get_time result merged into messages and ToolResults cleared", last.Content, out.ToolResults)
	}
	if out.TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", out.TurnCount)
	}
}

func TestBuildLinearSkipsActWhenThinkRequestsNoTools(t *testing.T) {
	compiled, err := BuildLinear(mock.WithNoToolCalls("no tools needed"), fakeSource{})
	if err != nil {
		t.Fatalf("BuildLinear() error = %v", err)
	}

	out, err := compiled.Invoke(context.Background(), state.ReActState{}, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(out.ToolResults) != 0 {
		t.Fatalf("ToolResults = %+v, want none (think requested no tools)", out.ToolResults)
	}
	if got := out.LastAssistantReply(); got != "no tools needed" {
		t.Errorf("LastAssistantReply() = %q", got)
	}
}

func TestBuildLoopingRunsUntilModelStopsCallingTools(t *testing.T) {
	compiled, err := BuildLooping(mock.FirstToolsThenEnd(), fakeSource{}, nil)
	if err != nil {
		t.Fatalf("BuildLooping() error = %v", err)
	}

	initial := state.ReActState{Messages: []state.Message{state.NewUserMessage("what time is it?")}}
	out, err := compiled.Invoke(context.Background(), initial, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	// Only the first round reaches Observe (it had tool calls); the second
	// Think call returns no tool calls, so the "think" conditional edge
	// routes straight to END without a second Act/Observe round.
	if out.TurnCount != 1 {
		t.Fatalf("TurnCount = %d, want 1 (one completed think->act->observe round)", out.TurnCount)
	}
	if got := out.LastAssistantReply(); got != "The time is as above." {
		t.Errorf("LastAssistantReply() = %q", got)
	}
	if len(out.ToolResults) != 0 {
		t.Errorf("ToolResults = %+v, want cleared after the final observe", out.ToolResults)
	}
}

func TestBuildLoopingWithCompactionRoutesThroughCompressBetweenRounds(t *testing.T) {
	compiled, err := BuildLoopingWithCompaction(mock.FirstToolsThenEnd(), fakeSource{}, compress.DefaultCompactionConfig(), nil)
	if err != nil {
		t.Fatalf("BuildLoopingWithCompaction() error = %v", err)
	}

	initial := state.ReActState{Messages: []state.Message{state.NewUserMessage("what time is it?")}}
	out, err := compiled.Invoke(context.Background(), initial, nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if got := out.LastAssistantReply(); got != "The time is as above." {
		t.Errorf("LastAssistantReply() = %q", got)
	}
}

func TestToolsConditionRoutesOnToolCallPresence(t *testing.T) {
	if got := ToolsCondition(state.ReActState{}); got != graph.END {
		t.Errorf("ToolsCondition(no calls) = %q, want END", got)
	}
	withCall := state.ReActState{ToolCalls: []state.ToolCall{{Name: "get_time"}}}
	if got := ToolsCondition(withCall); got != "act" {
		t.Errorf("ToolsCondition(with call) = %q, want act", got)
	}
}
