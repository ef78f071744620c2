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

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestThinkNodeAppendsAssistantMessageAndToolCalls(t *testing.T) {
	node := NewThinkNode(mock.WithGetTimeCall())
	rc := graph.NewRunContext[state.ReActState](graph.RunnableConfig{})

	s := state.ReActState{Messages: []state.Message{state.NewUserMessage("what time is it?")}}
	out, next, err := node.Run(context.Background(), rc, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out.Messages) != 2 || out.Messages[1].Role != state.RoleAssistant {
		t.Fatalf("Messages = %+v, want assistant reply appended", out.Messages)
	}
	if len(out.ToolCalls) != 1 || out.ToolCalls[0].Name != "get_time" {
		t.Fatalf("ToolCalls = %+v, want one get_time call", out.ToolCalls)
	}
	if out.MessageCountAfterLastThink == nil || *out.MessageCountAfterLastThink != 2 {
		t.Fatalf("MessageCountAfterLastThink = %v, want 2", out.MessageCountAfterLastThink)
	}
	if next != graph.NextContinue() {
		t.Errorf("next = %+v, want Continue", next)
	}
}

func TestThinkNodeFallsBackWhenResponseIsEmpty(t *testing.T) {
	node := NewThinkNode(mock.WithNoToolCalls(""))
	rc := graph.NewRunContext[state.ReActState](graph.RunnableConfig{})

	out, _, err := node.Run(context.Background(), rc, state.ReActState{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.LastAssistantReply(); got != fallbackReply {
		t.Errorf("LastAssistantReply() = %q, want fallback", got)
	}
}

func TestThinkNodeMergesUsageIntoTotal(t *testing.T) {
	node := NewThinkNode(mock.WithNoToolCalls("done"))
	rc := graph.NewRunContext[state.ReActState](graph.RunnableConfig{})

	s := state.ReActState{TotalUsage: &state.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	out, _, err := node.Run(context.Background(), rc, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	// mock.Client never sets Usage, so MergeUsage's "only total present" branch
	// applies: total carries forward unchanged and per-turn usage is nil.
	if out.Usage != nil {
		t.Errorf("Usage = %+v, want nil (mock client reports no usage)", out.Usage)
	}
	if out.TotalUsage == nil || out.TotalUsage.TotalTokens != 15 {
		t.Errorf("TotalUsage = %+v, want carried forward", out.TotalUsage)
	}
}

func TestThinkNodeStreamsMessageChunksWhenEnabled(t *testing.T) {
	node := NewThinkNode(mock.WithNoToolCalls("hello").WithStreamByChar())

	events := make(chan graph.Event, 16)
	var dropped int64
	rc := graph.NewRunContext[state.ReActState](graph.RunnableConfig{}).
		WithStream(graph.NewEventSender(events, &dropped), graph.NewStreamModeSet(graph.StreamMessages))

	_, _, err := node.Run(context.Background(), rc, state.ReActState{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	close(events)

	var got []string
	for ev := range events {
		if ev.Kind == graph.StreamMessages {
			got = append(got, ev.Payload.(string))
		}
	}
	if len(got) != 5 {
		t.Fatalf("streamed chunks = %v, want 5 (one per character of %q)", got, "hello")
	}
}
