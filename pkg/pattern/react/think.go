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

// Package react implements the Think -> Act -> Observe reasoning loop as
// three pkg/graph nodes over state.ReActState, plus the routing that wires
// them into either a single linear pass or a looping ReAct graph.
package react

import (
	"context"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// fallbackReply is substituted when the model returns neither text nor
// tool calls, so the conversation never carries an empty assistant turn.
const fallbackReply = "No text response from the model. Please try again or check the API."

// ThinkNode calls the bound LLM with the conversation so far, appends its
// reply as an Assistant message, and records any tool calls it requested.
type ThinkNode struct {
	llm llm.Client
}

var _ graph.Node[state.ReActState] = (*ThinkNode)(nil)

// NewThinkNode returns a ThinkNode driven by client.
func NewThinkNode(client llm.Client) *ThinkNode {
	return &ThinkNode{llm: client}
}

func (n *ThinkNode) ID() string { return "think" }

func (n *ThinkNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	shouldStreamMessages := rc.StreamModes.Contains(graph.StreamMessages)
	shouldStreamTools := rc.StreamModes.Contains(graph.StreamTools) || rc.StreamModes.Contains(graph.StreamDebug)

	var resp llm.Response
	var err error
	if shouldStreamMessages {
		chunks := make(chan llm.Chunk, 16)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for chunk := range chunks {
				if chunk.Content != "" {
					rc.Stream.Send(graph.Event{Kind: graph.StreamMessages, Node: n.ID(), Payload: chunk.Content})
				}
			}
		}()
		resp, err = n.llm.InvokeStreaming(ctx, s.Messages, chunks)
		close(chunks)
		<-done
	} else {
		resp, err = n.llm.Invoke(ctx, s.Messages)
	}
	if err != nil {
		return s, graph.Next{}, err
	}

	usedFallback := resp.Content == "" && len(resp.ToolCalls) == 0
	content := resp.Content
	if usedFallback {
		content = fallbackReply
		if shouldStreamMessages {
			rc.Stream.Send(graph.Event{Kind: graph.StreamMessages, Node: n.ID(), Payload: content})
		}
	}

	if shouldStreamTools {
		for _, tc := range resp.ToolCalls {
			rc.Stream.Send(graph.Event{Kind: graph.StreamTools, Node: n.ID(), Payload: tc})
		}
	}

	totalUsage, usage := state.MergeUsage(s.TotalUsage, resp.Usage)

	messages := append(append([]state.Message{}, s.Messages...), state.NewAssistantMessage(content))
	messageCount := len(messages)

	s.Messages = messages
	s.ToolCalls = resp.ToolCalls
	s.Usage = usage
	s.TotalUsage = totalUsage
	s.MessageCountAfterLastThink = &messageCount

	if usage != nil {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: *usage})
	}

	return s, graph.NextContinue(), nil
}
