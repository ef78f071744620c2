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

// Package state defines the shared state types carried through a compiled
// graph run: messages, tool calls and results, token usage, and the
// per-pattern extensions (ReAct, DUP, ToT, GoT) that wrap the core state.
package state

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation. Content carries the full text for
// System/User/Assistant roles; tool calls and results are tracked
// separately on ReActState rather than inlined into the message itself.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage builds a System-role message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a User-role message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage builds an Assistant-role message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolCall is a single invocation request emitted by the model: a tool
// name and its JSON-encoded arguments, plus an optional provider call ID
// used to correlate the matching ToolResult.
type ToolCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult carries the outcome of running a ToolCall back into the
// conversation. CallID mirrors ToolCall.ID when the provider supports
// correlation; Name falls back to call_id then the literal "tool" when
// formatting into a message (see FormatObservation).
type ToolResult struct {
	CallID  string `json:"call_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// FormatObservation renders a tool result the way the Observe node folds
// it back into the conversation as a User message: "Tool {name} returned: {content}".
func (r ToolResult) FormatObservation() string {
	name := r.Name
	if name == "" {
		name = r.CallID
	}
	if name == "" {
		name = "tool"
	}
	return "Tool " + name + " returned: " + r.Content
}

// Usage tracks token consumption reported by an LLM provider for a single
// invocation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// MergeUsage combines a per-turn usage into a running total. Four cases,
// mirroring the Think node's compute_usage:
//   - both present: sums into a new total
//   - only turn present: turn becomes the new total (first Think of a run)
//   - only total present: carried forward unchanged (no usage for this turn)
//   - neither present: returns (nil, nil)
func MergeUsage(total, turn *Usage) (newTotal, perTurn *Usage) {
	switch {
	case total != nil && turn != nil:
		return &Usage{
			PromptTokens:     total.PromptTokens + turn.PromptTokens,
			CompletionTokens: total.CompletionTokens + turn.CompletionTokens,
			TotalTokens:      total.TotalTokens + turn.TotalTokens,
		}, turn
	case total == nil && turn != nil:
		return turn, turn
	case total != nil && turn == nil:
		return total, nil
	default:
		return nil, nil
	}
}
