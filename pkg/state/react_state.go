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

package state

import "encoding/json"

// ApprovalResult records the outcome of an interrupt raised to ask a human
// to approve a pending tool call before it runs.
type ApprovalResult struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// ReActState is the core state threaded through a ReAct graph run
// (Think -> Act -> Observe loop). DUP and ToT wrap this as their own core
// field rather than re-declaring the conversation bookkeeping.
type ReActState struct {
	Messages   []Message    `json:"messages"`
	ToolCalls  []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`

	// TurnCount counts completed Think->Act->Observe rounds; used against
	// MaxReActTurns to force termination of runaway loops.
	TurnCount int `json:"turn_count"`

	ApprovalResult *ApprovalResult `json:"approval_result,omitempty"`

	// Usage is the token usage of the most recent Think call; TotalUsage is
	// the running sum across the whole run. See MergeUsage.
	Usage      *Usage `json:"usage,omitempty"`
	TotalUsage *Usage `json:"total_usage,omitempty"`

	// MessageCountAfterLastThink records len(Messages) right after the last
	// Think call, so the context-window check can estimate only the delta
	// instead of re-estimating the whole history.
	MessageCountAfterLastThink *int `json:"message_count_after_last_think,omitempty"`
}

// LastAssistantReply returns the content of the most recent Assistant
// message, or "" if none exists.
func (s ReActState) LastAssistantReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

// LastUserMessage returns the content of the most recent User message, or
// "" if none exists.
func (s ReActState) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Clone returns a deep copy via a JSON round trip, so state safely
// crosses goroutine and checkpoint-store boundaries without aliasing
// slices.
func (s ReActState) Clone() ReActState {
	var out ReActState
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a plain value struct cannot fail; defend anyway by
		// returning the original rather than a zero value.
		return s
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	return out
}
