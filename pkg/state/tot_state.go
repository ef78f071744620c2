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

// TotCandidate is one branch explored at a given depth: a thought, the
// tool calls it proposes, and its evaluation score (nil until scored).
type TotCandidate struct {
	Thought   string     `json:"thought"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Score     *float64   `json:"score,omitempty"`
}

// TotExtension carries the Tree-of-Thoughts bookkeeping layered on top of
// ReActState: candidate set at the current depth, which one was chosen,
// which indices have been tried at this depth, and whether the current
// path should be abandoned in favor of the next untried candidate.
type TotExtension struct {
	Depth            int            `json:"depth"`
	Candidates       []TotCandidate `json:"candidates,omitempty"`
	ChosenIndex      *int           `json:"chosen_index,omitempty"`
	TriedIndices     []int          `json:"tried_indices,omitempty"`
	SuggestBacktrack bool           `json:"suggest_backtrack"`
	PathFailedReason *string        `json:"path_failed_reason,omitempty"`
}

// TotState is the full state threaded through a ToT graph run: the ReAct
// core plus the tree-search extension.
type TotState struct {
	Core ReActState   `json:"core"`
	Tot  TotExtension `json:"tot"`
}

// Clone returns a deep copy via JSON round trip.
func (s TotState) Clone() TotState {
	var out TotState
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	return out
}

// HasUntried reports whether any candidate at the current depth has not
// yet been tried, the precondition for backtracking.
func (e TotExtension) HasUntried() bool {
	tried := make(map[int]bool, len(e.TriedIndices))
	for _, i := range e.TriedIndices {
		tried[i] = true
	}
	for i := range e.Candidates {
		if !tried[i] {
			return true
		}
	}
	return false
}

// NextUntried returns the lowest candidate index not yet in TriedIndices.
// The caller must have already checked HasUntried.
func (e TotExtension) NextUntried() int {
	tried := make(map[int]bool, len(e.TriedIndices))
	for _, i := range e.TriedIndices {
		tried[i] = true
	}
	for i := range e.Candidates {
		if !tried[i] {
			return i
		}
	}
	return 0
}
