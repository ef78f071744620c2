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

// UnderstandOutput is the structured result of the Understand step: the
// restated intent, constraints extracted from the request, and any prior
// context judged relevant to answering it.
type UnderstandOutput struct {
	Intent          string   `json:"intent"`
	Constraints     []string `json:"constraints,omitempty"`
	RelevantContext string   `json:"relevant_context,omitempty"`
}

// IsEmpty reports whether none of the three fields carry any content,
// the signal used to fall back to treating the raw model output as
// RelevantContext.
func (u UnderstandOutput) IsEmpty() bool {
	return u.Intent == "" && len(u.Constraints) == 0 && u.RelevantContext == ""
}

// DupState is the core state for the DUP (Decompose-Understand-Plan)
// pattern: a ReAct core plus the most recent Understand output.
type DupState struct {
	Core       ReActState        `json:"core"`
	Understand *UnderstandOutput `json:"understand,omitempty"`
}

// Clone returns a deep copy via JSON round trip.
func (s DupState) Clone() DupState {
	var out DupState
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	return out
}
