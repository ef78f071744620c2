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

// Package tot implements the Tree-of-Thoughts reasoning pattern as a
// pkg/graph over state.TotState: a ThinkExpand node proposes several
// candidate next steps, ThinkEvaluate scores and picks one, Act/Observe
// reuse the ReAct nodes over the embedded core state, and Backtrack
// retries the next-best candidate at the same depth when Observe judges
// the chosen path to be failing.
package tot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// DefaultNumCandidates is how many candidates ThinkExpand asks the model
// for when none is configured explicitly.
const DefaultNumCandidates = 3

// expandSystemPrompt instructs the model to propose several independent
// next steps rather than committing to one, as a JSON array.
const expandSystemPrompt = `Propose %d distinct possible next steps for the conversation below. Each is an
independent candidate; do not narrow down to one. Respond with a JSON array, one object per
candidate, using exactly these fields:
[{"thought": "<reasoning for this candidate>", "tool_calls": [{"name": "<tool>", "arguments": "<json string>"}]}, ...]
Omit "tool_calls" or leave it empty for a candidate that needs no tool. Return only the JSON
array, no surrounding prose.`

// ThinkExpandNode generates a small set of candidate next steps (thought
// plus optional tool calls) instead of a single committed one, starting a
// new depth in the thought tree each time it runs.
type ThinkExpandNode struct {
	llm           llm.Client
	numCandidates int
}

var _ graph.Node[state.TotState] = (*ThinkExpandNode)(nil)

// NewThinkExpandNode returns a ThinkExpandNode asking for DefaultNumCandidates
// candidates per round.
func NewThinkExpandNode(client llm.Client) *ThinkExpandNode {
	return &ThinkExpandNode{llm: client, numCandidates: DefaultNumCandidates}
}

// WithNumCandidates overrides how many candidates are requested per round.
func (n *ThinkExpandNode) WithNumCandidates(count int) *ThinkExpandNode {
	if count > 0 {
		n.numCandidates = count
	}
	return n
}

func (n *ThinkExpandNode) ID() string { return "think_expand" }

func (n *ThinkExpandNode) Run(ctx context.Context, rc *graph.RunContext[state.TotState], s state.TotState) (state.TotState, graph.Next, error) {
	messages := append([]state.Message{state.NewSystemMessage(fmt.Sprintf(expandSystemPrompt, n.numCandidates))}, s.Core.Messages...)

	resp, err := n.llm.Invoke(ctx, messages)
	if err != nil {
		return s, graph.Next{}, err
	}

	candidates := parseCandidates(strings.TrimSpace(resp.Content))

	s.Tot.Depth++
	s.Tot.Candidates = candidates
	s.Tot.ChosenIndex = nil
	s.Tot.TriedIndices = nil
	s.Tot.SuggestBacktrack = false
	s.Tot.PathFailedReason = nil

	if rc.StreamModes.Contains(graph.StreamCustom) {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: candidates})
	}

	return s, graph.NextContinue(), nil
}

// parseCandidates parses the model's reply as a JSON array of candidates.
// When that fails (the model skipped the JSON or wrapped it in prose), the
// whole reply becomes a single tool-free candidate so the round can still
// proceed instead of failing the run.
func parseCandidates(raw string) []state.TotCandidate {
	var parsed []state.TotCandidate
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil && len(parsed) > 0 {
		return parsed
	}
	if raw == "" {
		return nil
	}
	return []state.TotCandidate{{Thought: raw}}
}
