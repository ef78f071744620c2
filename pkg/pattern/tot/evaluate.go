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
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// searchResearchKeywords are phrases suggesting the user wants the model
// to look something up; a candidate with no tool call despite one of
// these is probably the weaker choice.
var searchResearchKeywords = []string{
	"search", "find", "look up", "how to", "how do", "research",
	"what is", "what's", "why", "why does", "latest", "recent", "recommend",
}

// ThinkEvaluateNode scores each candidate ThinkExpand produced and applies
// the best-scoring one to the core state, ready for Act.
type ThinkEvaluateNode struct{}

var _ graph.Node[state.TotState] = (*ThinkEvaluateNode)(nil)

// NewThinkEvaluateNode returns a ThinkEvaluateNode.
func NewThinkEvaluateNode() *ThinkEvaluateNode { return &ThinkEvaluateNode{} }

func (n *ThinkEvaluateNode) ID() string { return "think_evaluate" }

func (n *ThinkEvaluateNode) Run(ctx context.Context, rc *graph.RunContext[state.TotState], s state.TotState) (state.TotState, graph.Next, error) {
	if len(s.Tot.Candidates) == 0 {
		s.Tot.ChosenIndex = nil
		return s, graph.NextContinue(), nil
	}

	lastUser, _ := lastUserMessage(s.Core.Messages)
	chosen, scores := chooseBest(s.Tot.Candidates, lastUser)
	for i := range s.Tot.Candidates {
		score := scores[i]
		s.Tot.Candidates[i].Score = &score
	}
	s.Tot.ChosenIndex = &chosen
	s.Tot.TriedIndices = []int{chosen}

	picked := s.Tot.Candidates[chosen]
	s.Core.Messages = append(append([]state.Message{}, s.Core.Messages...), state.NewAssistantMessage(picked.Thought))
	s.Core.ToolCalls = picked.ToolCalls

	if rc.StreamModes.Contains(graph.StreamCustom) {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{"chosen": chosen, "scores": scores}})
	}

	return s, graph.NextContinue(), nil
}

func lastUserMessage(messages []state.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == state.RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}

func hasSearchResearchIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range searchResearchKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func topicOverlapBonus(user, thought string) float64 {
	words := make(map[string]bool)
	for _, w := range strings.Fields(user) {
		if len(w) > 1 {
			words[strings.ToLower(w)] = true
		}
	}
	if len(words) == 0 {
		return 0
	}
	thoughtLower := strings.ToLower(thought)
	hits := 0
	for w := range words {
		if strings.Contains(thoughtLower, w) {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	ratio := float64(hits) / float64(len(words))
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 0.2
}

// scoreCandidate rates one candidate (higher is better): a thought that
// isn't too short or too long scores 0.5 versus 0.2, having tool calls
// scores 0.5 versus 0.3, a search-intent request with no tool call is
// penalized, and overlap between the user's words and the thought is
// rewarded.
func scoreCandidate(c state.TotCandidate, lastUser string, haveLastUser bool) float64 {
	thoughtLen := len(strings.TrimSpace(c.Thought))
	thoughtOK := thoughtLen >= 10 && thoughtLen <= 2000
	thoughtScore := 0.2
	if thoughtOK {
		thoughtScore = 0.5
	}
	toolScore := 0.3
	if len(c.ToolCalls) > 0 {
		toolScore = 0.5
	}
	score := thoughtScore + toolScore
	if haveLastUser {
		if hasSearchResearchIntent(lastUser) && len(c.ToolCalls) == 0 {
			score -= 0.25
		}
		score += topicOverlapBonus(lastUser, c.Thought)
	}
	return score
}

// chooseBest scores every candidate and returns the index of the highest
// scorer; ties favor the later candidate, matching Rust's Iterator::max_by.
func chooseBest(candidates []state.TotCandidate, lastUser string) (int, []float64) {
	haveLastUser := lastUser != ""
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = scoreCandidate(c, lastUser, haveLastUser)
	}
	chosen := 0
	for i, score := range scores {
		if i == 0 || score >= scores[chosen] {
			chosen = i
		}
	}
	return chosen, scores
}
