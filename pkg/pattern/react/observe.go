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

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// MaxReActTurns bounds a looping ObserveNode: once this many Think->Act
// rounds have completed, the run is forced to End regardless of whether
// the model still wants to call tools.
const MaxReActTurns = 10

// ObserveNode folds the last round's tool results back into the
// conversation as User messages, then clears the round's tool_calls and
// tool_results so the next Think starts clean.
//
// In linear mode (enableLoop false) it always returns Continue, so a
// single-pass graph (Think -> Act -> Observe -> END) stops here. In
// looping mode it routes back to loopTarget (normally "think", or
// "compress" when a compaction subgraph sits between Observe and the
// next Think) whenever this round had tool calls, and to END otherwise
// or once MaxReActTurns is reached.
type ObserveNode struct {
	enableLoop bool
	loopTarget string
}

var _ graph.Node[state.ReActState] = (*ObserveNode)(nil)

// NewObserveNode returns a linear-chain ObserveNode: one round, then
// Continue to whatever static edge follows it.
func NewObserveNode() *ObserveNode {
	return &ObserveNode{}
}

// NewLoopingObserveNode returns an ObserveNode that loops back to "think"
// until the model stops requesting tools or MaxReActTurns is reached.
func NewLoopingObserveNode() *ObserveNode {
	return &ObserveNode{enableLoop: true, loopTarget: "think"}
}

// WithLoopTarget overrides the node a looping ObserveNode routes back to
// (e.g. "compress" to run context compaction before the next Think).
func (n *ObserveNode) WithLoopTarget(node string) *ObserveNode {
	n.loopTarget = node
	return n
}

func (n *ObserveNode) ID() string { return "observe" }

func (n *ObserveNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	hadToolCalls := len(s.ToolCalls) > 0

	messages := append([]state.Message{}, s.Messages...)
	for _, tr := range s.ToolResults {
		messages = append(messages, state.NewUserMessage(tr.FormatObservation()))
	}

	s.Messages = messages
	s.ToolCalls = nil
	s.ToolResults = nil
	s.TurnCount++

	var next graph.Next
	switch {
	case n.enableLoop && s.TurnCount >= MaxReActTurns:
		next = graph.NextEnd()
	case n.enableLoop && hadToolCalls:
		next = graph.NextTo(n.loopTarget)
	case n.enableLoop && !hadToolCalls:
		next = graph.NextEnd()
	default:
		next = graph.NextContinue()
	}

	return s, next, nil
}
