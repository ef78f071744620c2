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
	"github.com/loomgraph/runtime/pkg/compress"
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// ToolsCondition routes "think" to the "act" node when the last Think
// turn requested tool calls, and straight to END otherwise.
func ToolsCondition(s state.ReActState) string {
	if len(s.ToolCalls) == 0 {
		return graph.END
	}
	return "act"
}

// BuildLinear compiles a single-pass ReAct graph: think -> act (only when
// tool calls were requested) -> observe -> END. Observe never loops back;
// use BuildLooping for a multi-round agent. No tool is approval-gated.
func BuildLinear(client llm.Client, source tools.ToolSource) (*graph.CompiledGraph[state.ReActState], error) {
	return assemble(client, source, NewObserveNode(), nil)
}

// BuildLooping compiles a ReAct graph that returns to "think" after every
// round that produced tool calls, up to MaxReActTurns rounds.
// approvalNames gates the named tools on a human approval decision; see
// ActNode.WithApprovalSet.
func BuildLooping(client llm.Client, source tools.ToolSource, approvalNames map[string]bool) (*graph.CompiledGraph[state.ReActState], error) {
	return assemble(client, source, NewLoopingObserveNode(), approvalNames)
}

// BuildLoopingWithCompaction is BuildLooping with a context-compaction
// subgraph (prune -> compact) spliced in between Observe and the next
// Think, so long multi-turn runs keep the conversation within the
// configured context window instead of growing it unbounded.
func BuildLoopingWithCompaction(client llm.Client, source tools.ToolSource, config compress.CompactionConfig, approvalNames map[string]bool) (*graph.CompiledGraph[state.ReActState], error) {
	compressSubgraph, err := compress.Build(config, client)
	if err != nil {
		return nil, err
	}
	compressNode := compress.NewGraphNode(compressSubgraph)

	observe := NewLoopingObserveNode().WithLoopTarget(compressNode.ID())

	g := graph.NewStateGraph[state.ReActState]().
		AddNode(NewThinkNode(client)).
		AddNode(NewActNode(source).WithApprovalSet(approvalNames)).
		AddNode(observe).
		AddNode(compressNode).
		AddEdge(graph.START, "think").
		AddConditionalEdge("think", ToolsCondition).
		AddEdge("act", "observe").
		AddEdge(compressNode.ID(), "think")

	return g.Compile()
}

func assemble(client llm.Client, source tools.ToolSource, observe *ObserveNode, approvalNames map[string]bool) (*graph.CompiledGraph[state.ReActState], error) {
	g := graph.NewStateGraph[state.ReActState]().
		AddNode(NewThinkNode(client)).
		AddNode(NewActNode(source).WithApprovalSet(approvalNames)).
		AddNode(observe).
		AddEdge(graph.START, "think").
		AddConditionalEdge("think", ToolsCondition).
		AddEdge("act", "observe")

	return g.Compile()
}
