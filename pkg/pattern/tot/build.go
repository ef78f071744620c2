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
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/pattern/react"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// toolsCondition routes to "act" when the chosen candidate carries tool
// calls, ending the run otherwise.
func toolsCondition(s state.TotState) string {
	return react.ToolsCondition(s.Core)
}

// observeCondition routes to "backtrack" when the last round looked weak
// and an untried candidate remains at this depth, otherwise starts a
// fresh ThinkExpand round at the next depth.
func observeCondition(s state.TotState) string {
	if s.Tot.SuggestBacktrack && s.Tot.HasUntried() {
		return "backtrack"
	}
	return "think_expand"
}

// Build compiles the ToT graph:
//
//	think_expand -> think_evaluate -> (act if tool calls chosen, else END)
//	act -> observe -> (backtrack if the round looks weak and a candidate is
//	  untried, else a fresh think_expand round)
//	backtrack -> act
//
// approvalNames gates the named tools on a human approval decision; see
// react.ActNode.WithApprovalSet.
func Build(client llm.Client, source tools.ToolSource, approvalNames map[string]bool) (*graph.CompiledGraph[state.TotState], error) {
	g := graph.NewStateGraph[state.TotState]().
		AddNode(NewThinkExpandNode(client)).
		AddNode(NewThinkEvaluateNode()).
		AddNode(newActNode(source, approvalNames)).
		AddNode(newObserveNode()).
		AddNode(NewBacktrackNode()).
		AddEdge(graph.START, "think_expand").
		AddEdge("think_expand", "think_evaluate").
		AddConditionalEdge("think_evaluate", toolsCondition).
		AddEdge("act", "observe").
		AddConditionalEdge("observe", observeCondition).
		AddEdge("backtrack", "act")

	return g.Compile()
}
