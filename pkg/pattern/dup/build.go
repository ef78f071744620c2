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

package dup

import (
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/pattern/react"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// toolsCondition adapts react.ToolsCondition to DupState by evaluating it
// against the embedded core.
func toolsCondition(s state.DupState) string {
	return react.ToolsCondition(s.Core)
}

// Build compiles the DUP graph: understand -> plan -> act (only when the
// plan round requested tool calls) -> observe -> back to plan while the
// model keeps calling tools, up to react.MaxReActTurns rounds.
//
// Plan, Act, and Observe are the same nodes ReAct uses, lifted to run
// against DupState's embedded core so the reasoning loop itself is not
// duplicated between patterns. approvalNames gates the named tools on a
// human approval decision; see react.ActNode.WithApprovalSet.
func Build(client llm.Client, source tools.ToolSource, approvalNames map[string]bool) (*graph.CompiledGraph[state.DupState], error) {
	g := graph.NewStateGraph[state.DupState]().
		AddNode(NewUnderstandNode(client)).
		AddNode(liftCore(react.NewThinkNode(client))).
		AddNode(liftCore(react.NewActNode(source).WithApprovalSet(approvalNames))).
		AddNode(liftCore(react.NewLoopingObserveNode())).
		AddEdge(graph.START, "understand").
		AddEdge("understand", "think").
		AddConditionalEdge("think", toolsCondition).
		AddEdge("act", "observe")

	return g.Compile()
}
