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

package got

import (
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// Build assembles the Graph-of-Thoughts graph: plan_graph decomposes the
// request into a task DAG, then execute_graph runs that DAG to
// completion in a single step before the run ends.
func Build(client llm.Client, source tools.ToolSource) (*graph.CompiledGraph[state.GotState], error) {
	return BuildWithConcurrency(client, source, DefaultMaxConcurrentNodes)
}

// BuildWithConcurrency is Build with an explicit cap on how many
// ready task-graph nodes execute_graph runs at once per round.
func BuildWithConcurrency(client llm.Client, source tools.ToolSource, maxConcurrentNodes int) (*graph.CompiledGraph[state.GotState], error) {
	g := graph.NewStateGraph[state.GotState]()

	plan := NewPlanGraphNode(client)
	execute := NewExecuteGraphNode(client, source).WithMaxConcurrentNodes(maxConcurrentNodes)

	g.AddNode(plan)
	g.AddNode(execute)

	g.AddEdge(graph.START, plan.ID())
	g.AddEdge(plan.ID(), execute.ID())
	g.AddEdge(execute.ID(), graph.END)

	return g.Compile()
}
