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

package compress

import (
	"context"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// Build assembles the compression subgraph: prune -> compact -> END.
func Build(config CompactionConfig, client llm.Client) (*graph.CompiledGraph[state.ReActState], error) {
	g := graph.NewStateGraph[state.ReActState]()

	prune := NewPruneNode(config)
	compact := NewCompactNode(config, client)

	g.AddNode(prune)
	g.AddNode(compact)

	g.AddEdge(graph.START, prune.ID())
	g.AddEdge(prune.ID(), compact.ID())
	g.AddEdge(compact.ID(), graph.END)

	return g.Compile()
}

// GraphNode wraps a compiled compression subgraph so it can be embedded
// as a single node in a parent ReAct graph (observe -> compress ->
// think), the way DUP and ToT embed react.ThinkNode/ActNode/ObserveNode
// as their own core steps.
type GraphNode struct {
	inner *graph.CompiledGraph[state.ReActState]
}

var _ graph.Node[state.ReActState] = (*GraphNode)(nil)

// NewGraphNode wraps inner as a "compress" node.
func NewGraphNode(inner *graph.CompiledGraph[state.ReActState]) *GraphNode {
	return &GraphNode{inner: inner}
}

func (n *GraphNode) ID() string { return "compress" }

func (n *GraphNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	out, err := n.inner.Invoke(ctx, s, rc)
	if err != nil {
		return s, graph.Next{}, err
	}
	return out, graph.NextContinue(), nil
}
