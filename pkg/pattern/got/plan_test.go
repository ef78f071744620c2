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
	"context"
	"testing"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestParseTaskGraphParsesValidJSON(t *testing.T) {
	raw := `{"nodes": [{"id": "a", "description": "fetch data"}, {"id": "b", "description": "summarize it"}],
	          "edges": [["a", "b"]]}`
	g := parseTaskGraph(raw, "ignored")
	if len(g.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(g.Nodes))
	}
	if len(g.Edges) != 1 || g.Edges[0].From != "a" || g.Edges[0].To != "b" {
		t.Errorf("Edges = %+v, want [a->b]", g.Edges)
	}
}

func TestParseTaskGraphFiltersInvalidEdges(t *testing.T) {
	raw := `{"nodes": [{"id": "a", "description": "x"}],
	          "edges": [["a", "nonexistent"], ["ghost", "a"]]}`
	g := parseTaskGraph(raw, "ignored")
	if len(g.Edges) != 0 {
		t.Errorf("Edges = %+v, want none (both reference an unknown node)", g.Edges)
	}
}

func TestParseTaskGraphFillsMissingIDAndDescription(t *testing.T) {
	raw := `{"nodes": [{"description": "only a description"}]}`
	g := parseTaskGraph(raw, "the original request")
	if len(g.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(g.Nodes))
	}
	if g.Nodes[0].ID != "task_1" {
		t.Errorf("ID = %q, want task_1", g.Nodes[0].ID)
	}

	raw2 := `{"nodes": [{"id": "a"}]}`
	g2 := parseTaskGraph(raw2, "the original request")
	if g2.Nodes[0].Description != "the original request" {
		t.Errorf("Description = %q, want the original request", g2.Nodes[0].Description)
	}
}

func TestParseTaskGraphFallsBackToSingleNodeOnMalformedReply(t *testing.T) {
	g := parseTaskGraph("not json at all", "do the thing")
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "task_1" || g.Nodes[0].Description != "do the thing" {
		t.Errorf("g = %+v, want single fallback task_1 node", g)
	}
	if len(g.Edges) != 0 {
		t.Errorf("Edges = %+v, want none", g.Edges)
	}
}

func TestParseTaskGraphFallsBackWhenNodesEmpty(t *testing.T) {
	g := parseTaskGraph(`{"nodes": [], "edges": []}`, "do the thing")
	if len(g.Nodes) != 1 || g.Nodes[0].ID != "task_1" {
		t.Errorf("g = %+v, want single fallback task_1 node", g)
	}
}

func TestPlanGraphNodeInitializesNodeStates(t *testing.T) {
	client := mock.WithNoToolCalls(`{"nodes": [{"id": "a", "description": "step one"}, {"id": "b", "description": "step two"}],
	 "edges": [["a", "b"]]}`)
	node := NewPlanGraphNode(client)
	rc := graph.NewRunContext[state.GotState](graph.RunnableConfig{})

	out, next, err := node.Run(context.Background(), rc, state.GotState{InputMessage: "do both steps"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if next != graph.NextContinue() {
		t.Errorf("next = %+v, want Continue", next)
	}
	if len(out.TaskGraph.Nodes) != 2 {
		t.Fatalf("len(TaskGraph.Nodes) = %d, want 2", len(out.TaskGraph.Nodes))
	}
	if len(out.NodeStates) != 2 {
		t.Fatalf("len(NodeStates) = %d, want 2", len(out.NodeStates))
	}
	for id, st := range out.NodeStates {
		if st.Status != state.TaskPending {
			t.Errorf("NodeStates[%q].Status = %q, want pending", id, st.Status)
		}
	}
}
