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

// Package got implements the Graph-of-Thoughts reasoning pattern as a
// pkg/graph over state.GotState: a PlanGraph node asks the model to
// decompose the request into a task DAG, and an ExecuteGraph node runs
// that DAG to completion, executing every round's ready (all
// dependencies satisfied) nodes concurrently up to a configured limit.
package got

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// gotPlanSystemPrompt instructs the model to decompose the request into a
// task DAG in the TaskGraph JSON shape.
const gotPlanSystemPrompt = `Break the user's request into a small directed graph of sub-tasks. Respond
with a JSON object of exactly this shape:
{"nodes": [{"id": "<short_id>", "description": "<what this step does>"}, ...],
 "edges": [["<from_id>", "<to_id>"], ...]}
An edge ["a", "b"] means task "a" must finish before task "b" starts. Independent tasks need no
edge between them. Return only the JSON object, no surrounding prose.`

// PlanGraphNode asks the model to decompose the request into a task DAG
// and initializes every node's execution state to Pending.
type PlanGraphNode struct {
	llm llm.Client
}

var _ graph.Node[state.GotState] = (*PlanGraphNode)(nil)

// NewPlanGraphNode returns a PlanGraphNode driven by client.
func NewPlanGraphNode(client llm.Client) *PlanGraphNode {
	return &PlanGraphNode{llm: client}
}

func (n *PlanGraphNode) ID() string { return "plan_graph" }

func (n *PlanGraphNode) Run(ctx context.Context, rc *graph.RunContext[state.GotState], s state.GotState) (state.GotState, graph.Next, error) {
	messages := []state.Message{
		state.NewSystemMessage(gotPlanSystemPrompt),
		state.NewUserMessage(s.InputMessage),
	}

	resp, err := n.llm.Invoke(ctx, messages)
	if err != nil {
		return s, graph.Next{}, err
	}

	taskGraph := parseTaskGraph(strings.TrimSpace(resp.Content), s.InputMessage)

	nodeStates := make(map[string]state.TaskNodeState, len(taskGraph.Nodes))
	nodeIDs := make([]string, len(taskGraph.Nodes))
	for i, tn := range taskGraph.Nodes {
		nodeStates[tn.ID] = state.NewTaskNodeState()
		nodeIDs[i] = tn.ID
	}

	s.TaskGraph = taskGraph
	s.NodeStates = nodeStates

	if rc.StreamModes.Contains(graph.StreamCustom) {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{
			"node_count": len(taskGraph.Nodes),
			"edge_count": len(taskGraph.Edges),
			"node_ids":   nodeIDs,
		}})
	}

	return s, graph.NextContinue(), nil
}

// rawTaskGraph mirrors the JSON shape asked for in gotPlanSystemPrompt,
// with every field optional so a partial or malformed reply degrades
// gracefully instead of failing parseTaskGraph outright.
type rawTaskGraph struct {
	Nodes []rawTaskNode `json:"nodes"`
	Edges [][2]string   `json:"edges"`
}

type rawTaskNode struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// parseTaskGraph parses the model's reply into a TaskGraph: nodes missing
// an id fall back to "task_1" (matching every such node so a request for
// independent parallel tasks still degrades to something runnable),
// nodes missing a description fall back to the original input message,
// and edges referencing an unknown node id are dropped. When the reply
// isn't a JSON object with at least one node, the whole request becomes
// a single task so the run can still proceed.
func parseTaskGraph(raw string, inputMessage string) state.TaskGraph {
	var parsed rawTaskGraph
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil && len(parsed.Nodes) > 0 {
		nodes := make([]state.TaskNode, 0, len(parsed.Nodes))
		ids := make(map[string]bool, len(parsed.Nodes))
		for _, rn := range parsed.Nodes {
			id := rn.ID
			if id == "" {
				id = "task_1"
			}
			description := rn.Description
			if description == "" {
				description = inputMessage
			}
			nodes = append(nodes, state.TaskNode{ID: id, Description: description})
			ids[id] = true
		}

		edges := make([]state.TaskEdge, 0, len(parsed.Edges))
		for _, e := range parsed.Edges {
			if ids[e[0]] && ids[e[1]] {
				edges = append(edges, state.TaskEdge{From: e[0], To: e[1]})
			}
		}
		return state.TaskGraph{Nodes: nodes, Edges: edges}
	}

	return state.TaskGraph{
		Nodes: []state.TaskNode{{ID: "task_1", Description: inputMessage}},
	}
}
