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
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// executeTaskSystemPrompt frames a single task-graph node for the model:
// it sees only its own description, not the graph or sibling results.
const executeTaskSystemPrompt = `Carry out the following sub-task and report its result directly. Use a
tool if one is available and helpful; otherwise answer from what you know.`

// DefaultMaxConcurrentNodes is how many ready task-graph nodes
// ExecuteGraphNode runs at once when no override is configured.
const DefaultMaxConcurrentNodes = 1

// ExecuteGraphNode runs a GotState's TaskGraph to completion: each round
// it finds every Pending node whose predecessors have all finished
// Done, runs that round's ready nodes (concurrently, up to
// maxConcurrent), and records each outcome before computing the next
// round's ready set. It returns once no node is ready, which happens
// either because every node has finished or because the remaining
// nodes are blocked behind a Failed predecessor.
type ExecuteGraphNode struct {
	llm           llm.Client
	source        tools.ToolSource
	maxConcurrent int
}

var _ graph.Node[state.GotState] = (*ExecuteGraphNode)(nil)

// NewExecuteGraphNode returns an ExecuteGraphNode that runs one task-graph
// node at a time. Call WithMaxConcurrentNodes to raise that limit.
func NewExecuteGraphNode(client llm.Client, source tools.ToolSource) *ExecuteGraphNode {
	return &ExecuteGraphNode{llm: client, source: source, maxConcurrent: DefaultMaxConcurrentNodes}
}

// WithMaxConcurrentNodes caps how many ready nodes run at once within a
// round. Values below 1 are treated as 1.
func (n *ExecuteGraphNode) WithMaxConcurrentNodes(count int) *ExecuteGraphNode {
	if count < 1 {
		count = 1
	}
	n.maxConcurrent = count
	return n
}

func (n *ExecuteGraphNode) ID() string { return "execute_graph" }

func (n *ExecuteGraphNode) Run(ctx context.Context, rc *graph.RunContext[state.GotState], s state.GotState) (state.GotState, graph.Next, error) {
	if s.NodeStates == nil {
		s.NodeStates = make(map[string]state.TaskNodeState, len(s.TaskGraph.Nodes))
	}
	for _, node := range s.TaskGraph.Nodes {
		if _, ok := s.NodeStates[node.ID]; !ok {
			s.NodeStates[node.ID] = state.NewTaskNodeState()
		}
	}

	predecessors := predecessorsByNode(s.TaskGraph)

	for {
		ready := readyNodes(s, predecessors)
		if len(ready) == 0 {
			break
		}

		results := n.runRound(ctx, rc, s, ready)
		for id, res := range results {
			if res.err != nil {
				errMsg := res.err.Error()
				s.NodeStates[id] = state.TaskNodeState{Status: state.TaskFailed, Error: &errMsg}
				if rc.StreamModes.Contains(graph.StreamCustom) {
					rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{
						"event": "got_node_failed", "node_id": id, "error": errMsg,
					}})
				}
				continue
			}
			result := res.result
			s.NodeStates[id] = state.TaskNodeState{Status: state.TaskDone, Result: &result}
			if rc.StreamModes.Contains(graph.StreamCustom) {
				rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{
					"event": "got_node_complete", "node_id": id,
				}})
			}
		}
	}

	return s, graph.NextContinue(), nil
}

// nodeOutcome is one task node's execution result, stored under its id
// in the round's mutex-guarded outcome map.
type nodeOutcome struct {
	result string
	err    error
}

// runRound executes every ready node id, at most maxConcurrent at a
// time, and returns each one's outcome keyed by node id.
func (n *ExecuteGraphNode) runRound(ctx context.Context, rc *graph.RunContext[state.GotState], s state.GotState, ready []string) map[string]nodeOutcome {
	nodesByID := make(map[string]state.TaskNode, len(s.TaskGraph.Nodes))
	for _, node := range s.TaskGraph.Nodes {
		nodesByID[node.ID] = node
	}

	group, groupCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, n.maxConcurrent)

	var mu sync.Mutex
	outcomes := make(map[string]nodeOutcome, len(ready))

	for _, id := range ready {
		id := id
		node := nodesByID[id]

		if rc.StreamModes.Contains(graph.StreamCustom) {
			rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{
				"event": "got_node_start", "node_id": id,
			}})
		}

		group.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := n.runOne(groupCtx, node)

			mu.Lock()
			outcomes[id] = nodeOutcome{result: result, err: err}
			mu.Unlock()
			return nil
		})
	}

	// Errors are captured per node in outcomes, not propagated through
	// the group, so one task's failure never aborts its siblings'.
	_ = group.Wait()
	return outcomes
}

// runOne invokes the model on a single task description, dispatches any
// tool calls it (or the task's own seed tool calls) request, and folds
// the reply and tool output into one result string.
func (n *ExecuteGraphNode) runOne(ctx context.Context, node state.TaskNode) (string, error) {
	messages := []state.Message{
		state.NewSystemMessage(executeTaskSystemPrompt),
		state.NewUserMessage(node.Description),
	}

	resp, err := n.llm.Invoke(ctx, messages)
	if err != nil {
		return "", err
	}

	toolCalls := resp.ToolCalls
	if len(toolCalls) == 0 {
		toolCalls = node.ToolCalls
	}

	var parts []string
	if resp.Content != "" {
		parts = append(parts, resp.Content)
	}
	for _, call := range toolCalls {
		content, err := n.source.CallToolWithContext(ctx, call.Name, call.Arguments, nil)
		if err != nil {
			return "", err
		}
		parts = append(parts, content.Text)
	}

	return strings.Join(parts, "\n"), nil
}

// predecessorsByNode returns, for every node id appearing as an edge
// target, the list of node ids that must finish first.
func predecessorsByNode(g state.TaskGraph) map[string][]string {
	predecessors := make(map[string][]string, len(g.Nodes))
	for _, edge := range g.Edges {
		predecessors[edge.To] = append(predecessors[edge.To], edge.From)
	}
	return predecessors
}

// readyNodes returns, in TaskGraph node order, every node id that is
// still Pending and whose predecessors have all reached Done. A node
// behind a Failed (or not-yet-run) predecessor never becomes ready, so
// a failure anywhere upstream quietly stalls its downstream branch
// rather than failing the whole run.
func readyNodes(s state.GotState, predecessors map[string][]string) []string {
	var ready []string
	for _, node := range s.TaskGraph.Nodes {
		if s.NodeStates[node.ID].Status != state.TaskPending {
			continue
		}
		blocked := false
		for _, predID := range predecessors[node.ID] {
			if s.NodeStates[predID].Status != state.TaskDone {
				blocked = true
				break
			}
		}
		if !blocked {
			ready = append(ready, node.ID)
		}
	}
	return ready
}
