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

package state

import "encoding/json"

// TaskStatus is the execution status of a single task node in a GoT DAG.
type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// TaskNode is one node of the task DAG produced by the planning step: an
// id, a human-readable description, and an optional seed tool call.
type TaskNode struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	ToolCalls   []ToolCall `json:"tool_calls,omitempty"`
}

// TaskEdge means From must complete before To can run.
type TaskEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TaskGraph is the DAG definition: nodes and directed precedence edges.
type TaskGraph struct {
	Nodes []TaskNode `json:"nodes"`
	Edges []TaskEdge `json:"edges,omitempty"`
}

// TaskNodeState is the runtime status of one task node: its status, and
// the result or error once it has finished.
type TaskNodeState struct {
	Status TaskStatus `json:"status"`
	Result *string    `json:"result,omitempty"`
	Error  *string    `json:"error,omitempty"`
}

// NewTaskNodeState returns a node state in the Pending status.
func NewTaskNodeState() TaskNodeState {
	return TaskNodeState{Status: TaskPending}
}

// GotState is the core state for the Graph-of-Thoughts pattern: the task
// DAG produced by planning and the per-node execution state produced by
// execution.
type GotState struct {
	InputMessage string                   `json:"input_message"`
	TaskGraph    TaskGraph                `json:"task_graph"`
	NodeStates   map[string]TaskNodeState `json:"node_states,omitempty"`
}

// Clone returns a deep copy via JSON round trip.
func (s GotState) Clone() GotState {
	var out GotState
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return s
	}
	if out.NodeStates == nil {
		out.NodeStates = map[string]TaskNodeState{}
	}
	return out
}

// SummaryResult returns a single combined result string for display once
// the graph has finished: it prefers a sink node (no outgoing edge) whose
// state is Done with a result, falling back to any other done node with a
// result, and finally to the empty string when nothing has completed.
func (s GotState) SummaryResult() string {
	type doneEntry struct {
		id     string
		result string
	}
	var done []doneEntry
	for id, st := range s.NodeStates {
		if st.Status == TaskDone && st.Result != nil {
			done = append(done, doneEntry{id: id, result: *st.Result})
		}
	}
	if len(done) == 0 {
		return ""
	}

	fromIDs := make(map[string]bool, len(s.TaskGraph.Edges))
	for _, e := range s.TaskGraph.Edges {
		fromIDs[e.From] = true
	}
	sinkIDs := make(map[string]bool)
	for _, n := range s.TaskGraph.Nodes {
		if !fromIDs[n.ID] {
			sinkIDs[n.ID] = true
		}
	}

	for _, d := range done {
		if sinkIDs[d.id] {
			return d.result
		}
	}
	return done[len(done)-1].result
}
