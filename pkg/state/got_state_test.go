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

import "testing"

func taskNode(id string) TaskNode {
	return TaskNode{ID: id, Description: "desc-" + id}
}

func strPtr(s string) *string { return &s }

func TestGotStateDefaultIsEmpty(t *testing.T) {
	var s GotState
	if s.InputMessage != "" || len(s.TaskGraph.Nodes) != 0 || len(s.TaskGraph.Edges) != 0 || len(s.NodeStates) != 0 {
		t.Fatalf("expected zero-value GotState to be empty, got %+v", s)
	}
}

func TestSummaryResultReturnsEmptyWhenNoDoneNodes(t *testing.T) {
	var s GotState
	if got := s.SummaryResult(); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}

func TestSummaryResultPrefersSinkNodeResult(t *testing.T) {
	s := GotState{
		InputMessage: "q",
		TaskGraph: TaskGraph{
			Nodes: []TaskNode{taskNode("a"), taskNode("b")},
			Edges: []TaskEdge{{From: "a", To: "b"}},
		},
		NodeStates: map[string]TaskNodeState{
			"a": {Status: TaskDone, Result: strPtr("from a")},
			"b": {Status: TaskDone, Result: strPtr("from b")},
		},
	}
	if got := s.SummaryResult(); got != "from b" {
		t.Fatalf("expected sink node result \"from b\", got %q", got)
	}
}

func TestSummaryResultFallsBackToAnyDoneResultWhenNoSinkHasResult(t *testing.T) {
	s := GotState{
		InputMessage: "q",
		TaskGraph: TaskGraph{
			Nodes: []TaskNode{taskNode("a")},
			Edges: []TaskEdge{{From: "a", To: "a"}},
		},
		NodeStates: map[string]TaskNodeState{
			"a": {Status: TaskDone, Result: strPtr("fallback")},
		},
	}
	if got := s.SummaryResult(); got != "fallback" {
		t.Fatalf("expected fallback result, got %q", got)
	}
}

func TestTaskNodeStateDefaultIsPendingWithoutResult(t *testing.T) {
	s := NewTaskNodeState()
	if s.Status != TaskPending || s.Result != nil || s.Error != nil {
		t.Fatalf("expected pending empty state, got %+v", s)
	}
}
