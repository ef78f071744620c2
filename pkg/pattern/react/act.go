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
	"context"
	"encoding/json"
	"fmt"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// userRejectedToolCall is the fixed ToolResult content a gated tool call
// gets when the human resolving its approval interrupt declines it.
const userRejectedToolCall = "User rejected the tool call"

// ActNode runs every tool call the last Think turn requested against a
// bound tools.ToolSource, and records one ToolResult per call. A tool
// that fails to run (unknown name, bad arguments, transport failure)
// produces an error-flagged ToolResult rather than aborting the run, so
// the model gets a chance to recover on the next Think turn.
//
// When an approval set is configured (WithApprovalSet), a tool call
// whose name is in that set is gated on state.ApprovalResult: with no
// decision yet recorded, Run suspends the whole node with a
// graph.Interrupted instead of calling the tool.
type ActNode struct {
	source        tools.ToolSource
	approvalNames map[string]bool
}

var _ graph.Node[state.ReActState] = (*ActNode)(nil)

// NewActNode returns an ActNode dispatching through source, with no
// tools gated on approval.
func NewActNode(source tools.ToolSource) *ActNode {
	return &ActNode{source: source}
}

// WithApprovalSet gates every tool name in names on a human approval
// decision before ActNode will call it. Returns n for chaining.
func (n *ActNode) WithApprovalSet(names map[string]bool) *ActNode {
	n.approvalNames = names
	return n
}

func (n *ActNode) ID() string { return "act" }

func (n *ActNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	shouldStreamTools := rc.StreamModes.Contains(graph.StreamTools) || rc.StreamModes.Contains(graph.StreamDebug)

	callCtx := &tools.CallContext{ThreadID: rc.Config.ThreadID}

	consumedApproval := false
	results := make([]state.ToolResult, 0, len(s.ToolCalls))
	for _, tc := range s.ToolCalls {
		gated := n.approvalNames[tc.Name]

		if gated && s.ApprovalResult == nil {
			return s, graph.Next{}, &graph.Interrupted{
				Interrupt: graph.NewInterrupt(map[string]any{
					"tool": tc.Name,
					"args": parseArgsForInterrupt(tc.Arguments),
				}),
			}
		}

		var result state.ToolResult
		if gated && !s.ApprovalResult.Approved {
			result = state.ToolResult{CallID: tc.ID, Name: tc.Name, Content: userRejectedToolCall, IsError: true}
		} else {
			content, err := n.source.CallToolWithContext(ctx, tc.Name, tc.Arguments, callCtx)
			result = state.ToolResult{CallID: tc.ID, Name: tc.Name}
			if err != nil {
				result.Content = fmt.Sprintf("Error: %v", err)
				result.IsError = true
			} else {
				result.Content = content.Text
			}
		}
		if gated {
			consumedApproval = true
		}
		results = append(results, result)

		if shouldStreamTools {
			rc.Stream.Send(graph.Event{Kind: graph.StreamTools, Node: n.ID(), Payload: result})
		}
	}

	s.ToolResults = results
	if consumedApproval {
		s.ApprovalResult = nil
	}
	return s, graph.NextContinue(), nil
}

// parseArgsForInterrupt best-effort decodes a tool call's raw JSON
// arguments for the approval_required event payload; malformed JSON
// (should not happen for a well-formed tool call) falls back to the raw
// string rather than dropping the information entirely.
func parseArgsForInterrupt(argumentsJSON string) any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(argumentsJSON), &parsed); err != nil {
		return argumentsJSON
	}
	return parsed
}
