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
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// toolObservationPrefix identifies a folded tool-result message, per
// ToolResult.FormatObservation's wire format ("Tool <name> returned: ...").
const toolObservationPrefix = "Tool "

// prunedObservationPlaceholder replaces a stale tool result's content
// once it is pruned, preserving the fact a tool ran without paying for
// its full output on every subsequent Think call.
const prunedObservationPlaceholder = " returned a result (pruned from context)"

// PruneNode shrinks old, already-consumed tool-result content before
// Compact runs: any folded tool-result message outside the trailing
// KeepRecentMessages window has its content collapsed to a short
// placeholder. System, User, and Assistant messages are never touched,
// and neither are tool results within the kept window, so the model
// always sees the rationale for its most recent actions in full.
type PruneNode struct {
	config CompactionConfig
}

var _ graph.Node[state.ReActState] = (*PruneNode)(nil)

// NewPruneNode returns a PruneNode governed by config.
func NewPruneNode(config CompactionConfig) *PruneNode {
	return &PruneNode{config: config}
}

func (n *PruneNode) ID() string { return "prune" }

func (n *PruneNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	keep := n.config.KeepRecentMessages
	if keep <= 0 {
		keep = DefaultKeepRecentMessages
	}

	cutoff := len(s.Messages) - keep
	if cutoff <= 0 {
		return s, graph.NextContinue(), nil
	}

	messages := append([]state.Message{}, s.Messages...)
	for i := 0; i < cutoff; i++ {
		m := messages[i]
		if m.Role != state.RoleUser || !strings.HasPrefix(m.Content, toolObservationPrefix) {
			continue
		}
		name, ok := toolNameFromObservation(m.Content)
		if !ok {
			continue
		}
		messages[i] = state.NewUserMessage(toolObservationPrefix + name + prunedObservationPlaceholder)
	}
	s.Messages = messages

	return s, graph.NextContinue(), nil
}

// toolNameFromObservation extracts the tool name from a folded
// observation's "Tool <name> returned: ..." content.
func toolNameFromObservation(content string) (string, bool) {
	rest := strings.TrimPrefix(content, toolObservationPrefix)
	idx := strings.Index(rest, " returned:")
	if idx < 0 {
		return "", false
	}
	return rest[:idx], true
}
