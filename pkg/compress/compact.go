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
	"fmt"
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// summaryPrefix marks a message as a previously produced compaction
// summary, so a later compaction run can find it and summarize only the
// messages added since, instead of re-summarizing what's already been
// condensed.
const summaryPrefix = "Previous conversation summary: "

const summarizationPromptTemplate = `Summarize the conversation below into a concise paragraph that preserves the key facts, decisions,
and open threads a reply would need. Do not invent details that aren't present.

Conversation:
%s

Summary:`

// CompactNode summarizes older messages via an LLM once the context
// window is estimated to be close to overflowing, leaving the leading
// system messages and a trailing window of recent messages untouched.
// When config.Auto is false, or the estimated context isn't close to
// overflowing, messages pass through unchanged.
type CompactNode struct {
	config    CompactionConfig
	llm       llm.Client
	estimator *TokenEstimator
}

var _ graph.Node[state.ReActState] = (*CompactNode)(nil)

// NewCompactNode returns a CompactNode governed by config and driven by
// client for both token estimation (via config.Model) and
// summarization.
func NewCompactNode(config CompactionConfig, client llm.Client) *CompactNode {
	return &CompactNode{config: config, llm: client, estimator: NewTokenEstimator(config.Model)}
}

func (n *CompactNode) ID() string { return "compact" }

func (n *CompactNode) Run(ctx context.Context, rc *graph.RunContext[state.ReActState], s state.ReActState) (state.ReActState, graph.Next, error) {
	if !n.config.Auto {
		return s, graph.NextContinue(), nil
	}

	overflowing := IsOverflow(n.estimator, WindowCheck{
		Messages:                   s.Messages,
		Usage:                      s.Usage,
		MessageCountAfterLastThink: s.MessageCountAfterLastThink,
		MaxContextTokens:           n.config.MaxContextTokens,
		ReserveTokens:              n.config.ReserveTokens,
	})
	if !overflowing {
		return s, graph.NextContinue(), nil
	}

	messages, err := n.compact(ctx, s.Messages)
	if err != nil {
		return s, graph.Next{}, err
	}
	s.Messages = messages

	if rc.StreamModes.Contains(graph.StreamCustom) {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: map[string]any{
			"message_count": len(messages),
		}})
	}

	return s, graph.NextContinue(), nil
}

// compact summarizes everything between the leading system messages (and
// any prior summary message) and the trailing KeepRecentMessages window,
// replacing it with one summary message.
func (n *CompactNode) compact(ctx context.Context, messages []state.Message) ([]state.Message, error) {
	keep := n.config.KeepRecentMessages
	if keep <= 0 {
		keep = DefaultKeepRecentMessages
	}

	leadingSystem := 0
	for leadingSystem < len(messages) && messages[leadingSystem].Role == state.RoleSystem {
		leadingSystem++
	}

	start := leadingSystem
	if idx := lastSummaryIndex(messages); idx >= start {
		start = idx + 1
	}

	end := len(messages) - keep
	if end <= start {
		// Nothing old enough to summarize beyond what's already condensed.
		return messages, nil
	}

	toSummarize := messages[start:end]
	summary, err := n.summarize(ctx, toSummarize)
	if err != nil {
		return nil, err
	}

	out := make([]state.Message, 0, start+1+(len(messages)-end))
	out = append(out, messages[:start]...)
	out = append(out, state.NewUserMessage(summaryPrefix+summary))
	out = append(out, messages[end:]...)
	return out, nil
}

// summarize asks the model for a prose summary of messages.
func (n *CompactNode) summarize(ctx context.Context, messages []state.Message) (string, error) {
	var transcript strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&transcript, "[%s]: %s\n\n", m.Role, m.Content)
	}

	prompt := fmt.Sprintf(summarizationPromptTemplate, transcript.String())
	resp, err := n.llm.Invoke(ctx, []state.Message{state.NewUserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

// lastSummaryIndex returns the index of the most recent message carrying
// summaryPrefix, or -1 if none exists.
func lastSummaryIndex(messages []state.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.HasPrefix(messages[i].Content, summaryPrefix) {
			return i
		}
	}
	return -1
}
