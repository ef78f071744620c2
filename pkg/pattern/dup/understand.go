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

// Package dup implements the Decompose-Understand-Plan reasoning pattern
// as a pkg/graph over state.DupState: an Understand node that extracts
// structured intent from the request, followed by a Plan/Act/Observe loop
// that reuses the ReAct nodes over the embedded core state.
package dup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// understandSystemPrompt instructs the model to return its analysis as
// the UnderstandOutput JSON shape.
const understandSystemPrompt = `You restate the user's request as structured JSON with exactly these fields:
{"intent": "<one sentence restating the goal>", "constraints": ["<constraint>", ...], "relevant_context": "<prior context worth keeping>"}
Return only the JSON object, no surrounding prose.`

// UnderstandNode extracts a structured UnderstandOutput from the most
// recent user message and records a human-readable summary in the
// conversation so later Plan rounds see it as prior context.
type UnderstandNode struct {
	llm llm.Client
}

var _ graph.Node[state.DupState] = (*UnderstandNode)(nil)

// NewUnderstandNode returns an UnderstandNode driven by client.
func NewUnderstandNode(client llm.Client) *UnderstandNode {
	return &UnderstandNode{llm: client}
}

func (n *UnderstandNode) ID() string { return "understand" }

func (n *UnderstandNode) Run(ctx context.Context, rc *graph.RunContext[state.DupState], s state.DupState) (state.DupState, graph.Next, error) {
	lastUser := s.Core.LastUserMessage()

	messages := []state.Message{
		state.NewSystemMessage(understandSystemPrompt),
		state.NewUserMessage(lastUser),
	}

	resp, err := n.llm.Invoke(ctx, messages)
	if err != nil {
		return s, graph.Next{}, err
	}

	understood := parseUnderstandOutput(strings.TrimSpace(resp.Content))

	summary := fmt.Sprintf("**Understanding**\n- Intent: %s\n- Constraints: %v\n- Context: %s",
		understood.Intent, understood.Constraints, understood.RelevantContext)

	s.Core.Messages = append(append([]state.Message{}, s.Core.Messages...), state.NewAssistantMessage(summary))
	s.Understand = &understood

	if rc.StreamModes.Contains(graph.StreamCustom) {
		rc.Stream.Send(graph.Event{Kind: graph.StreamCustom, Node: n.ID(), Payload: understood})
	}

	return s, graph.NextContinue(), nil
}

// parseUnderstandOutput parses the model's reply as UnderstandOutput
// JSON; when that fails (models routinely wrap JSON in prose or markdown
// fences, or skip it entirely), it falls back to a line-oriented scan for
// the three field names, and if none of those match either, it treats the
// entire raw reply as RelevantContext so no information is dropped.
func parseUnderstandOutput(raw string) state.UnderstandOutput {
	var parsed state.UnderstandOutput
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed
	}

	var out state.UnderstandOutput
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, `"intent"`) || strings.HasPrefix(line, "intent"):
			if v, ok := extractStringValue(line); ok {
				out.Intent = v
			}
		case strings.HasPrefix(line, `"constraints"`) || strings.HasPrefix(line, "constraints"):
			if v, ok := extractArrayValue(line); ok {
				out.Constraints = v
			}
		case strings.HasPrefix(line, `"relevant_context"`) || strings.HasPrefix(line, "relevant_context"):
			if v, ok := extractStringValue(line); ok {
				out.RelevantContext = v
			}
		}
	}

	if out.IsEmpty() {
		out.RelevantContext = strings.TrimSpace(raw)
	}
	return out
}

func extractStringValue(line string) (string, bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", false
	}
	rest := strings.TrimSpace(line[colon+1:])
	rest = strings.TrimPrefix(rest, `"`)
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func extractArrayValue(line string) ([]string, bool) {
	start := strings.IndexByte(line, '[')
	end := strings.LastIndexByte(line, ']')
	if start < 0 || end < 0 || end < start {
		return nil, false
	}
	inner := line[start+1 : end]
	var items []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"`)
		if part != "" {
			items = append(items, part)
		}
	}
	return items, true
}
