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

package dup

import (
	"context"
	"testing"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/state"
)

func TestParseUnderstandOutputParsesJSON(t *testing.T) {
	raw := `{"intent": "organize files", "constraints": ["path /tmp"], "relevant_context": "Downloads folder"}`
	out := parseUnderstandOutput(raw)
	if out.Intent != "organize files" {
		t.Errorf("Intent = %q", out.Intent)
	}
	if len(out.Constraints) != 1 || out.Constraints[0] != "path /tmp" {
		t.Errorf("Constraints = %+v", out.Constraints)
	}
	if out.RelevantContext != "Downloads folder" {
		t.Errorf("RelevantContext = %q", out.RelevantContext)
	}
}

func TestParseUnderstandOutputFallsBackToRawText(t *testing.T) {
	out := parseUnderstandOutput("some raw text")
	if out.Intent != "" || len(out.Constraints) != 0 {
		t.Errorf("expected empty structured fields, got %+v", out)
	}
	if out.RelevantContext != "some raw text" {
		t.Errorf("RelevantContext = %q, want raw text preserved", out.RelevantContext)
	}
}

func TestParseUnderstandOutputFallsBackToLineScan(t *testing.T) {
	raw := "intent: \"ship the feature\"\nconstraints: [\"deadline friday\", \"no new deps\"]\nrelevant_context: \"prior PR was reverted\""
	out := parseUnderstandOutput(raw)
	if out.Intent != "ship the feature" {
		t.Errorf("Intent = %q", out.Intent)
	}
	if len(out.Constraints) != 2 {
		t.Errorf("Constraints = %+v", out.Constraints)
	}
	if out.RelevantContext != "prior PR was reverted" {
		t.Errorf("RelevantContext = %q", out.RelevantContext)
	}
}

func TestUnderstandNodeAppendsSummaryAndSetsUnderstand(t *testing.T) {
	client := mock.WithNoToolCalls(`{"intent": "find a bug", "constraints": [], "relevant_context": ""}`)
	node := NewUnderstandNode(client)
	rc := graph.NewRunContext[state.DupState](graph.RunnableConfig{})

	s := state.DupState{Core: state.ReActState{Messages: []state.Message{state.NewUserMessage("why is the test flaky?")}}}
	out, next, err := node.Run(context.Background(), rc, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Understand == nil || out.Understand.Intent != "find a bug" {
		t.Fatalf("Understand = %+v, want intent set", out.Understand)
	}
	if len(out.Core.Messages) != 2 || out.Core.Messages[1].Role != state.RoleAssistant {
		t.Fatalf("Core.Messages = %+v, want summary appended", out.Core.Messages)
	}
	if next != graph.NextContinue() {
		t.Errorf("next = %+v, want Continue", next)
	}
}
