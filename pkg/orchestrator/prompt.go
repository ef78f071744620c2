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

package orchestrator

import (
	"fmt"
	"strings"
)

// baseReactSystemPrompt is used whenever no persona is supplied: a fixed
// base instruction, with run-specific context (working folder, approval
// requirements) appended afterward.
const baseReactSystemPrompt = `You are a careful, tool-using assistant. Think step by step, call a tool ` +
	`whenever you need information or an action you cannot produce from your own knowledge, and give a ` +
	`direct final answer once you have what you need.`

// assembleSystemPrompt builds the run's system prompt: persona (when
// supplied) or the base prompt, followed by the assembled working-folder
// and approval-policy context.
func assembleSystemPrompt(persona, workingFolder string, approvalNames []string) string {
	var b strings.Builder
	if persona != "" {
		b.WriteString(persona)
	} else {
		b.WriteString(baseReactSystemPrompt)
	}

	if extra := assembleWorkdirAndApprovalText(workingFolder, approvalNames); extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}

	return b.String()
}

// assembleWorkdirAndApprovalText renders the run-specific context a
// system prompt needs: the canonicalised working folder file tools are
// scoped to, and which tool names require human approval before they run.
func assembleWorkdirAndApprovalText(workingFolder string, approvalNames []string) string {
	var b strings.Builder
	if workingFolder != "" {
		fmt.Fprintf(&b, "Your working folder is %s; file tools are scoped to it.", workingFolder)
	}
	if len(approvalNames) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "The following tools require human approval before they run: %s.", strings.Join(approvalNames, ", "))
	}
	return b.String()
}
