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

// Package tools defines the contract agents use to list and invoke
// tools across one or more sources, plus the aggregate registry that
// lets a run compose memory, file, web, shell, and MCP-bridged sources
// behind one name-indexed view.
package tools

import (
	"context"
	"fmt"
)

// ToolSpec describes a tool's name, purpose, and expected JSON input
// shape, as surfaced to an LLM for function-calling.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// CallContent is the text result of a tool invocation.
type CallContent struct {
	Text string
}

// CallContext carries per-call metadata (thread, user, approval
// decisions) a tool may need to scope its side effects.
type CallContext struct {
	ThreadID string
	UserID   string
	Extra    map[string]any
}

// Tool is a single named capability.
type Tool interface {
	Name() string
	Spec() ToolSpec
	Call(ctx context.Context, argumentsJSON string, callCtx *CallContext) (CallContent, error)
}

// ToolSource lists and dispatches to a group of tools, optionally bound
// to a shared call context (e.g. the current thread/user).
type ToolSource interface {
	ListTools(ctx context.Context) ([]ToolSpec, error)
	CallTool(ctx context.Context, name string, argumentsJSON string) (CallContent, error)
	CallToolWithContext(ctx context.Context, name string, argumentsJSON string, callCtx *CallContext) (CallContent, error)
	SetCallContext(callCtx *CallContext)
}

// InvalidInputError reports arguments that failed validation or
// unmarshaling before a tool ran.
type InvalidInputError struct {
	Tool   string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("tools: invalid input for %q: %s", e.Tool, e.Reason)
}

// NotFoundError reports a tool name with no registered source.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tools: no tool named %q", e.Tool)
}

// TransportError wraps an I/O failure (subprocess, HTTP, MCP transport)
// encountered while running a tool.
type TransportError struct {
	Tool string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tools: transport failure running %q: %v", e.Tool, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
