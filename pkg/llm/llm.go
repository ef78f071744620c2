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

// Package llm is the contract a Think node invokes: a provider-agnostic
// client that turns a message history plus a bound toolset into an
// assistant reply, optionally streamed chunk by chunk.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// Response is the complete result of one Invoke or InvokeStreaming call.
type Response struct {
	Content   string
	ToolCalls []state.ToolCall
	Usage     *state.Usage
}

// Chunk is one piece of a streamed response: either a content delta or
// a tool-call argument delta, never both.
type Chunk struct {
	Content          string
	ToolCallIndex    int
	ToolCallID       string
	ToolCallName     string
	ToolCallArgDelta string
}

// Client is the LLM invocation contract. Tool specs are bound at
// construction time so the provider is informed of the callable toolset
// up front, rather than per call.
type Client interface {
	Invoke(ctx context.Context, messages []state.Message) (Response, error)
	InvokeStreaming(ctx context.Context, messages []state.Message, chunks chan<- Chunk) (Response, error)
}

// ErrorCategory distinguishes errors a caller should retry from ones it
// should not.
type ErrorCategory int

const (
	// CategoryPermanent indicates the request itself is invalid and
	// retrying unchanged will not help (bad request, auth failure).
	CategoryPermanent ErrorCategory = iota
	// CategoryTransient indicates a retry may succeed (timeout, rate
	// limit, upstream 5xx).
	CategoryTransient
)

// Error wraps a provider failure with a retry category.
type Error struct {
	Category ErrorCategory
	Provider string
	Err      error
}

func (e *Error) Error() string {
	kind := "permanent"
	if e.Category == CategoryTransient {
		kind = "transient"
	}
	return fmt.Sprintf("llm: %s error from %s: %v", kind, e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is an *Error categorized as
// retryable.
func IsTransient(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Category == CategoryTransient
	}
	return false
}

// BindToolSpecs converts tool specs into the provider-neutral shape
// most clients forward as function-calling definitions.
func BindToolSpecs(specs []tools.ToolSpec) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, ToolDefinition{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  s.InputSchema,
		})
	}
	return defs
}

// ToolDefinition is a provider-neutral function-calling definition.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}
