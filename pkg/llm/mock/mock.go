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

// Package mock is a scripted llm.Client for deterministic tests: it
// returns a fixed assistant message and optional fixed tool calls, with
// an optional stateful mode for exercising a multi-round ReAct loop
// (first call emits tool calls, later calls emit none so the graph can
// reach END).
package mock

import (
	"context"
	"sync/atomic"

	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
)

// Client is a scripted llm.Client.
type Client struct {
	content       string
	toolCalls     []state.ToolCall
	stateful      bool
	callCount     atomic.Int64
	secondContent string
	streamByChar  bool
}

var _ llm.Client = (*Client)(nil)

// WithGetTimeCall returns a Client that emits one assistant message and
// one get_time tool call, for exercising the Think → Act → Observe path.
func WithGetTimeCall() *Client {
	return New("I'll check the time.", []state.ToolCall{
		{ID: "call-1", Name: "get_time", Arguments: "{}"},
	})
}

// WithNoToolCalls returns a Client that emits content and no tool
// calls, for exercising the END path directly after Think.
func WithNoToolCalls(content string) *Client {
	return New(content, nil)
}

// New returns a Client with fixed content and tool calls.
func New(content string, toolCalls []state.ToolCall) *Client {
	return &Client{content: content, toolCalls: toolCalls}
}

// FirstToolsThenEnd returns a stateful Client: the first Invoke returns
// a get_time tool call, every subsequent Invoke returns plain text and
// no tool calls, for exercising a full multi-round ReAct loop.
func FirstToolsThenEnd() *Client {
	c := New("I'll check the time.", []state.ToolCall{
		{ID: "call-1", Name: "get_time", Arguments: "{}"},
	})
	c.stateful = true
	c.secondContent = "The time is as above."
	return c
}

// WithStreamByChar enables character-by-character chunk delivery in
// InvokeStreaming, instead of the default single content chunk.
func (c *Client) WithStreamByChar() *Client {
	c.streamByChar = true
	return c
}

func (c *Client) Invoke(ctx context.Context, messages []state.Message) (llm.Response, error) {
	content, toolCalls := c.nextResponse()
	return llm.Response{Content: content, ToolCalls: toolCalls}, nil
}

func (c *Client) InvokeStreaming(ctx context.Context, messages []state.Message, chunks chan<- llm.Chunk) (llm.Response, error) {
	resp, err := c.Invoke(ctx, messages)
	if err != nil {
		return resp, err
	}
	if chunks == nil || resp.Content == "" {
		return resp, nil
	}
	if c.streamByChar {
		for _, r := range resp.Content {
			select {
			case chunks <- llm.Chunk{Content: string(r)}:
			case <-ctx.Done():
				return resp, ctx.Err()
			}
		}
		return resp, nil
	}
	select {
	case chunks <- llm.Chunk{Content: resp.Content}:
	case <-ctx.Done():
		return resp, ctx.Err()
	}
	return resp, nil
}

func (c *Client) nextResponse() (string, []state.ToolCall) {
	if !c.stateful {
		return c.content, c.toolCalls
	}
	n := c.callCount.Add(1) - 1
	if n == 0 {
		return c.content, c.toolCalls
	}
	return c.secondContent, nil
}
