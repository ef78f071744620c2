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

package mock

import (
	"context"
	"testing"

	"github.com/loomgraph/runtime/pkg/llm"
)

func TestWithGetTimeCallReturnsFixedToolCall(t *testing.T) {
	c := WithGetTimeCall()
	resp, err := c.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "get_time" {
		t.Errorf("ToolCalls = %+v, want one get_time call", resp.ToolCalls)
	}
}

func TestWithNoToolCallsReturnsNoCalls(t *testing.T) {
	c := WithNoToolCalls("done")
	resp, err := c.Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(resp.ToolCalls) != 0 {
		t.Errorf("ToolCalls = %+v, want none", resp.ToolCalls)
	}
	if resp.Content != "done" {
		t.Errorf("Content = %q, want done", resp.Content)
	}
}

func TestFirstToolsThenEndSwitchesAfterFirstCall(t *testing.T) {
	c := FirstToolsThenEnd()
	ctx := context.Background()

	first, err := c.Invoke(ctx, nil)
	if err != nil {
		t.Fatalf("first Invoke() error = %v", err)
	}
	if len(first.ToolCalls) != 1 {
		t.Fatalf("first ToolCalls = %+v, want one call", first.ToolCalls)
	}

	second, err := c.Invoke(ctx, nil)
	if err != nil {
		t.Fatalf("second Invoke() error = %v", err)
	}
	if len(second.ToolCalls) != 0 {
		t.Errorf("second ToolCalls = %+v, want none", second.ToolCalls)
	}
	if second.Content != "The time is as above." {
		t.Errorf("second Content = %q, want fixed follow-up text", second.Content)
	}
}

func TestInvokeStreamingSendsSingleChunkByDefault(t *testing.T) {
	c := WithNoToolCalls("hello")
	chunks := make(chan llm.Chunk, 10)
	_, err := c.InvokeStreaming(context.Background(), nil, chunks)
	if err != nil {
		t.Fatalf("InvokeStreaming() error = %v", err)
	}
	close(chunks)
	var got []llm.Chunk
	for c := range chunks {
		got = append(got, c)
	}
	if len(got) != 1 || got[0].Content != "hello" {
		t.Errorf("chunks = %+v, want one chunk with full content", got)
	}
}

func TestInvokeStreamingSendsCharByCharWhenEnabled(t *testing.T) {
	c := WithNoToolCalls("hi").WithStreamByChar()
	chunks := make(chan llm.Chunk, 10)
	_, err := c.InvokeStreaming(context.Background(), nil, chunks)
	if err != nil {
		t.Fatalf("InvokeStreaming() error = %v", err)
	}
	close(chunks)
	var got []llm.Chunk
	for c := range chunks {
		got = append(got, c)
	}
	if len(got) != 2 || got[0].Content != "h" || got[1].Content != "i" {
		t.Errorf("chunks = %+v, want per-character chunks", got)
	}
}
