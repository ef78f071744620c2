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

// Package openai is a thin llm.Client backed by an OpenAI-compatible
// chat completions API, binding tool specs at construction time.
package openai

import (
	"context"
	"fmt"
	"io"
	"strings"

	oai "github.com/sashabaranov/go-openai"

	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// Config configures an openai.Client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Tools       []tools.ToolSpec
}

func (c *Config) setDefaults() {
	if c.Model == "" {
		c.Model = oai.GPT4o
	}
}

// Client is an llm.Client backed by the OpenAI chat completions API.
type Client struct {
	client      *oai.Client
	model       string
	maxTokens   int
	temperature float32
	toolDefs    []oai.Tool
}

var _ llm.Client = (*Client)(nil)

// New builds a Client from cfg, converting bound tool specs into
// OpenAI function-calling definitions up front.
func New(cfg Config) *Client {
	cfg.setDefaults()

	oaiConfig := oai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      oai.NewClientWithConfig(oaiConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		toolDefs:    convertTools(cfg.Tools),
	}
}

func convertTools(specs []tools.ToolSpec) []oai.Tool {
	defs := make([]oai.Tool, 0, len(specs))
	for _, s := range specs {
		defs = append(defs, oai.Tool{
			Type: oai.ToolTypeFunction,
			Function: &oai.FunctionDefinition{
				Name:        s.Name,
				Description: s.Description,
				Parameters:  s.InputSchema,
			},
		})
	}
	return defs
}

func (c *Client) request(messages []state.Message) oai.ChatCompletionRequest {
	req := oai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if len(c.toolDefs) > 0 {
		req.Tools = c.toolDefs
	}
	return req
}

func convertMessages(messages []state.Message) []oai.ChatCompletionMessage {
	out := make([]oai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, oai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}

func (c *Client) Invoke(ctx context.Context, messages []state.Message) (llm.Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages))
	if err != nil {
		return llm.Response{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, &llm.Error{Category: llm.CategoryPermanent, Provider: "openai", Err: fmt.Errorf("empty choices in response")}
	}

	choice := resp.Choices[0]
	return llm.Response{
		Content:   choice.Message.Content,
		ToolCalls: convertToolCalls(choice.Message.ToolCalls),
		Usage: &state.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func convertToolCalls(calls []oai.ToolCall) []state.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]state.ToolCall, 0, len(calls))
	for _, tc := range calls {
		out = append(out, state.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out
}

func (c *Client) InvokeStreaming(ctx context.Context, messages []state.Message, chunks chan<- llm.Chunk) (llm.Response, error) {
	req := c.request(messages)
	req.Stream = true

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return llm.Response{}, classifyError(err)
	}
	defer stream.Close()

	var content strings.Builder
	type partialCall struct {
		id   string
		name string
		args strings.Builder
	}
	partials := make(map[int]*partialCall)
	var usage *state.Usage

	for {
		resp, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			return llm.Response{}, classifyError(err)
		}
		if resp.Usage != nil {
			usage = &state.Usage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta

		if delta.Content != "" {
			content.WriteString(delta.Content)
			if chunks != nil {
				select {
				case chunks <- llm.Chunk{Content: delta.Content}:
				case <-ctx.Done():
					return llm.Response{}, ctx.Err()
				}
			}
		}

		for _, tc := range delta.ToolCalls {
			index := 0
			if tc.Index != nil {
				index = *tc.Index
			}
			p, ok := partials[index]
			if !ok {
				p = &partialCall{}
				partials[index] = p
			}
			if tc.ID != "" {
				p.id = tc.ID
			}
			if tc.Function.Name != "" {
				p.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				p.args.WriteString(tc.Function.Arguments)
				if chunks != nil {
					select {
					case chunks <- llm.Chunk{ToolCallIndex: index, ToolCallID: p.id, ToolCallName: p.name, ToolCallArgDelta: tc.Function.Arguments}:
					case <-ctx.Done():
						return llm.Response{}, ctx.Err()
					}
				}
			}
		}
	}

	toolCalls := make([]state.ToolCall, 0, len(partials))
	for i := 0; i < len(partials); i++ {
		p := partials[i]
		if p == nil {
			continue
		}
		toolCalls = append(toolCalls, state.ToolCall{
			ID:        p.id,
			Name:      p.name,
			Arguments: p.args.String(),
		})
	}

	return llm.Response{
		Content:   content.String(),
		ToolCalls: toolCalls,
		Usage:     usage,
	}, nil
}

func classifyError(err error) *llm.Error {
	category := llm.CategoryPermanent
	msg := err.Error()
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504") ||
		strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		category = llm.CategoryTransient
	}
	return &llm.Error{Category: category, Provider: "openai", Err: err}
}
