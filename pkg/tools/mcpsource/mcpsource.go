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

// Package mcpsource bridges an MCP (Model Context Protocol) server,
// reached over stdio, into a tools.ToolSource so its tools can join the
// same aggregate as native tools.
package mcpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loomgraph/runtime/pkg/tools"
)

const protocolVersion = "2024-11-05"

// Config configures a stdio-connected MCP tool source.
type Config struct {
	// Command launches the MCP server subprocess.
	Command string
	// Args are passed to Command.
	Args []string
	// Env sets additional environment variables for the subprocess,
	// as "KEY=VALUE" pairs.
	Env []string
	// ClientName identifies this runtime to the MCP server.
	ClientName string
	// ClientVersion identifies this runtime's version to the server.
	ClientVersion string
}

func (c *Config) setDefaults() {
	if c.ClientName == "" {
		c.ClientName = "loomgraph-runtime"
	}
	if c.ClientVersion == "" {
		c.ClientVersion = "1.0.0"
	}
}

// Source is a tools.ToolSource backed by a stdio MCP server connection.
type Source struct {
	mu     sync.Mutex
	client *client.Client
	specs  []tools.ToolSpec
}

// Connect launches the MCP server subprocess, performs the MCP
// handshake, and lists its tools.
func Connect(ctx context.Context, cfg Config) (*Source, error) {
	cfg.setDefaults()

	mcpClient, err := client.NewStdioMCPClient(cfg.Command, cfg.Env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("mcpsource: create client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcpsource: start client: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    cfg.ClientName,
		Version: cfg.ClientVersion,
	}
	initReq.Params.ProtocolVersion = protocolVersion
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("mcpsource: initialize: %w", err)
	}

	listResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		mcpClient.Close()
		return nil, fmt.Errorf("mcpsource: list tools: %w", err)
	}

	specs := make([]tools.ToolSpec, 0, len(listResp.Tools))
	for _, t := range listResp.Tools {
		specs = append(specs, tools.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: convertSchema(t.InputSchema),
		})
	}

	return &Source{client: mcpClient, specs: specs}, nil
}

var _ tools.ToolSource = (*Source)(nil)

// Close shuts down the underlying MCP subprocess.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Close()
}

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	return s.specs, nil
}

func (s *Source) SetCallContext(*tools.CallContext) {}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (s *Source) CallToolWithContext(ctx context.Context, name, argumentsJSON string, _ *tools.CallContext) (tools.CallContent, error) {
	if !s.hasTool(name) {
		return tools.CallContent{}, &tools.NotFoundError{Tool: name}
	}

	var args map[string]any
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return tools.CallContent{}, &tools.InvalidInputError{Tool: name, Reason: err.Error()}
		}
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	s.mu.Lock()
	mcpClient := s.client
	s.mu.Unlock()

	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: name, Err: err}
	}
	return parseResult(name, resp)
}

func (s *Source) hasTool(name string) bool {
	for _, spec := range s.specs {
		if spec.Name == name {
			return true
		}
	}
	return false
}

func parseResult(name string, resp *mcp.CallToolResult) (tools.CallContent, error) {
	var texts []string
	for _, content := range resp.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			texts = append(texts, textContent.Text)
		}
	}
	joined := ""
	for i, t := range texts {
		if i > 0 {
			joined += "\n"
		}
		joined += t
	}
	if resp.IsError {
		if joined == "" {
			joined = "unknown error"
		}
		return tools.CallContent{}, &tools.TransportError{Tool: name, Err: fmt.Errorf("%s", joined)}
	}
	return tools.CallContent{Text: joined}, nil
}

func convertSchema(schema mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(schema)
	if err != nil {
		return nil
	}
	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}
