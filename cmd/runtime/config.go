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

package main

import (
	"fmt"
	"strings"

	"github.com/loomgraph/runtime/pkg/envconfig"
	"github.com/loomgraph/runtime/pkg/llm/openai"
	"github.com/loomgraph/runtime/pkg/memory/qdrantstore"
	"github.com/loomgraph/runtime/pkg/orchestrator"
	"github.com/loomgraph/runtime/pkg/tools"
	"github.com/loomgraph/runtime/pkg/tools/commandtool"
	"github.com/loomgraph/runtime/pkg/tools/mcpsource"
	"github.com/loomgraph/runtime/pkg/tools/webtool"
)

// loadConfig reads the XDG/env-layered config at path (DefaultConfigPath
// when empty) into an envconfig.Config. A missing file is not an error:
// flags and process env alone can drive a run.
func loadConfig(path string) (*envconfig.Config, error) {
	return envconfig.NewLoader(path).Load()
}

// toBuildConfig translates an envconfig.Config plus the per-invocation
// thread/message identity into orchestrator.BuildConfig. Field names were
// chosen in pkg/envconfig specifically to make this translation a direct
// copy rather than a remapping.
func toBuildConfig(cfg *envconfig.Config, threadID, workspaceID string) (orchestrator.BuildConfig, error) {
	kind := orchestrator.AgentKind(cfg.Agent.Kind)
	if kind == "" {
		kind = orchestrator.AgentReact
	}

	llmCfg, err := toLLMConfig(cfg.LLM)
	if err != nil {
		return orchestrator.BuildConfig{}, err
	}

	approval, err := parseApprovalPolicy(cfg.Tools.ApprovalPolicy)
	if err != nil {
		return orchestrator.BuildConfig{}, err
	}

	var mcpServers []mcpsource.Config
	for _, m := range cfg.Tools.MCPServers {
		mcpServers = append(mcpServers, mcpsource.Config{
			Command: m.Command,
			Args:    m.Args,
		})
	}

	var memCfg orchestrator.MemoryConfig
	if cfg.Memory.QdrantAddr != "" {
		host, port := splitHostPort(cfg.Memory.QdrantAddr)
		memCfg.Qdrant = &qdrantstore.Config{
			Host:       host,
			Port:       port,
			Collection: cfg.Memory.QdrantCollection,
		}
	}

	return orchestrator.BuildConfig{
		Kind:        kind,
		ThreadID:    threadID,
		WorkspaceID: workspaceID,
		Persona:     cfg.Agent.Persona,

		Tools: orchestrator.ToolsConfig{
			WorkingFolder:  cfg.Tools.WorkingFolder,
			EnableWeb:      cfg.Tools.EnableWeb,
			Web:            &webtool.Config{},
			EnableCommand:  cfg.Tools.EnableCommand,
			Command:        &commandtool.Config{WorkingDirectory: cfg.Tools.WorkingFolder},
			MCPServers:     mcpServers,
			ApprovalPolicy: approval,
		},

		LLM: llmCfg,

		Checkpoint: orchestrator.CheckpointConfig{
			Enabled:     cfg.Checkpoint.Enabled,
			EveryNNodes: cfg.Checkpoint.EveryNNodes,
			SQLitePath:  cfg.Checkpoint.SQLitePath,
		},

		Memory: memCfg,

		GotAdaptive:       cfg.Agent.GotAdaptive,
		GotMaxConcurrency: cfg.Agent.GotMaxConcurrency,
		Verbose:           cfg.Verbose,
	}, nil
}

func toLLMConfig(cfg envconfig.LLMConfig) (orchestrator.LLMConfig, error) {
	if cfg.Model == "" {
		return orchestrator.LLMConfig{}, fmt.Errorf("llm.model is required")
	}
	if cfg.APIKey == "" {
		return orchestrator.LLMConfig{}, fmt.Errorf("llm.api_key is required (or set via .env)")
	}
	return orchestrator.LLMConfig{
		OpenAI: &openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: float32(cfg.Temperature),
		},
	}, nil
}

func parseApprovalPolicy(s string) (tools.ApprovalPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return tools.ApprovalNone, nil
	case "destructive":
		return tools.ApprovalDestructiveOnly, nil
	case "always":
		return tools.ApprovalAlways, nil
	default:
		return tools.ApprovalNone, fmt.Errorf("unknown approval policy %q (want none, destructive, or always)", s)
	}
}

func splitHostPort(addr string) (string, int) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return addr, 0
	}
	port := 0
	fmt.Sscanf(portStr, "%d", &port)
	return host, port
}
