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

package envconfig

// Config is the typed shape an XDG config file / .env / process-env
// layering decodes into. Field names mirror orchestrator.BuildConfig
// closely enough that cmd/runtime's translation to it is a direct copy,
// but this type stays independent of pkg/orchestrator so envconfig has
// no import-time dependency on the graph/pattern packages it configures.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Agent AgentConfig `yaml:"agent"`
	LLM   LLMConfig   `yaml:"llm"`
	Tools ToolsConfig `yaml:"tools"`

	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Memory     MemoryConfig     `yaml:"memory"`

	Verbose bool `yaml:"verbose"`
}

// AgentConfig selects the pattern graph and its system-prompt persona.
type AgentConfig struct {
	Kind    string `yaml:"kind"`
	Persona string `yaml:"persona"`

	GotAdaptive       bool `yaml:"got_adaptive"`
	GotMaxConcurrency int  `yaml:"got_max_concurrency"`
}

// LLMConfig describes how to reach the model provider.
type LLMConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
}

// ToolsConfig mirrors orchestrator.ToolsConfig's scalar fields; MCP
// servers are configured as a list of name/command/args triples.
type ToolsConfig struct {
	WorkingFolder string `yaml:"working_folder"`

	EnableWeb     bool `yaml:"enable_web"`
	EnableCommand bool `yaml:"enable_command"`

	// ApprovalPolicy is one of "none", "destructive", "always".
	ApprovalPolicy string `yaml:"approval_policy"`

	MCPServers []MCPServerConfig `yaml:"mcp_servers"`
}

// MCPServerConfig names one stdio MCP server to bridge in as a tool
// source.
type MCPServerConfig struct {
	Name    string   `yaml:"name"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// CheckpointConfig mirrors orchestrator.CheckpointConfig.
type CheckpointConfig struct {
	Enabled     bool   `yaml:"enabled"`
	EveryNNodes int    `yaml:"every_n_nodes"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// MemoryConfig mirrors orchestrator.MemoryConfig's scalar form; a blank
// QdrantAddr keeps the in-memory store.
type MemoryConfig struct {
	QdrantAddr       string `yaml:"qdrant_addr"`
	QdrantCollection string `yaml:"qdrant_collection"`
}
