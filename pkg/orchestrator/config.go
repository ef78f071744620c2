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

	"github.com/loomgraph/runtime/pkg/compress"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/llm/openai"
	"github.com/loomgraph/runtime/pkg/memory/qdrantstore"
	"github.com/loomgraph/runtime/pkg/tools"
	"github.com/loomgraph/runtime/pkg/tools/commandtool"
	"github.com/loomgraph/runtime/pkg/tools/mcpsource"
	"github.com/loomgraph/runtime/pkg/tools/webtool"
)

// AgentKind selects which reasoning-pattern graph a run builds.
type AgentKind string

const (
	AgentReact AgentKind = "react"
	AgentDup   AgentKind = "dup"
	AgentTot   AgentKind = "tot"
	AgentGot   AgentKind = "got"
)

// defaultGotConcurrency is the worker count used when GotAdaptive is set
// without an explicit GotMaxConcurrency.
const defaultGotConcurrency = 4

// LLMConfig selects how the run's LLM client is built. Client, when set,
// is used as-is (the caller owns tool binding, e.g. pkg/llm/mock in
// tests). Otherwise OpenAI must be set; Build fills its Tools field from
// the assembled tool source before constructing the client.
type LLMConfig struct {
	Client llm.Client
	OpenAI *openai.Config
}

// CheckpointConfig controls whether and where a run's state is
// checkpointed between node transitions.
type CheckpointConfig struct {
	Enabled bool

	// EveryNNodes is copied into checkpoint.Config but is not consulted
	// by any writer: with checkpointing enabled and a thread ID set, the
	// graph executor checkpoints after every node transition.
	EveryNNodes int

	// SQLitePath, when non-empty, durably persists checkpoints to a
	// sqlite database at this path instead of the default in-memory
	// store.
	SQLitePath string
}

// MemoryConfig selects the long-term memory backend. A nil Qdrant uses
// the in-memory lexical-only store.
type MemoryConfig struct {
	Qdrant *qdrantstore.Config
}

// ToolsConfig assembles the tool-source aggregate every pattern graph is
// built over.
type ToolsConfig struct {
	// WorkingFolder is canonicalised once and shared by the file tools.
	// Empty disables file tools entirely.
	WorkingFolder string

	EnableWeb bool
	Web       *webtool.Config

	EnableCommand bool
	Command       *commandtool.Config

	// MCPServers are bridged in as additional tool sources via
	// pkg/tools/mcpsource.
	MCPServers []mcpsource.Config

	ApprovalPolicy tools.ApprovalPolicy
}

// BuildConfig is everything Build needs to assemble one runnable agent.
type BuildConfig struct {
	Kind AgentKind

	ThreadID     string
	UserID       string
	WorkspaceID  string
	CheckpointNS string

	// Persona, when non-empty, is prepended ahead of the assembled
	// working-folder/approval text as the run's system prompt. When
	// empty, the base ReAct system prompt is used instead, with the same
	// working-folder/approval text appended.
	Persona string

	Tools      ToolsConfig
	LLM        LLMConfig
	Checkpoint CheckpointConfig
	Memory     MemoryConfig

	// Compaction is only consulted when Kind is AgentReact (or the zero
	// value, which defaults to AgentReact); a zero value leaves
	// Compaction.Auto false, so Build compiles the plain ReAct loop with
	// no compression subgraph.
	Compaction compress.CompactionConfig

	// GotAdaptive enables concurrent execution of ready task-graph nodes
	// for the GoT pattern; sequential (maxConcurrent=1) when false,
	// matching the source's default.
	GotAdaptive       bool
	GotMaxConcurrency int

	// Verbose adds graph.StreamDebug to the default stream modes used by
	// Stream.
	Verbose bool
}

// BuildError reports a failure assembling a runnable agent: a missing
// API key or LLM client, an unreachable memory store or MCP server, an
// invalid working folder, or invalid graph topology. Each failure names the component that produced it.
type BuildError struct {
	Component string
	Err       error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("orchestrator: build %s: %v", e.Component, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
