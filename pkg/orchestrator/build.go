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
	"context"
	"fmt"
	"sort"

	"github.com/loomgraph/runtime/pkg/checkpoint"
	"github.com/loomgraph/runtime/pkg/checkpoint/memstore"
	"github.com/loomgraph/runtime/pkg/checkpoint/sqlite"
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/llm"
	"github.com/loomgraph/runtime/pkg/llm/openai"
	"github.com/loomgraph/runtime/pkg/memory"
	"github.com/loomgraph/runtime/pkg/memory/inmemory"
	"github.com/loomgraph/runtime/pkg/memory/qdrantstore"
	"github.com/loomgraph/runtime/pkg/pattern/dup"
	"github.com/loomgraph/runtime/pkg/pattern/got"
	"github.com/loomgraph/runtime/pkg/pattern/react"
	"github.com/loomgraph/runtime/pkg/pattern/tot"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
	"github.com/loomgraph/runtime/pkg/tools/commandtool"
	"github.com/loomgraph/runtime/pkg/tools/filetool"
	"github.com/loomgraph/runtime/pkg/tools/mcpsource"
	"github.com/loomgraph/runtime/pkg/tools/memorytool"
	"github.com/loomgraph/runtime/pkg/tools/webtool"
)

// Orchestrator drives one assembled agent end to end. It is built once
// per thread/agent-kind combination by Build and then driven by Invoke or
// Stream for each turn.
type Orchestrator struct {
	kind          AgentKind
	threadID      string
	checkpointNS  string
	checkpointMgr *checkpoint.Manager
	memoryStore   memory.Store
	toolSource    tools.ToolSource
	llmClient     llm.Client
	systemPrompt  string
	streamModes   graph.StreamModeSet
	runner        patternRunner
}

// Kind reports which pattern graph this orchestrator drives.
func (o *Orchestrator) Kind() AgentKind { return o.kind }

// Build assembles every component named in cfg — long-term memory store,
// tool-source aggregate, LLM client bound to the assembled tool specs,
// checkpoint store, and the selected pattern graph — and returns a
// runnable Orchestrator, collapsed into one entry point since there is
// exactly one valid shape of agent per AgentKind rather than an open set
// of fluent options.
func Build(ctx context.Context, cfg BuildConfig) (*Orchestrator, error) {
	memoryStore, err := buildMemoryStore(cfg.Memory)
	if err != nil {
		return nil, err
	}

	toolSource, approvalNames, err := buildToolSource(ctx, cfg.Tools, memoryStore)
	if err != nil {
		return nil, err
	}

	specs, err := toolSource.ListTools(ctx)
	if err != nil {
		return nil, &BuildError{Component: "tool source", Err: err}
	}

	llmClient, err := buildLLMClient(cfg.LLM, specs)
	if err != nil {
		return nil, err
	}

	checkpointMgr, err := buildCheckpointManager(cfg.Checkpoint)
	if err != nil {
		return nil, err
	}

	systemPrompt := assembleSystemPrompt(cfg.Persona, cfg.Tools.WorkingFolder, approvalNames)

	approvalSet := make(map[string]bool, len(approvalNames))
	for _, name := range approvalNames {
		approvalSet[name] = true
	}

	runner, err := buildPatternRunner(cfg, llmClient, toolSource, systemPrompt, approvalSet)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		kind:          resolvedKind(cfg.Kind),
		threadID:      cfg.ThreadID,
		checkpointNS:  cfg.CheckpointNS,
		checkpointMgr: checkpointMgr,
		memoryStore:   memoryStore,
		toolSource:    toolSource,
		llmClient:     llmClient,
		systemPrompt:  systemPrompt,
		streamModes:   defaultStreamModes(cfg),
		runner:        runner,
	}, nil
}

func resolvedKind(kind AgentKind) AgentKind {
	if kind == "" {
		return AgentReact
	}
	return kind
}

func buildMemoryStore(cfg MemoryConfig) (memory.Store, error) {
	if cfg.Qdrant != nil {
		store, err := qdrantstore.Open(*cfg.Qdrant)
		if err != nil {
			return nil, &BuildError{Component: "memory store", Err: err}
		}
		return store, nil
	}
	return inmemory.New(), nil
}

// buildToolSource assembles the tool-source aggregate: memory tools
// always present, file tools when a working folder is set, web and
// shell tools when enabled, and any MCP-bridged sources. It returns the
// sorted list of tool names the configured approval policy marks as
// requiring human approval, for assembleSystemPrompt to mention.
func buildToolSource(ctx context.Context, cfg ToolsConfig, memoryStore memory.Store) (tools.ToolSource, []string, error) {
	agg := tools.NewAggregate()

	if err := agg.Register(ctx, memorytool.New(memoryStore)); err != nil {
		return nil, nil, &BuildError{Component: "memory tool", Err: err}
	}

	if cfg.WorkingFolder != "" {
		fileSource, err := filetool.New(cfg.WorkingFolder)
		if err != nil {
			return nil, nil, &BuildError{Component: "file tools", Err: err}
		}
		if err := agg.Register(ctx, fileSource); err != nil {
			return nil, nil, &BuildError{Component: "file tools", Err: err}
		}
	}

	if cfg.EnableWeb {
		if err := agg.Register(ctx, webtool.New(cfg.Web)); err != nil {
			return nil, nil, &BuildError{Component: "web tool", Err: err}
		}
	}

	if cfg.EnableCommand {
		if err := agg.Register(ctx, commandtool.New(cfg.Command)); err != nil {
			return nil, nil, &BuildError{Component: "command tool", Err: err}
		}
	}

	for _, mcpCfg := range cfg.MCPServers {
		src, err := mcpsource.Connect(ctx, mcpCfg)
		if err != nil {
			return nil, nil, &BuildError{Component: "mcp tool source", Err: err}
		}
		if err := agg.Register(ctx, src); err != nil {
			return nil, nil, &BuildError{Component: "mcp tool source", Err: err}
		}
	}

	specs, err := agg.ListTools(ctx)
	if err != nil {
		return nil, nil, &BuildError{Component: "tool source", Err: err}
	}
	approvalSet := tools.ApprovalSet(cfg.ApprovalPolicy, specs)
	approvalNames := make([]string, 0, len(approvalSet))
	for name := range approvalSet {
		approvalNames = append(approvalNames, name)
	}
	sort.Strings(approvalNames)

	return agg, approvalNames, nil
}

func buildLLMClient(cfg LLMConfig, specs []tools.ToolSpec) (llm.Client, error) {
	if cfg.Client != nil {
		return cfg.Client, nil
	}
	if cfg.OpenAI == nil {
		return nil, &BuildError{Component: "llm client", Err: fmt.Errorf("no client or OpenAI config provided")}
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, &BuildError{Component: "llm client", Err: fmt.Errorf("missing API key")}
	}
	oaiCfg := *cfg.OpenAI
	oaiCfg.Tools = specs
	return openai.New(oaiCfg), nil
}

func buildCheckpointManager(cfg CheckpointConfig) (*checkpoint.Manager, error) {
	if !cfg.Enabled {
		mgrCfg := &checkpoint.Config{Enabled: false}
		mgrCfg.SetDefaults()
		return checkpoint.NewManager(mgrCfg, memstore.New()), nil
	}

	var store checkpoint.Store
	if cfg.SQLitePath != "" {
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, &BuildError{Component: "checkpoint store", Err: err}
		}
		store = s
	} else {
		store = memstore.New()
	}

	mgrCfg := &checkpoint.Config{Enabled: true, EveryNNodes: cfg.EveryNNodes}
	mgrCfg.SetDefaults()
	return checkpoint.NewManager(mgrCfg, store), nil
}

// buildPatternRunner compiles the selected pattern graph and wraps it in
// the patternRunner adapter that knows its concrete state type.
// approvalNames gates those tool names on a human approval decision in
// every pattern's Act node (GoT has no Act node of this shape and does
// not gate tool calls on approval at all).
func buildPatternRunner(cfg BuildConfig, client llm.Client, source tools.ToolSource, systemPrompt string, approvalNames map[string]bool) (patternRunner, error) {
	switch resolvedKind(cfg.Kind) {
	case AgentReact:
		var compiled *graph.CompiledGraph[state.ReActState]
		var err error
		if cfg.Compaction.Auto {
			compiled, err = react.BuildLoopingWithCompaction(client, source, cfg.Compaction, approvalNames)
		} else {
			compiled, err = react.BuildLooping(client, source, approvalNames)
		}
		if err != nil {
			return nil, &BuildError{Component: "react graph", Err: err}
		}
		return &reactRunner{compiled: compiled, systemPrompt: systemPrompt}, nil

	case AgentDup:
		compiled, err := dup.Build(client, source, approvalNames)
		if err != nil {
			return nil, &BuildError{Component: "dup graph", Err: err}
		}
		return &dupRunner{compiled: compiled, systemPrompt: systemPrompt}, nil

	case AgentTot:
		compiled, err := tot.Build(client, source, approvalNames)
		if err != nil {
			return nil, &BuildError{Component: "tot graph", Err: err}
		}
		return &totRunner{compiled: compiled, systemPrompt: systemPrompt}, nil

	case AgentGot:
		maxConcurrent := 1
		if cfg.GotAdaptive {
			maxConcurrent = cfg.GotMaxConcurrency
			if maxConcurrent <= 0 {
				maxConcurrent = defaultGotConcurrency
			}
		}
		compiled, err := got.BuildWithConcurrency(client, source, maxConcurrent)
		if err != nil {
			return nil, &BuildError{Component: "got graph", Err: err}
		}
		return &gotRunner{compiled: compiled}, nil

	default:
		return nil, &BuildError{Component: "pattern graph", Err: fmt.Errorf("unknown agent kind %q", cfg.Kind)}
	}
}

// defaultStreamModes is the stream-mode set Stream uses unless Verbose
// additionally asks for per-transition tracing.
func defaultStreamModes(cfg BuildConfig) graph.StreamModeSet {
	modes := []graph.StreamMode{
		graph.StreamValues,
		graph.StreamTools,
		graph.StreamTasks,
		graph.StreamCustom,
	}
	if cfg.Checkpoint.Enabled {
		modes = append(modes, graph.StreamCheckpoints)
	}
	if cfg.Verbose {
		modes = append(modes, graph.StreamDebug)
	}
	return graph.NewStreamModeSet(modes...)
}
