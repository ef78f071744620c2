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

// Package commandtool runs shell commands as a tool, with an optional
// allowlist of base commands and a hard execution timeout.
package commandtool

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/loomgraph/runtime/pkg/tools"
)

// Config controls the shell tool's sandbox.
type Config struct {
	// AllowedCommands, if non-empty, restricts execution to these base
	// commands (the first whitespace-delimited token before any pipe,
	// redirect, or separator). Empty means unrestricted.
	AllowedCommands []string

	WorkingDirectory string
	MaxExecutionTime time.Duration
}

func (c *Config) setDefaults() {
	if c.WorkingDirectory == "" {
		c.WorkingDirectory = "."
	}
	if c.MaxExecutionTime == 0 {
		c.MaxExecutionTime = 30 * time.Second
	}
}

// Source is a tools.ToolSource exposing a single run_command tool.
type Source struct {
	config Config
}

// New returns a commandtool.Source. A nil cfg uses the defaults.
func New(cfg *Config) *Source {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	return &Source{config: *cfg}
}

var _ tools.ToolSource = (*Source)(nil)

type runCommandArgs struct {
	Command    string `json:"command" jsonschema:"required,description=Shell command to execute"`
	WorkingDir string `json:"working_dir,omitempty" jsonschema:"description=Working directory override"`
}

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	schema, err := tools.GenerateSchema[runCommandArgs]()
	if err != nil {
		return nil, err
	}
	return []tools.ToolSpec{{
		Name:        "run_command",
		Description: "Execute a shell command and return its combined stdout/stderr.",
		InputSchema: schema,
	}}, nil
}

func (s *Source) SetCallContext(*tools.CallContext) {}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (s *Source) CallToolWithContext(ctx context.Context, name, argumentsJSON string, _ *tools.CallContext) (tools.CallContent, error) {
	if name != "run_command" {
		return tools.CallContent{}, &tools.NotFoundError{Tool: name}
	}

	var args runCommandArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "run_command", Reason: err.Error()}
	}
	if args.Command == "" {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "run_command", Reason: "command is required"}
	}
	if err := s.validateCommand(args.Command); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "run_command", Reason: err.Error()}
	}

	workingDir := args.WorkingDir
	if workingDir == "" {
		workingDir = s.config.WorkingDirectory
	}

	runCtx, cancel := context.WithTimeout(ctx, s.config.MaxExecutionTime)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", args.Command)
	cmd.Dir = workingDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return tools.CallContent{Text: string(output)}, &tools.TransportError{Tool: "run_command", Err: err}
	}
	return tools.CallContent{Text: string(output)}, nil
}

func (s *Source) validateCommand(command string) error {
	if len(s.config.AllowedCommands) == 0 {
		return nil
	}
	base := baseCommand(command)
	for _, allowed := range s.config.AllowedCommands {
		if base == allowed {
			return nil
		}
	}
	return fmt.Errorf("command not allowed: %s", base)
}

func baseCommand(command string) string {
	parts := strings.FieldsFunc(command, func(r rune) bool {
		return r == '|' || r == '>' || r == '<' || r == ';'
	})
	if len(parts) == 0 {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(parts[0]))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
