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
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/orchestrator"
)

// RunCmd runs one turn (or, with --chat, an interactive session) against
// a locally-built Orchestrator and prints the reply to stdout.
type RunCmd struct {
	Agent   string `help:"Pattern graph: react, dup, tot, or got." default:"react"`
	Message string `help:"User message for a single turn. Ignored with --chat."`
	Chat    bool   `help:"Start an interactive chat loop instead of a single turn."`

	ThreadID      string `name:"thread-id" help:"Resume (or start) this conversation thread. Random when empty."`
	WorkingFolder string `name:"working-folder" help:"Working folder the file tools operate in." type:"path"`
	Stream        bool   `help:"Print stream events as the run progresses."`
}

func (c *RunCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.WorkingFolder != "" {
		cfg.Tools.WorkingFolder = c.WorkingFolder
	}
	if c.Agent != "" {
		cfg.Agent.Kind = c.Agent
	}

	threadID := c.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	buildCfg, err := toBuildConfig(cfg, threadID, "")
	if err != nil {
		return err
	}

	o, err := orchestrator.Build(context.Background(), buildCfg)
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	if c.Chat {
		return c.runChat(o, threadID)
	}

	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("--message is required (or pass --chat for an interactive session)")
	}

	return c.runOnce(o, c.Message)
}

func (c *RunCmd) runOnce(o *orchestrator.Orchestrator, message string) error {
	ctx := context.Background()

	if !c.Stream {
		result, err := o.Invoke(ctx, message)
		if err != nil {
			return reportRunError(err)
		}
		fmt.Println(result.Reply)
		return nil
	}

	result, err := o.Stream(ctx, message, func(ev graph.Event) {
		fmt.Fprintf(os.Stderr, "[%s] %s: %v\n", ev.Kind, ev.Node, ev.Payload)
	})
	if err != nil {
		return reportRunError(err)
	}
	fmt.Println(result.Reply)
	return nil
}

// runChat drives an interactive loop over the same Orchestrator, relying
// on checkpointed history to carry context between turns.
func (c *RunCmd) runChat(o *orchestrator.Orchestrator, threadID string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("\nchat with %s (thread %s)\n", o.Kind(), threadID)
	fmt.Println("Type /quit to end the session.")

	for {
		fmt.Print("\nyou: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "/quit" || input == "/exit" {
			fmt.Println("session ended")
			return nil
		}

		if err := c.runOnce(o, input); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func reportRunError(err error) error {
	var interrupted *graph.Interrupted
	if errors.As(err, &interrupted) {
		slog.Warn("run paused for approval", "tool", interrupted.Interrupt.Value["tool"], "interrupt_id", interrupted.Interrupt.ID)
		return fmt.Errorf("run paused pending tool approval (interrupt %s)", interrupted.Interrupt.ID)
	}
	return err
}
