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

	"github.com/loomgraph/runtime/pkg/graph"
)

// Invoke runs the configured pattern graph to completion for one user
// message and returns the extracted reply. If a checkpoint exists for
// the orchestrator's thread, it is loaded and the message is appended to
// its history rather than starting a fresh conversation.
func (o *Orchestrator) Invoke(ctx context.Context, userMessage string) (RunResult, error) {
	in := o.runInput()
	in.userMessage = userMessage
	return o.runner.invoke(ctx, in)
}

// Stream runs the configured pattern graph for one user message,
// invoking onEvent for every stream event as it is produced, in arrival
// order, and returning the same RunResult Invoke would once the run
// completes.
func (o *Orchestrator) Stream(ctx context.Context, userMessage string, onEvent func(graph.Event)) (RunResult, error) {
	in := o.runInput()
	in.userMessage = userMessage
	return o.runner.stream(ctx, in, onEvent)
}

func (o *Orchestrator) runInput() runInput {
	return runInput{
		threadID:     o.threadID,
		checkpointNS: o.checkpointNS,
		mgr:          o.checkpointMgr,
		streamModes:  o.streamModes,
	}
}
