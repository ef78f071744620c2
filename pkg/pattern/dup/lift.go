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

package dup

import (
	"context"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/state"
)

// coreNode lifts a graph.Node[state.ReActState] (the react package's
// Think/Act/Observe) into a graph.Node[state.DupState]: it runs the inner
// node against DupState.Core and writes the result back, leaving
// Understand untouched. This is the same subgraph-as-node composition the
// graph package itself supports for whole compiled graphs, applied here
// at the single-node granularity so DUP can reuse the ReAct loop verbatim
// instead of reimplementing it.
type coreNode struct {
	inner graph.Node[state.ReActState]
}

func liftCore(inner graph.Node[state.ReActState]) graph.Node[state.DupState] {
	return coreNode{inner: inner}
}

func (n coreNode) ID() string { return n.inner.ID() }

func (n coreNode) Run(ctx context.Context, rc *graph.RunContext[state.DupState], s state.DupState) (state.DupState, graph.Next, error) {
	innerRC := liftRunContext(rc)
	core, next, err := n.inner.Run(ctx, innerRC, s.Core)
	if err != nil {
		return s, graph.Next{}, err
	}
	s.Core = core
	return s, next, nil
}

func liftRunContext(rc *graph.RunContext[state.DupState]) *graph.RunContext[state.ReActState] {
	inner := graph.NewRunContext[state.ReActState](rc.Config)
	inner.Store = rc.Store
	inner.Stream = rc.Stream
	inner.StreamModes = rc.StreamModes
	inner.InterruptHandler = rc.InterruptHandler
	return inner
}
