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
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loomgraph/runtime/pkg/state"
)

// ResolveApproval records a human's decision on the tool call that
// suspended the run as an Interrupted error, merging it into the
// thread's latest checkpoint as ApprovalResult so the next Invoke/Stream
// call picks it up on resume. Callers drive this from the distinguished
// approval-required stream event's reply path (pkg/transport), not as
// part of a normal turn.
func (o *Orchestrator) ResolveApproval(ctx context.Context, approved bool, reason string) error {
	if o.checkpointMgr == nil || !o.checkpointMgr.IsEnabled() || o.threadID == "" {
		return &BuildError{Component: "approval resolve", Err: fmt.Errorf("checkpointing is not enabled for this thread")}
	}

	cp, err := o.checkpointMgr.LatestCheckpoint(ctx, o.threadID, o.checkpointNS)
	if err != nil {
		return &BuildError{Component: "approval resolve", Err: err}
	}
	if cp == nil {
		return &BuildError{Component: "approval resolve", Err: fmt.Errorf("no checkpoint to resolve for thread %q", o.threadID)}
	}

	payload, err := mergeApprovalResult(o.kind, cp.Payload, &state.ApprovalResult{Approved: approved, Reason: reason})
	if err != nil {
		return &BuildError{Component: "approval resolve", Err: err}
	}

	next := *cp
	next.CheckpointID = uuid.NewString()
	next.ParentID = cp.CheckpointID
	next.CreatedAt = time.Now()
	next.Payload = payload

	if err := o.checkpointMgr.SaveCheckpoint(ctx, next); err != nil {
		return &BuildError{Component: "approval resolve", Err: err}
	}
	return nil
}

// mergeApprovalResult decodes payload as the state type kind's pattern
// graph runs on, sets its ApprovalResult, and re-encodes it. GoT has no
// ApprovalResult field: it plans and executes a fresh task graph per
// message and never raises an approval interrupt of this shape.
func mergeApprovalResult(kind AgentKind, payload []byte, result *state.ApprovalResult) ([]byte, error) {
	switch kind {
	case AgentDup:
		var s state.DupState
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, err
		}
		s.Core.ApprovalResult = result
		return json.Marshal(s)

	case AgentTot:
		var s state.TotState
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, err
		}
		s.Core.ApprovalResult = result
		return json.Marshal(s)

	case AgentGot:
		return nil, fmt.Errorf("got pattern has no approval flow to resolve")

	default:
		var s state.ReActState
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, err
		}
		s.ApprovalResult = result
		return json.Marshal(s)
	}
}
