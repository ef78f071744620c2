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

package transport

import (
	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/orchestrator"
	"github.com/loomgraph/runtime/pkg/state"
)

// RunRequest is one turn sent over the transport. Agent selects which
// pattern graph the turn runs against; ThreadID, when set, resumes (or
// starts) that conversation's checkpointed history. ApprovalResult, when
// set, is first merged into ThreadID's latest checkpoint to resolve a
// pending approval interrupt; the turn then runs Message as usual.
type RunRequest struct {
	Agent         orchestrator.AgentKind `json:"agent"`
	Message       string                 `json:"message"`
	ThreadID      string                 `json:"thread_id,omitempty"`
	WorkspaceID   string                 `json:"workspace_id,omitempty"`
	WorkingFolder string                 `json:"working_folder,omitempty"`
	GotAdaptive   bool                   `json:"got_adaptive,omitempty"`
	Verbose       bool                   `json:"verbose,omitempty"`

	ApprovalResult *ApprovalResolution `json:"approval_result,omitempty"`
}

// ApprovalResolution is the client's answer to a distinguished
// approval-required stream event.
type ApprovalResolution struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// RunStreamEvent wraps one graph.Event as a JSON-serialised envelope.
// Event always carries at least "type", "node_id", "session_id", and
// "event_id" keys once Inject has tagged it.
type RunStreamEvent struct {
	ID    string         `json:"id"`
	Event map[string]any `json:"event"`
}

// RunEnd is the terminal success response for a turn.
type RunEnd struct {
	ID         string       `json:"id"`
	Reply      string       `json:"reply"`
	Usage      *state.Usage `json:"usage,omitempty"`
	TotalUsage *state.Usage `json:"total_usage,omitempty"`
	SessionID  string       `json:"session_id,omitempty"`
	NodeID     string       `json:"node_id,omitempty"`
	EventID    uint64       `json:"event_id,omitempty"`
}

// ErrorMessage is the terminal failure response for a turn.
type ErrorMessage struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// eventToWire converts one graph.Event into the JSON-object shape the
// envelope is injected into. StreamTasks "start"/"end" payloads become
// "node_enter"/"node_exit" (Inject looks for type == "node_enter" to
// advance the current node id); every other stream mode maps to its own
// type name.
func eventToWire(ev graph.Event) map[string]any {
	wire := map[string]any{
		"type": wireEventType(ev),
		"id":   ev.Node,
	}
	if ev.Payload != nil {
		wire["payload"] = ev.Payload
	}
	return wire
}

func wireEventType(ev graph.Event) string {
	switch ev.Kind {
	case graph.StreamTasks:
		switch ev.Payload {
		case "start":
			return "node_enter"
		case "end":
			return "node_exit"
		default:
			return "task"
		}
	case graph.StreamValues:
		return "values"
	case graph.StreamUpdates:
		return "updates"
	case graph.StreamMessages:
		return "message"
	case graph.StreamTools:
		return "tool"
	case graph.StreamCustom:
		return "custom"
	case graph.StreamCheckpoints:
		return "checkpoint"
	case graph.StreamDebug:
		return "debug"
	default:
		return string(ev.Kind)
	}
}

// approvalRequiredEvent builds the distinguished event a pending tool
// approval is surfaced as. interruptValue is the raw map the node's
// Interrupt carried; its keys are merged directly into the event so
// callers see e.g. "tool"/"args" at the top level alongside "type".
func approvalRequiredEvent(id string, env Envelope, interruptID string, interruptValue map[string]any) RunStreamEvent {
	payload := make(map[string]any, len(interruptValue)+2)
	for k, v := range interruptValue {
		payload[k] = v
	}
	payload["type"] = "approval_required"
	if interruptID != "" {
		payload["interrupt_id"] = interruptID
	}
	env.InjectInto(payload)
	return RunStreamEvent{ID: id, Event: payload}
}
