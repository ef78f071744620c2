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

package graph

// StreamMode selects which categories of StreamEvent a run emits. A run
// may enable more than one mode at once.
type StreamMode string

const (
	// StreamValues emits the full state after every node.
	StreamValues StreamMode = "values"
	// StreamUpdates emits only the delta a node produced.
	StreamUpdates StreamMode = "updates"
	// StreamMessages emits individual LLM message/token events.
	StreamMessages StreamMode = "messages"
	// StreamTools emits tool-call and tool-result events.
	StreamTools StreamMode = "tools"
	// StreamTasks emits per-node task start/end events (used by GoT).
	StreamTasks StreamMode = "tasks"
	// StreamCustom emits pattern-specific events (TotEvaluate, GotPlan, ...).
	StreamCustom StreamMode = "custom"
	// StreamCheckpoints emits an event every time a checkpoint is written.
	StreamCheckpoints StreamMode = "checkpoints"
	// StreamDebug emits verbose per-transition tracing.
	StreamDebug StreamMode = "debug"
)

// StreamModeSet is a small set of enabled stream modes.
type StreamModeSet map[StreamMode]struct{}

// NewStreamModeSet builds a set from the given modes.
func NewStreamModeSet(modes ...StreamMode) StreamModeSet {
	s := make(StreamModeSet, len(modes))
	for _, m := range modes {
		s[m] = struct{}{}
	}
	return s
}

// Contains reports whether mode is enabled.
func (s StreamModeSet) Contains(mode StreamMode) bool {
	if s == nil {
		return false
	}
	_, ok := s[mode]
	return ok
}

// Event is one item emitted onto a run's stream channel. Kind says which
// StreamMode it belongs to; Node is the emitting node's ID ("" for
// run-level events); Payload is mode-specific (a cloned state value, a
// delta map, a token chunk, a custom pattern event, ...).
type Event struct {
	Kind    StreamMode
	Node    string
	Payload any
}

// EventSender is the narrow channel-write capability handed to nodes so
// they can emit events without depending on the channel's buffering or
// closing. A full channel drops the event and increments DroppedCount
// rather than blocking the run, matching the bounded, non-blocking stream
// contract.
type EventSender struct {
	ch      chan<- Event
	dropped *int64
}

// NewEventSender wraps a channel for bounded, drop-counting sends.
func NewEventSender(ch chan<- Event, dropped *int64) EventSender {
	return EventSender{ch: ch, dropped: dropped}
}

// Send attempts a non-blocking send; on a full channel it increments the
// drop counter instead of blocking the node.
func (s EventSender) Send(ev Event) {
	if s.ch == nil {
		return
	}
	select {
	case s.ch <- ev:
	default:
		if s.dropped != nil {
			*s.dropped++
		}
	}
}
