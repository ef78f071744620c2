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

import "fmt"

// Envelope carries the three correlation fields every streamed event is
// tagged with: session_id is constant for a run, node_id names the node
// currently executing, and event_id increases monotonically within the
// stream.
type Envelope struct {
	SessionID string
	NodeID    string
	EventID   uint64
}

// InjectInto merges e's fields into obj at the top level, without
// overwriting a key obj already has, so a node's own "id"/"type" fields
// never collide with the envelope's "node_id"/"event_id" keys.
func (e Envelope) InjectInto(obj map[string]any) {
	if obj == nil {
		return
	}
	if e.SessionID != "" {
		if _, ok := obj["session_id"]; !ok {
			obj["session_id"] = e.SessionID
		}
	}
	if e.NodeID != "" {
		if _, ok := obj["node_id"]; !ok {
			obj["node_id"] = e.NodeID
		}
	}
	if e.EventID != 0 {
		if _, ok := obj["event_id"]; !ok {
			obj["event_id"] = e.EventID
		}
	}
}

// EnvelopeState tracks one run's envelope: its constant session id, the
// current node's run id, and the next event id to hand out. node_id
// takes the shape "run-{node_name}-{local_seq}", local_seq incrementing
// every time a node_enter event passes through.
type EnvelopeState struct {
	SessionID     string
	currentNodeID string
	nodeRunSeq    uint64
	nextEventID   uint64
}

// NewEnvelopeState starts fresh envelope bookkeeping for sessionID, with
// event ids starting at 1.
func NewEnvelopeState(sessionID string) *EnvelopeState {
	return &EnvelopeState{SessionID: sessionID, nextEventID: 1}
}

// Inject advances the envelope state from obj's "type"/"id" fields (set
// by eventToWire) and then tags obj with the resulting envelope.
func (s *EnvelopeState) Inject(obj map[string]any) {
	if t, _ := obj["type"].(string); t == "node_enter" {
		id, _ := obj["id"].(string)
		s.currentNodeID = fmt.Sprintf("run-%s-%d", id, s.nodeRunSeq)
		s.nodeRunSeq++
	}

	nodeID := s.currentNodeID
	if nodeID == "" {
		nodeID = "run-0"
	}

	env := Envelope{SessionID: s.SessionID, NodeID: nodeID, EventID: s.nextEventID}
	s.nextEventID++
	env.InjectInto(obj)
}

// ReplyEnvelope builds the envelope for a terminal RunEnd/Error frame
// without consuming an event id, peeking at the next id rather than
// advancing past it.
func (s *EnvelopeState) ReplyEnvelope() Envelope {
	nodeID := s.currentNodeID
	if nodeID == "" {
		nodeID = "run-0"
	}
	return Envelope{SessionID: s.SessionID, NodeID: nodeID, EventID: s.nextEventID}
}
