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

package state

import "time"

// Checkpoint is a single persisted snapshot of a graph run, keyed by
// thread and checkpoint namespace. Payload holds the JSON-encoded pattern
// state (ReActState, TotState, DupState or GotState) as produced by the
// graph executor between node transitions.
type Checkpoint struct {
	ThreadID       string            `json:"thread_id"`
	CheckpointNS   string            `json:"checkpoint_ns"`
	CheckpointID   string            `json:"checkpoint_id"`
	ParentID       string            `json:"parent_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	NextNode       string            `json:"next_node,omitempty"`
	Payload        []byte            `json:"payload"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Namespace scopes a long-term-memory item, e.g. ("user", "alice",
// "preferences"). Memory stores use the joined namespace as a key prefix.
type Namespace []string

// Item is a single entry in a long-term-memory store.
type Item struct {
	Namespace Namespace         `json:"namespace"`
	Key       string            `json:"key"`
	Value     map[string]any    `json:"value"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Score     float64           `json:"score,omitempty"`
}
