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

// Package transport exposes an orchestrator run over a WebSocket
// request/response envelope: one RunRequest per turn, a RunStreamEvent
// per graph.Event while the turn runs, and a terminal RunEnd or Error.
// Every frame carries a (session_id, node_id, event_id) envelope for
// correlation, injected by EnvelopeState as events pass through.
package transport
