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

// Package orchestrator assembles and drives one runnable agent: it wires
// a tool-source aggregate, an LLM client, a checkpoint store, a
// long-term memory store, and one of the four pattern graphs
// (pkg/pattern/react, dup, tot, got) from a single BuildConfig, then
// constructs the initial run state (resuming from a checkpoint when one
// exists for the thread) and drives Invoke or Stream to completion.
package orchestrator
