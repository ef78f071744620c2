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

// Package telemetry adds trace/span correlation and Prometheus counters
// on top of a run: a generic node decorator traces every node entry and
// exit with its duration and error outcome, and a Metrics registry
// tracks per-node, per-tool, and per-LLM-call counts and latencies.
// Both are optional — a Manager built from a nil or disabled Config
// carries a no-op tracer and a nil *Metrics, which make every recording
// call a no-op, so instrumentation can be wired unconditionally without
// a nil check at every call site. The Manager itself must not be nil.
package telemetry
