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

package telemetry

// Config controls whether and how a run is traced and counted.
type Config struct {
	// Enabled turns on both tracing and metrics. Both are no-ops when
	// false: NewManager then returns a Manager with a no-op tracer and nil
	// Metrics.
	Enabled bool

	ServiceName string

	// SamplingRate is the fraction of traces kept, 0..1. Ignored (full
	// sampling) when CaptureDebugSpans is true, since the in-memory
	// debug exporter is cheap enough to keep everything.
	SamplingRate float64

	// CaptureDebugSpans keeps the most recent spans in memory for
	// inspection (e.g. by a debug endpoint in pkg/transport).
	CaptureDebugSpans bool
	DebugSpanCapacity int

	// Namespace prefixes every Prometheus metric name.
	Namespace string
}

// SetDefaults fills unset fields with the runtime's defaults.
func (c *Config) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "loomgraph-runtime"
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1.0
	}
	if c.DebugSpanCapacity == 0 {
		c.DebugSpanCapacity = 1000
	}
	if c.Namespace == "" {
		c.Namespace = "loomgraph"
	}
}
