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

package compress

// Defaults for CompactionConfig, matching the context-window guardrails
// a 128k-class model run should assume when nothing more specific is
// configured.
const (
	DefaultMaxContextTokens = 128_000
	DefaultReserveTokens    = 4_096
	// DefaultKeepRecentMessages is how many of the most recent messages
	// Prune and Compact both leave untouched, so the immediate
	// conversational context a reply depends on always survives.
	DefaultKeepRecentMessages = 6
)

// CompactionConfig governs whether and how the compression subgraph
// rewrites a run's message history.
type CompactionConfig struct {
	// Auto enables automatic compaction when the context window is
	// estimated to be close to overflowing. When false, Compact passes
	// messages through unchanged.
	Auto bool
	// Model informs the token estimator which tiktoken encoding to use.
	Model            string
	MaxContextTokens int
	ReserveTokens    int
	// KeepRecentMessages is how many trailing messages Prune and
	// Compact both leave alone.
	KeepRecentMessages int
}

// DefaultCompactionConfig returns a CompactionConfig with auto-compaction
// disabled and the package defaults for everything else.
func DefaultCompactionConfig() CompactionConfig {
	return CompactionConfig{
		Auto:               false,
		MaxContextTokens:   DefaultMaxContextTokens,
		ReserveTokens:      DefaultReserveTokens,
		KeepRecentMessages: DefaultKeepRecentMessages,
	}
}
