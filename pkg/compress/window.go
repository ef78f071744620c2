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

import "github.com/loomgraph/runtime/pkg/state"

// WindowCheck holds exactly the fields needed to decide whether a
// conversation has overflowed its context window, independent of
// ReActState or CompactionConfig.
type WindowCheck struct {
	Messages []state.Message
	// Usage is the last Think call's token usage, when available.
	Usage *state.Usage
	// MessageCountAfterLastThink is the message count recorded right
	// after the last Think call; messages after that index are
	// estimated, rather than re-estimating the whole history.
	MessageCountAfterLastThink *int
	MaxContextTokens           int
	ReserveTokens              int
}

// IsOverflow reports whether the estimated current token count plus the
// reserve for generation exceeds the configured maximum. When a recent
// Think usage and message count are both available, it uses a hybrid
// estimate (real usage for that round plus an estimated delta for
// messages added since); otherwise it estimates the whole history.
func IsOverflow(estimator *TokenEstimator, check WindowCheck) bool {
	current := currentTokens(estimator, check)
	return current+check.ReserveTokens > check.MaxContextTokens
}

func currentTokens(estimator *TokenEstimator, check WindowCheck) int {
	if check.Usage != nil && check.MessageCountAfterLastThink != nil {
		count := *check.MessageCountAfterLastThink
		if count <= len(check.Messages) {
			base := check.Usage.PromptTokens + check.Usage.CompletionTokens
			delta := estimator.CountMessages(check.Messages[count:])
			return base + delta
		}
	}
	return estimator.CountMessages(check.Messages)
}
