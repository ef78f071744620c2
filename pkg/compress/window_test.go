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

import (
	"strings"
	"testing"

	"github.com/loomgraph/runtime/pkg/state"
)

func TestTokenEstimatorFallsBackToCharsPerToken(t *testing.T) {
	estimator := NewTokenEstimator("")
	if got := estimator.Count(strings.Repeat("x", 8)); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestIsOverflowWithoutUsageUsesPlainEstimate(t *testing.T) {
	estimator := NewTokenEstimator("")
	messages := []state.Message{state.NewUserMessage(strings.Repeat("x", 400))}
	overflow := IsOverflow(estimator, WindowCheck{
		Messages:         messages,
		MaxContextTokens: 100,
		ReserveTokens:    10,
	})
	if !overflow {
		t.Error("IsOverflow() = false, want true (100 tokens + 10 reserve > 100 max)")
	}
}

func TestIsOverflowUnderLimitIsFalse(t *testing.T) {
	estimator := NewTokenEstimator("")
	messages := []state.Message{state.NewUserMessage(strings.Repeat("x", 100))}
	overflow := IsOverflow(estimator, WindowCheck{
		Messages:         messages,
		MaxContextTokens: 1000,
		ReserveTokens:    10,
	})
	if overflow {
		t.Error("IsOverflow() = true, want false")
	}
}

func TestIsOverflowHybridUsesUsagePlusDelta(t *testing.T) {
	estimator := NewTokenEstimator("")
	messages := []state.Message{state.NewUserMessage("old"), state.NewUserMessage("new")}
	count := 1
	overflow := IsOverflow(estimator, WindowCheck{
		Messages:                   messages,
		Usage:                      &state.Usage{PromptTokens: 50, CompletionTokens: 10},
		MessageCountAfterLastThink: &count,
		MaxContextTokens:           100,
		ReserveTokens:              10,
	})
	if overflow {
		t.Error("IsOverflow() = true, want false (60 base + ~0 delta + 10 reserve < 100)")
	}
}
