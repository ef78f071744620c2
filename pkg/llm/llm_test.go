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

package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/loomgraph/runtime/pkg/tools"
)

func TestIsTransientTrueForTransientError(t *testing.T) {
	err := &Error{Category: CategoryTransient, Provider: "openai", Err: fmt.Errorf("rate limited")}
	if !IsTransient(err) {
		t.Error("IsTransient() = false, want true")
	}
}

func TestIsTransientFalseForPermanentError(t *testing.T) {
	err := &Error{Category: CategoryPermanent, Provider: "openai", Err: fmt.Errorf("bad request")}
	if IsTransient(err) {
		t.Error("IsTransient() = true, want false")
	}
}

func TestIsTransientFalseForUnrelatedError(t *testing.T) {
	if IsTransient(errors.New("plain error")) {
		t.Error("IsTransient() = true for unrelated error, want false")
	}
}

func TestIsTransientUnwrapsWrappedError(t *testing.T) {
	inner := &Error{Category: CategoryTransient, Provider: "openai", Err: fmt.Errorf("timeout")}
	wrapped := fmt.Errorf("invoke failed: %w", inner)
	if !IsTransient(wrapped) {
		t.Error("IsTransient() = false for wrapped transient error, want true")
	}
}

func TestBindToolSpecsConvertsFields(t *testing.T) {
	specs := []tools.ToolSpec{
		{Name: "fetch_url", Description: "fetch a URL", InputSchema: map[string]any{"type": "object"}},
	}
	defs := BindToolSpecs(specs)
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	if defs[0].Name != "fetch_url" || defs[0].Description != "fetch a URL" {
		t.Errorf("defs[0] = %+v, unexpected", defs[0])
	}
}
