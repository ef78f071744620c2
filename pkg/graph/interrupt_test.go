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

package graph

import "testing"

func TestDefaultInterruptHandlerReturnsValueUnchanged(t *testing.T) {
	h := DefaultInterruptHandler{}
	interrupt := NewInterruptWithID(map[string]any{"action": "approve"}, "interrupt_1")
	got, err := h.HandleInterrupt(interrupt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["action"] != "approve" {
		t.Fatalf("expected value to pass through unchanged, got %+v", got)
	}
}

func TestInterruptWithIDSetsID(t *testing.T) {
	i := NewInterruptWithID(map[string]any{"k": "v"}, "id-1")
	if i.ID != "id-1" {
		t.Fatalf("expected ID to be set")
	}
}

func TestInterruptWithoutIDIsEmpty(t *testing.T) {
	i := NewInterrupt(map[string]any{"k": "v"})
	if i.ID != "" {
		t.Fatalf("expected empty ID")
	}
}
