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

import "fmt"

// Interrupt is raised by a node to pause execution for a human decision
// (e.g. approving a pending tool call) before the run continues.
type Interrupt struct {
	Value map[string]any
	ID    string
}

// NewInterrupt creates an interrupt carrying an arbitrary value and no ID.
func NewInterrupt(value map[string]any) Interrupt {
	return Interrupt{Value: value}
}

// NewInterruptWithID creates an interrupt carrying a value and an ID used
// to correlate a later resume with the interrupt that raised it.
func NewInterruptWithID(value map[string]any, id string) Interrupt {
	return Interrupt{Value: value, ID: id}
}

// Interrupted is the error a node's Run returns to signal an Interrupt.
// The executor recognizes this via errors.As, suspends the run, persists
// a checkpoint, and surfaces the interrupt to the caller instead of
// treating it as a failure.
type Interrupted struct {
	Interrupt Interrupt
}

func (e *Interrupted) Error() string {
	return fmt.Sprintf("graph: interrupted: %+v", e.Interrupt)
}

// InterruptHandler decides how to resolve a raised Interrupt. Implement
// this to drive an approval flow (CLI prompt, web callback, policy
// check); the returned value becomes available to the node on resume.
type InterruptHandler interface {
	HandleInterrupt(interrupt Interrupt) (map[string]any, error)
}

// DefaultInterruptHandler returns the interrupt's own value unchanged —
// the degenerate "auto-approve with no modification" handler used when
// the caller doesn't need custom resolution logic.
type DefaultInterruptHandler struct{}

func (DefaultInterruptHandler) HandleInterrupt(interrupt Interrupt) (map[string]any, error) {
	return interrupt.Value, nil
}
