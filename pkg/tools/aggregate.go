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

package tools

import (
	"context"
	"sync"
)

// Aggregate composes multiple tool sources behind a single ToolSource
// view. Tool names are resolved against a name-indexed map built at
// registration time; when two sources offer the same tool name, the
// first registration wins.
type Aggregate struct {
	mu      sync.RWMutex
	sources []ToolSource
	owner   map[string]ToolSource // tool name -> owning source
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{owner: make(map[string]ToolSource)}
}

var _ ToolSource = (*Aggregate)(nil)

// Register adds a source and indexes its current tools. Names already
// owned by an earlier registration are left untouched.
func (a *Aggregate) Register(ctx context.Context, source ToolSource) error {
	specs, err := source.ListTools(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sources = append(a.sources, source)
	for _, spec := range specs {
		if _, exists := a.owner[spec.Name]; !exists {
			a.owner[spec.Name] = source
		}
	}
	return nil
}

func (a *Aggregate) ListTools(ctx context.Context) ([]ToolSpec, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(a.owner))
	for _, source := range a.sources {
		sourceSpecs, err := source.ListTools(ctx)
		if err != nil {
			return nil, err
		}
		for _, spec := range sourceSpecs {
			if a.owner[spec.Name] == source {
				specs = append(specs, spec)
			}
		}
	}
	return specs, nil
}

func (a *Aggregate) CallTool(ctx context.Context, name string, argumentsJSON string) (CallContent, error) {
	return a.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (a *Aggregate) CallToolWithContext(ctx context.Context, name string, argumentsJSON string, callCtx *CallContext) (CallContent, error) {
	a.mu.RLock()
	source, ok := a.owner[name]
	a.mu.RUnlock()
	if !ok {
		return CallContent{}, &NotFoundError{Tool: name}
	}
	return source.CallToolWithContext(ctx, name, argumentsJSON, callCtx)
}

// SetCallContext forwards the call context to every registered source.
func (a *Aggregate) SetCallContext(callCtx *CallContext) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, source := range a.sources {
		source.SetCallContext(callCtx)
	}
}
