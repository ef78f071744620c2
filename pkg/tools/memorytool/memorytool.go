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

// Package memorytool exposes a long-term memory.Store as remember/recall
// tools so a graph node can delegate storage decisions to the model
// rather than hard-coding them.
package memorytool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/loomgraph/runtime/pkg/memory"
	"github.com/loomgraph/runtime/pkg/state"
	"github.com/loomgraph/runtime/pkg/tools"
)

// DefaultNamespace is used when a call omits one.
var DefaultNamespace = state.Namespace{"agent"}

// Source is a tools.ToolSource exposing remember and recall tools backed
// by a single memory.Store.
type Source struct {
	store memory.Store
}

// New returns a memorytool.Source backed by store.
func New(store memory.Store) *Source {
	return &Source{store: store}
}

var _ tools.ToolSource = (*Source)(nil)

type rememberArgs struct {
	Key       string `json:"key" jsonschema:"required,description=Identifier to store the value under"`
	Value     string `json:"value" jsonschema:"required,description=Text to remember"`
	Namespace string `json:"namespace,omitempty" jsonschema:"description=Dot-separated namespace, default is agent"`
}

type recallArgs struct {
	Query     string `json:"query" jsonschema:"required,description=Text to search for"`
	Namespace string `json:"namespace,omitempty" jsonschema:"description=Dot-separated namespace, default is agent"`
	Limit     int    `json:"limit,omitempty" jsonschema:"description=Maximum number of results, default 5"`
}

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	rememberSchema, err := tools.GenerateSchema[rememberArgs]()
	if err != nil {
		return nil, err
	}
	recallSchema, err := tools.GenerateSchema[recallArgs]()
	if err != nil {
		return nil, err
	}
	return []tools.ToolSpec{
		{
			Name:        "remember",
			Description: "Store a fact or observation in long-term memory for later recall.",
			InputSchema: rememberSchema,
		},
		{
			Name:        "recall",
			Description: "Search long-term memory for facts relevant to a query.",
			InputSchema: recallSchema,
		},
	}, nil
}

func (s *Source) SetCallContext(*tools.CallContext) {}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (s *Source) CallToolWithContext(ctx context.Context, name, argumentsJSON string, _ *tools.CallContext) (tools.CallContent, error) {
	switch name {
	case "remember":
		return s.remember(ctx, argumentsJSON)
	case "recall":
		return s.recall(ctx, argumentsJSON)
	default:
		return tools.CallContent{}, &tools.NotFoundError{Tool: name}
	}
}

func (s *Source) remember(ctx context.Context, argumentsJSON string) (tools.CallContent, error) {
	var args rememberArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "remember", Reason: err.Error()}
	}
	value := map[string]any{"value": args.Value}
	if err := s.store.Put(ctx, namespaceOf(args.Namespace), args.Key, value); err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "remember", Err: err}
	}
	return tools.CallContent{Text: fmt.Sprintf("remembered %q", args.Key)}, nil
}

func (s *Source) recall(ctx context.Context, argumentsJSON string) (tools.CallContent, error) {
	var args recallArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "recall", Reason: err.Error()}
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 5
	}
	results, err := s.store.Search(ctx, namespaceOf(args.Namespace), memory.SearchOptions{
		Query: args.Query,
		Limit: limit,
	})
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "recall", Err: err}
	}
	if len(results) == 0 {
		return tools.CallContent{Text: "no matching memories"}, nil
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if v, ok := r.Item.Value["value"]; ok {
			lines = append(lines, fmt.Sprintf("%s: %v", r.Item.Key, v))
		} else {
			lines = append(lines, fmt.Sprintf("%s: %v", r.Item.Key, r.Item.Value))
		}
	}
	return tools.CallContent{Text: strings.Join(lines, "\n")}, nil
}

func namespaceOf(raw string) state.Namespace {
	if raw == "" {
		return DefaultNamespace
	}
	return state.Namespace(strings.Split(raw, "."))
}
