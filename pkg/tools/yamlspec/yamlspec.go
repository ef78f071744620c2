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

// Package yamlspec overrides a tools.ToolSource's listed specs with
// declarative YAML descriptions, so a tool's name/description/schema can
// be edited without touching the Go implementation that executes it.
// Execution always dispatches to the wrapped source; YAML only changes
// what ListTools reports.
package yamlspec

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/loomgraph/runtime/pkg/tools"
)

// specYAML mirrors tools.ToolSpec's fields for YAML decoding.
type specYAML struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	InputSchema map[string]any `yaml:"input_schema"`
}

// LoadSpecs parses every *.yaml/*.yml file in dir (one tool spec per
// file) into tools.ToolSpec values.
func LoadSpecs(dir fs.FS) ([]tools.ToolSpec, error) {
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("yamlspec: read dir: %w", err)
	}
	var specs []tools.ToolSpec
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		raw, err := fs.ReadFile(dir, name)
		if err != nil {
			return nil, fmt.Errorf("yamlspec: read %s: %w", name, err)
		}
		var parsed specYAML
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, fmt.Errorf("yamlspec: parse %s: %w", name, err)
		}
		specs = append(specs, tools.ToolSpec{
			Name:        parsed.Name,
			Description: parsed.Description,
			InputSchema: parsed.InputSchema,
		})
	}
	return specs, nil
}

// Source wraps an inner tools.ToolSource and overrides the specs
// returned by ListTools with specs loaded from YAML, keyed by tool
// name. Tools the inner source lists but YAML doesn't describe keep
// their inner spec. Execution always delegates to inner.
type Source struct {
	inner tools.ToolSource
	specs []tools.ToolSpec
}

// Wrap lists inner's tools, loads overriding specs from dir, and
// returns a Source that reports the merged specs while delegating all
// calls to inner.
func Wrap(ctx context.Context, inner tools.ToolSource, dir fs.FS) (*Source, error) {
	registered, err := inner.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("yamlspec: list inner tools: %w", err)
	}
	overrides, err := LoadSpecs(dir)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]tools.ToolSpec, len(overrides))
	for _, s := range overrides {
		byName[s.Name] = s
	}
	merged := make([]tools.ToolSpec, len(registered))
	for i, r := range registered {
		if override, ok := byName[r.Name]; ok {
			merged[i] = override
		} else {
			merged[i] = r
		}
	}
	return &Source{inner: inner, specs: merged}, nil
}

var _ tools.ToolSource = (*Source)(nil)

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	return s.specs, nil
}

func (s *Source) SetCallContext(cc *tools.CallContext) {
	s.inner.SetCallContext(cc)
}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.inner.CallTool(ctx, name, argumentsJSON)
}

func (s *Source) CallToolWithContext(ctx context.Context, name, argumentsJSON string, cc *tools.CallContext) (tools.CallContent, error) {
	return s.inner.CallToolWithContext(ctx, name, argumentsJSON, cc)
}
