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

// Package webtool is an HTTP fetch tool with domain allow/deny lists and
// a capped response size.
package webtool

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/loomgraph/runtime/pkg/tools"
)

// Config controls the fetch tool's sandbox.
type Config struct {
	Timeout         time.Duration
	MaxResponseSize int64
	AllowedDomains  []string
	DeniedDomains   []string
	UserAgent       string
}

func (c *Config) setDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxResponseSize == 0 {
		c.MaxResponseSize = 1 << 20 // 1MB
	}
	if c.UserAgent == "" {
		c.UserAgent = "loomgraph-runtime/1.0"
	}
}

// Source is a tools.ToolSource exposing a single fetch_url tool.
type Source struct {
	config Config
	client *http.Client
}

// New returns a webtool.Source. A nil cfg uses the defaults.
func New(cfg *Config) *Source {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	return &Source{
		config: *cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ tools.ToolSource = (*Source)(nil)

type fetchURLArgs struct {
	URL string `json:"url" jsonschema:"required,description=URL to fetch"`
}

func (s *Source) ListTools(context.Context) ([]tools.ToolSpec, error) {
	schema, err := tools.GenerateSchema[fetchURLArgs]()
	if err != nil {
		return nil, err
	}
	return []tools.ToolSpec{{
		Name:        "fetch_url",
		Description: "Fetch the contents of a URL over HTTP GET.",
		InputSchema: schema,
	}}, nil
}

func (s *Source) SetCallContext(*tools.CallContext) {}

func (s *Source) CallTool(ctx context.Context, name, argumentsJSON string) (tools.CallContent, error) {
	return s.CallToolWithContext(ctx, name, argumentsJSON, nil)
}

func (s *Source) CallToolWithContext(ctx context.Context, name, argumentsJSON string, _ *tools.CallContext) (tools.CallContent, error) {
	if name != "fetch_url" {
		return tools.CallContent{}, &tools.NotFoundError{Tool: name}
	}

	var args fetchURLArgs
	if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "fetch_url", Reason: err.Error()}
	}

	parsed, err := url.Parse(args.URL)
	if err != nil || parsed.Host == "" {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "fetch_url", Reason: "invalid URL"}
	}
	if err := s.validateDomain(parsed.Hostname()); err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "fetch_url", Reason: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, args.URL, nil)
	if err != nil {
		return tools.CallContent{}, &tools.InvalidInputError{Tool: "fetch_url", Reason: err.Error()}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "fetch_url", Err: err}
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, s.config.MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return tools.CallContent{}, &tools.TransportError{Tool: "fetch_url", Err: err}
	}
	if int64(len(body)) > s.config.MaxResponseSize {
		return tools.CallContent{}, &tools.TransportError{
			Tool: "fetch_url",
			Err:  fmt.Errorf("response exceeds %d bytes", s.config.MaxResponseSize),
		}
	}

	return tools.CallContent{Text: string(body)}, nil
}

func (s *Source) validateDomain(host string) error {
	for _, denied := range s.config.DeniedDomains {
		if matchesDomain(host, denied) {
			return fmt.Errorf("domain not allowed: %s", host)
		}
	}
	if len(s.config.AllowedDomains) == 0 {
		return nil
	}
	for _, allowed := range s.config.AllowedDomains {
		if matchesDomain(host, allowed) {
			return nil
		}
	}
	return fmt.Errorf("domain not in allowed list: %s", host)
}

func matchesDomain(host, pattern string) bool {
	host = strings.ToLower(host)
	pattern = strings.ToLower(pattern)
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(host, pattern[1:])
	}
	return host == pattern
}
