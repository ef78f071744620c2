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

package webtool

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchURLReturnsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "hello world")
	}))
	defer ts.Close()

	s := New(nil)
	got, err := s.CallTool(context.Background(), "fetch_url", fmt.Sprintf(`{"url":%q}`, ts.URL))
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if got.Text != "hello world" {
		t.Errorf("body = %q, want %q", got.Text, "hello world")
	}
}

func TestFetchURLRejectsDeniedDomain(t *testing.T) {
	s := New(&Config{DeniedDomains: []string{"example.com"}})
	_, err := s.CallTool(context.Background(), "fetch_url", `{"url":"http://example.com/"}`)
	if err == nil {
		t.Fatal("expected error for denied domain, got nil")
	}
}

func TestFetchURLRejectsDomainNotInAllowList(t *testing.T) {
	s := New(&Config{AllowedDomains: []string{"trusted.test"}})
	_, err := s.CallTool(context.Background(), "fetch_url", `{"url":"http://other.test/"}`)
	if err == nil {
		t.Fatal("expected error for domain outside allow list, got nil")
	}
}

func TestFetchURLCapsResponseSize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	defer ts.Close()

	s := New(&Config{MaxResponseSize: 10})
	_, err := s.CallTool(context.Background(), "fetch_url", fmt.Sprintf(`{"url":%q}`, ts.URL))
	if err == nil {
		t.Fatal("expected error for oversized response, got nil")
	}
}

func TestCallToolUnknownNameReturnsNotFound(t *testing.T) {
	s := New(nil)
	_, err := s.CallTool(context.Background(), "bogus", `{}`)
	if err == nil {
		t.Fatal("expected NotFoundError, got nil")
	}
}
