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

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/loomgraph/runtime/pkg/llm/mock"
	"github.com/loomgraph/runtime/pkg/orchestrator"
)

// cachingBuilder mimics the front-end's real obligation: build each
// thread's Orchestrator once and reuse it across requests, so checkpoint
// state (and therefore approval resolution) survives between turns.
// Server itself is stateless and calls Builder on every RunRequest.
func cachingBuilder(base func(req RunRequest) orchestrator.BuildConfig) Builder {
	var mu sync.Mutex
	cache := make(map[string]*orchestrator.Orchestrator)
	return func(ctx context.Context, req RunRequest) (*orchestrator.Orchestrator, error) {
		mu.Lock()
		defer mu.Unlock()
		if o, ok := cache[req.ThreadID]; ok && req.ThreadID != "" {
			return o, nil
		}
		o, err := orchestrator.Build(ctx, base(req))
		if err != nil {
			return nil, err
		}
		if req.ThreadID != "" {
			cache[req.ThreadID] = o
		}
		return o, nil
	}
}

func echoBuilder(content string) Builder {
	return func(ctx context.Context, req RunRequest) (*orchestrator.Orchestrator, error) {
		return orchestrator.Build(ctx, orchestrator.BuildConfig{
			Kind:     req.Agent,
			ThreadID: req.ThreadID,
			LLM:      orchestrator.LLMConfig{Client: mock.WithNoToolCalls(content)},
		})
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/run"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntilTerminal(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame))
		if _, isError := frame["error"]; isError {
			return frame
		}
		if _, isEnd := frame["reply"]; isEnd {
			return frame
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(echoBuilder("ok"))
	srv := httptest.NewServer(s)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunRequestOverWebSocketReturnsRunEnd(t *testing.T) {
	s := NewServer(echoBuilder("hello from the agent"))
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(RunRequest{Agent: orchestrator.AgentReact, Message: "hi"}))

	end := readUntilTerminal(t, conn)
	require.Contains(t, end, "reply")
	require.Equal(t, "hello from the agent", end["reply"])
	require.NotEmpty(t, end["id"])
	require.NotEmpty(t, end["session_id"])
}

func TestRunRequestWithBuildErrorReturnsErrorMessage(t *testing.T) {
	failing := func(ctx context.Context, req RunRequest) (*orchestrator.Orchestrator, error) {
		return orchestrator.Build(ctx, orchestrator.BuildConfig{Kind: req.Agent})
	}
	s := NewServer(failing)
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(RunRequest{Agent: orchestrator.AgentReact, Message: "hi"}))

	end := readUntilTerminal(t, conn)
	require.Contains(t, end, "error")
}

func TestRunRequestStreamsEventsTaggedWithEnvelope(t *testing.T) {
	s := NewServer(echoBuilder("hi back"))
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(RunRequest{Agent: orchestrator.AgentReact, Message: "hi"}))

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	sawEnvelopedEvent := false
	for {
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame))
		if _, isEnd := frame["reply"]; isEnd {
			break
		}
		if _, isError := frame["error"]; isError {
			t.Fatalf("unexpected error frame: %v", frame)
		}
		ev, ok := frame["event"].(map[string]any)
		require.True(t, ok, "expected a RunStreamEvent frame, got %v", frame)
		if ev["session_id"] != nil && ev["event_id"] != nil {
			sawEnvelopedEvent = true
		}
	}
	require.True(t, sawEnvelopedEvent, "expected at least one stream event tagged with envelope fields")
}

func TestApprovalResolutionMergesIntoCheckpointBeforeNextTurn(t *testing.T) {
	build := cachingBuilder(func(req RunRequest) orchestrator.BuildConfig {
		return orchestrator.BuildConfig{
			Kind:       req.Agent,
			ThreadID:   req.ThreadID,
			LLM:        orchestrator.LLMConfig{Client: mock.WithNoToolCalls("turn reply")},
			Checkpoint: orchestrator.CheckpointConfig{Enabled: true},
		}
	})
	s := NewServer(build)
	srv := httptest.NewServer(s)
	defer srv.Close()

	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(RunRequest{Agent: orchestrator.AgentReact, ThreadID: "thread-1", Message: "hi"}))
	first := readUntilTerminal(t, conn)
	require.Equal(t, "turn reply", first["reply"])

	require.NoError(t, conn.WriteJSON(RunRequest{
		Agent:          orchestrator.AgentReact,
		ThreadID:       "thread-1",
		ApprovalResult: &ApprovalResolution{Approved: true, Reason: "looks fine"},
		Message:        "continue",
	}))
	second := readUntilTerminal(t, conn)
	require.Equal(t, "turn reply", second["reply"])
}
