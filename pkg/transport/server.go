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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/loomgraph/runtime/pkg/graph"
	"github.com/loomgraph/runtime/pkg/orchestrator"
)

// Builder assembles the Orchestrator a RunRequest should run against.
// Implementations typically look up an existing thread's Orchestrator or
// call orchestrator.Build with the caller's base BuildConfig overlaid
// with the request's Agent/ThreadID/WorkingFolder/GotAdaptive/Verbose
// fields (see cmd/runtime). Kept out of this package so transport never
// needs to know how tool sources or LLM clients are assembled.
type Builder func(ctx context.Context, req RunRequest) (*orchestrator.Orchestrator, error)

// Server exposes Builder's orchestrators over a WebSocket endpoint using
// the request/response envelope defined in this package. One connection
// may carry many sequential RunRequests (e.g. a chat session sending one
// message at a time and, on an approval interrupt, a follow-up request
// carrying ApprovalResult).
type Server struct {
	router   chi.Router
	build    Builder
	upgrader websocket.Upgrader
}

// NewServer builds a Server that calls build to assemble an Orchestrator
// for each incoming RunRequest.
func NewServer(build Builder) *Server {
	s := &Server{
		build: build,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}

	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/run", s.handleRun)
	s.router = r

	return s
}

// ServeHTTP lets Server be mounted directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleRun upgrades the request to a WebSocket connection and drives
// RunRequest/RunStreamEvent/RunEnd/Error frames over it until the client
// disconnects.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("transport: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	for {
		var req RunRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				slog.Debug("transport: connection closed", "error", err)
			}
			return
		}
		s.handleRunRequest(r.Context(), conn, req)
	}
}

func (s *Server) handleRunRequest(ctx context.Context, conn *websocket.Conn, req RunRequest) {
	id := req.ThreadID
	if id == "" {
		id = uuid.NewString()
	}

	o, err := s.build(ctx, req)
	if err != nil {
		s.writeJSON(conn, ErrorMessage{ID: id, Error: err.Error()})
		return
	}

	if req.ApprovalResult != nil {
		if err := o.ResolveApproval(ctx, req.ApprovalResult.Approved, req.ApprovalResult.Reason); err != nil {
			s.writeJSON(conn, ErrorMessage{ID: id, Error: err.Error()})
			return
		}
	}

	env := NewEnvelopeState(id)

	result, err := o.Stream(ctx, req.Message, func(ev graph.Event) {
		wire := eventToWire(ev)
		env.Inject(wire)
		s.writeJSON(conn, RunStreamEvent{ID: id, Event: wire})
	})
	if err != nil {
		var interrupted *graph.Interrupted
		if errors.As(err, &interrupted) {
			s.writeJSON(conn, approvalRequiredEvent(id, env.ReplyEnvelope(), interrupted.Interrupt.ID, interrupted.Interrupt.Value))
			return
		}
		s.writeJSON(conn, ErrorMessage{ID: id, Error: err.Error()})
		return
	}

	reply := env.ReplyEnvelope()
	s.writeJSON(conn, RunEnd{
		ID:         id,
		Reply:      result.Reply,
		Usage:      result.Usage,
		TotalUsage: result.TotalUsage,
		SessionID:  reply.SessionID,
		NodeID:     reply.NodeID,
		EventID:    reply.EventID,
	})
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		slog.Debug("transport: write failed", "error", err)
	}
}

// ListenAndServe starts an HTTP server mounting Server at addr, blocking
// until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, s *Server) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("transport: listen: %w", err)
			return
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
