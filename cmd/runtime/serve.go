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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/loomgraph/runtime/pkg/envconfig"
	"github.com/loomgraph/runtime/pkg/orchestrator"
	"github.com/loomgraph/runtime/pkg/telemetry"
	"github.com/loomgraph/runtime/pkg/transport"
)

// ServeCmd starts the WebSocket run server (pkg/transport) over the
// config file's LLM/tools/checkpoint/memory settings, dispatching each
// RunRequest to the pattern graph it names.
type ServeCmd struct {
	Addr string `help:"Address to listen on." default:":8080"`

	MetricsEnabled bool    `name:"metrics" help:"Expose Prometheus metrics at /metrics."`
	TracingEnabled bool    `name:"tracing" help:"Enable OpenTelemetry tracing."`
	SamplingRate   float64 `name:"sampling-rate" help:"Trace sampling rate, 0..1." default:"1"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	telCfg := &telemetry.Config{
		Enabled:      c.MetricsEnabled || c.TracingEnabled,
		SamplingRate: c.SamplingRate,
	}
	telCfg.SetDefaults()
	telMgr, err := telemetry.NewManager(telCfg)
	if err != nil {
		return fmt.Errorf("build telemetry manager: %w", err)
	}
	defer func() {
		if err := telMgr.Shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	build := threadCachingBuilder(cfg)
	srv := transport.NewServer(build)

	mux := http.NewServeMux()
	if c.MetricsEnabled {
		mux.Handle("/metrics", telMgr.MetricsHandler())
	}
	mux.Handle("/", srv)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	slog.Info("runtime server ready", "addr", c.Addr)
	fmt.Printf("\nrun server listening on %s (WebSocket /run, health /health)\n", c.Addr)

	httpSrv := &http.Server{Addr: c.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		return httpSrv.Shutdown(context.Background())
	}
}

// threadCachingBuilder builds one Orchestrator per thread and reuses it
// across requests on the same thread, since orchestrator.Build assembles
// a fresh checkpoint store on every call: without caching, an approval
// resolution or a resumed conversation on the second RunRequest would
// never see the first request's checkpoint (see pkg/transport tests).
// Requests with no ThreadID get a random one and are never cached, each
// getting a fresh, un-resumable Orchestrator.
func threadCachingBuilder(base *envconfig.Config) transport.Builder {
	var mu sync.Mutex
	cache := make(map[string]*orchestrator.Orchestrator)

	return func(ctx context.Context, req transport.RunRequest) (*orchestrator.Orchestrator, error) {
		mu.Lock()
		defer mu.Unlock()

		threadID := req.ThreadID
		if threadID != "" {
			if o, ok := cache[threadID]; ok {
				return o, nil
			}
		}

		cfg := *base
		cfg.Agent.Kind = string(req.Agent)
		cfg.Agent.GotAdaptive = req.GotAdaptive
		cfg.Verbose = req.Verbose
		if req.WorkingFolder != "" {
			cfg.Tools.WorkingFolder = req.WorkingFolder
		}

		id := threadID
		if id == "" {
			id = uuid.NewString()
		}

		buildCfg, err := toBuildConfig(&cfg, id, req.WorkspaceID)
		if err != nil {
			return nil, err
		}

		o, err := orchestrator.Build(ctx, buildCfg)
		if err != nil {
			return nil, err
		}

		if threadID != "" {
			cache[threadID] = o
		}
		return o, nil
	}
}
