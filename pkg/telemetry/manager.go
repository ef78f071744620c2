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

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
)

// Manager owns a run's Tracer and Metrics together, mirroring the
// teacher's single entry point for wiring both into a server or CLI.
type Manager struct {
	tracer  *Tracer
	metrics *Metrics
}

// NewManager builds a Manager from cfg. A nil cfg or a disabled Config
// returns a Manager whose Tracer is a no-op provider and whose Metrics
// is nil, so every Manager method is safe to call unconditionally.
func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil || !cfg.Enabled {
		tracer, _ := NewTracer(Config{Enabled: false})
		return &Manager{tracer: tracer}, nil
	}

	tracer, err := NewTracer(*cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: init tracer: %w", err)
	}

	c := *cfg
	c.SetDefaults()
	metrics := NewMetrics(c.Namespace)

	slog.Info("telemetry: initialized", "service_name", c.ServiceName, "sampling_rate", c.SamplingRate)

	return &Manager{tracer: tracer, metrics: metrics}, nil
}

// Tracer returns the run's Tracer. Never nil.
func (m *Manager) Tracer() *Tracer { return m.tracer }

// Metrics returns the run's Metrics, or nil if telemetry is disabled.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// MetricsHandler exposes the Prometheus registry for scraping.
func (m *Manager) MetricsHandler() http.Handler { return m.metrics.Handler() }

// Shutdown flushes the tracer.
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.tracer.Shutdown(ctx)
}
