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

package checkpoint

import (
	"context"
	"log/slog"

	"github.com/loomgraph/runtime/pkg/state"
)

// Config controls whether and how often checkpoints are written.
type Config struct {
	// Enabled turns checkpointing on. Disabled by default for ephemeral
	// runs that don't need resumability.
	Enabled bool

	// EveryNNodes is carried through configuration but not consulted by
	// any writer: pkg/graph's executor checkpoints after every node
	// transition whenever a store and thread ID are set.
	EveryNNodes int
}

// SetDefaults fills unset fields with the runtime's defaults.
func (c *Config) SetDefaults() {
	if c.EveryNNodes == 0 {
		c.EveryNNodes = 1
	}
}

// ResumeCallback is invoked by RecoveryManager for each thread with a
// pending checkpoint found at startup. Implementations typically re-drive
// the orchestrator for that thread from the recovered state.
type ResumeCallback func(ctx context.Context, cp state.Checkpoint) error

// Manager orchestrates checkpoint writes and startup recovery over a
// Store. It is the integration surface pkg/orchestrator wires into a run.
type Manager struct {
	config   *Config
	store    Store
	recovery *RecoveryManager
}

// NewManager creates a Manager over the given store.
func NewManager(cfg *Config, store Store) *Manager {
	if cfg == nil {
		cfg = &Config{}
		cfg.SetDefaults()
	}
	return &Manager{
		config:   cfg,
		store:    store,
		recovery: NewRecoveryManager(store),
	}
}

// IsEnabled reports whether checkpointing is turned on.
func (m *Manager) IsEnabled() bool { return m.config.Enabled }

// Store returns the underlying checkpoint store, for pkg/graph.RunContext
// wiring (Store satisfies graph.CheckpointStore).
func (m *Manager) Store() Store { return m.store }

// SaveCheckpoint persists a checkpoint if checkpointing is enabled.
func (m *Manager) SaveCheckpoint(ctx context.Context, cp state.Checkpoint) error {
	if !m.IsEnabled() {
		return nil
	}
	if err := m.store.Put(ctx, cp); err != nil {
		slog.Warn("failed to save checkpoint", "thread_id", cp.ThreadID, "error", err)
		return err
	}
	return nil
}

// LatestCheckpoint returns the most recent checkpoint for a thread.
func (m *Manager) LatestCheckpoint(ctx context.Context, threadID, checkpointNS string) (*state.Checkpoint, error) {
	return m.store.GetLatest(ctx, threadID, checkpointNS)
}

// ClearCheckpoints removes every checkpoint for a thread on clean
// completion, so a finished run doesn't linger as "resumable".
func (m *Manager) ClearCheckpoints(ctx context.Context, threadID, checkpointNS string) error {
	if err := m.store.Delete(ctx, threadID, checkpointNS); err != nil {
		slog.Warn("failed to clear checkpoints", "thread_id", threadID, "error", err)
		return err
	}
	return nil
}

// SetResumeCallback configures how RecoverOnStartup resumes each pending
// thread it finds.
func (m *Manager) SetResumeCallback(cb ResumeCallback) {
	m.recovery.SetResumeCallback(cb)
}

// RecoverOnStartup scans the store for threads with a checkpoint and
// invokes the configured resume callback for each.
func (m *Manager) RecoverOnStartup(ctx context.Context, checkpointNS string) error {
	if !m.IsEnabled() {
		return nil
	}
	return m.recovery.RecoverPendingThreads(ctx, checkpointNS)
}
