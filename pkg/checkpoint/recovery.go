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
)

// RecoveryManager finds threads with a pending checkpoint at process
// startup and resumes each through a caller-supplied callback.
type RecoveryManager struct {
	store    Store
	resumeCb ResumeCallback
}

// NewRecoveryManager creates a recovery manager over a store.
func NewRecoveryManager(store Store) *RecoveryManager {
	return &RecoveryManager{store: store}
}

// SetResumeCallback sets the function invoked per recoverable thread.
func (r *RecoveryManager) SetResumeCallback(cb ResumeCallback) {
	r.resumeCb = cb
}

// RecoverPendingThreads lists every thread with at least one checkpoint
// in checkpointNS and, for each, loads its latest checkpoint and invokes
// the resume callback. Failures on one thread are logged and skipped so
// one corrupt checkpoint doesn't block recovery of the rest.
func (r *RecoveryManager) RecoverPendingThreads(ctx context.Context, checkpointNS string) error {
	if r.resumeCb == nil {
		return nil
	}
	threads, err := r.store.ListThreads(ctx)
	if err != nil {
		return err
	}
	recovered := 0
	for _, threadID := range threads {
		cp, err := r.store.GetLatest(ctx, threadID, checkpointNS)
		if err != nil {
			slog.Warn("failed to load checkpoint during recovery", "thread_id", threadID, "error", err)
			continue
		}
		if cp == nil || cp.NextNode == "" {
			continue
		}
		if err := r.resumeCb(ctx, *cp); err != nil {
			slog.Warn("failed to resume thread from checkpoint", "thread_id", threadID, "error", err)
			continue
		}
		recovered++
	}
	slog.Info("recovered pending threads", "count", recovered, "scanned", len(threads))
	return nil
}
