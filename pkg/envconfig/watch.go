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

package envconfig

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs Load whenever Path changes on disk, invoking onChange
// with the newly decoded Config (or a non-nil error if the reload
// failed, in which case the prior Config should be kept). Watch blocks
// until ctx is cancelled, so callers typically invoke it via `go`.
// A Loader with an empty Path has nothing to watch and returns nil
// immediately.
func (l *Loader) Watch(ctx context.Context, onChange func(*Config, error)) error {
	if l.Path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(l.Path); err != nil {
		slog.Warn("envconfig: not watching, add failed", "path", l.Path, "error", err)
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := l.Load()
			if err != nil {
				slog.Warn("envconfig: reload failed", "path", l.Path, "error", err)
				onChange(nil, err)
				continue
			}
			slog.Info("envconfig: reloaded", "path", l.Path)
			onChange(cfg, nil)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("envconfig: watch error", "path", l.Path, "error", err)
		}
	}
}
