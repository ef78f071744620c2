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

// Package utils holds small filesystem helpers for storage backends
// that write to a local path (currently checkpoint/sqlite).
package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory containing path, if it does not
// already exist, so a backend opening a file there (sqlite, a log file)
// doesn't have to special-case a missing intermediate directory. A bare
// filename with no directory component is a no-op.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure parent dir %q: %w", dir, err)
	}
	return nil
}
