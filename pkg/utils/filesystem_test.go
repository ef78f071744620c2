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

package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureParentDirCreatesMissingDirectories(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "twice", "checkpoints.db")

	if err := EnsureParentDir(target); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Dir(target))
	if err != nil {
		t.Fatalf("stat parent dir: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be a directory", filepath.Dir(target))
	}
}

func TestEnsureParentDirIsNoopForBareFilename(t *testing.T) {
	if err := EnsureParentDir("checkpoints.db"); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}
}
