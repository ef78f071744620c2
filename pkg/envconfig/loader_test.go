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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDecodesNestedYAMLIntoConfig(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
agent:
  kind: tot
  persona: "You are a planner."
llm:
  provider: openai
  model: gpt-4o-mini
tools:
  working_folder: /tmp/work
  enable_web: true
checkpoint:
  enabled: true
  sqlite_path: /tmp/checkpoints.db
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "tot", cfg.Agent.Kind)
	assert.Equal(t, "You are a planner.", cfg.Agent.Persona)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "/tmp/work", cfg.Tools.WorkingFolder)
	assert.True(t, cfg.Tools.EnableWeb)
	assert.True(t, cfg.Checkpoint.Enabled)
	assert.Equal(t, "/tmp/checkpoints.db", cfg.Checkpoint.SQLitePath)
}

func TestLoadExpandsEnvVarsInFileValues(t *testing.T) {
	t.Setenv("ENVCONFIG_TEST_API_KEY", "sk-from-env")
	path := writeConfigFile(t, `
llm:
  api_key: "${ENVCONFIG_TEST_API_KEY}"
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
}

func TestLoadMissingFileFallsBackToEmptyDocument(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "does-not-exist.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestLoadEmptyPathSkipsFileEntirely(t *testing.T) {
	cfg, err := (&Loader{}).Load()
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestWatchReloadsOnFileWrite(t *testing.T) {
	path := writeConfigFile(t, "log_level: info\n")
	loader := NewLoader(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	go func() {
		_ = loader.Watch(ctx, func(cfg *Config, err error) {
			if err == nil {
				changes <- cfg
			}
		})
	}()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, "debug", cfg.LogLevel)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
