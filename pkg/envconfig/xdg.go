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
	"os"
	"path/filepath"
)

const appDirName = "loomgraph"

// DefaultConfigPath returns $XDG_CONFIG_HOME/loomgraph/config.yaml, or
// ~/.config/loomgraph/config.yaml when XDG_CONFIG_HOME is unset, per the
// XDG base directory spec. Returns "" if the home directory can't be
// determined (no config file layer, process env/.env still apply).
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appDirName, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName, "config.yaml")
}
