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

// Package envconfig loads the runtime's configuration with layered
// precedence: process environment wins, a local .env file fills in
// anything unset, and an XDG-located YAML file supplies the rest, with
// ${VAR}-style expansion applied throughout. Loader.Watch additionally
// hot-reloads the YAML file on change, invoking a callback with the
// re-decoded Config.
package envconfig
