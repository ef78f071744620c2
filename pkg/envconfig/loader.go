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
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Loader reads Config from a YAML file at Path, layered under process
// env and .env per package doc, with optional hot-reload via Watch.
type Loader struct {
	// Path is the XDG config file to read; NewLoader fills in
	// DefaultConfigPath() when given an empty path. An empty Path reads
	// no file at all, and a missing file is not an error: in both cases
	// Load falls back to an empty document, so process env / .env alone
	// can drive a Config.
	Path string
}

// NewLoader returns a Loader for path, or DefaultConfigPath() if path
// is empty.
func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultConfigPath()
	}
	return &Loader{Path: path}
}

// Load reads and decodes Config: .env/.env.local are loaded into the
// process environment first (without overwriting anything already
// set), then the YAML file at Path is read and every string value
// within it is expanded against the process environment, then the
// result is decoded into a Config using the "yaml" struct tags.
func (l *Loader) Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("envconfig: %w", err)
	}

	raw, err := l.readRawDocument()
	if err != nil {
		return nil, fmt.Errorf("envconfig: read %s: %w", l.Path, err)
	}

	expanded := expandEnvVarsInData(raw)

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Result:  cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("envconfig: build decoder: %w", err)
	}
	if err := decoder.Decode(expanded); err != nil {
		return nil, fmt.Errorf("envconfig: decode %s: %w", l.Path, err)
	}

	return cfg, nil
}

func (l *Loader) readRawDocument() (map[string]interface{}, error) {
	if l.Path == "" {
		return map[string]interface{}{}, nil
	}

	data, err := os.ReadFile(l.Path)
	if os.IsNotExist(err) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return doc, nil
}
