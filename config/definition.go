/*
 * Copyright 2025 The EventFlux Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StreamDef is one application-level stream definition: its attribute
// schema and any per-stream overrides (mapping strategy, WITH-clause
// config) that outrank the application default per §6.5.
type StreamDef struct {
	Name       string            `yaml:"name"`
	Attributes []AttributeDef    `yaml:"attributes"`
	With       map[string]string `yaml:"with"`
}

// AttributeDef names one positional schema attribute.
type AttributeDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// TableDef is one application-level table definition: its backing
// extension name (memory/cache/a registered delegating backend) and
// config understood by that extension.
type TableDef struct {
	Name      string            `yaml:"name"`
	Extension string            `yaml:"extension"`
	With      map[string]string `yaml:"with"`
}

// TriggerDef names a scheduled or one-shot trigger definition.
type TriggerDef struct {
	Name string `yaml:"name"`
	Cron string `yaml:"cron"`
}

// Definition is the full application-level configuration loadable from
// YAML: streams, tables, triggers and named secret references, honoring
// the precedence order of §6.5 (WITH clause > stream config > this
// application config > runtime defaults).
type Definition struct {
	Streams     []StreamDef         `yaml:"streams"`
	Tables      []TableDef          `yaml:"tables"`
	Triggers    []TriggerDef        `yaml:"triggers"`
	Secrets     map[string]string   `yaml:"secrets"` // name -> env var to resolve at start
	Performance PerformanceConfig   `yaml:"performance"`
}

// Load parses an application Definition from YAML bytes.
func Load(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("config: parse application definition: %w", err)
	}
	return &def, nil
}

// LoadFile reads and parses an application Definition from a YAML file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Load(data)
}

// ResolveSecrets resolves every named secret from the process
// environment, per §6.5 ("Secrets are referenced by name and resolved
// from the environment at start"). It returns an error naming the first
// secret whose environment variable is unset, since a missing secret at
// application start is a ConfigError (fail-fast).
func (d *Definition) ResolveSecrets() (map[string]string, error) {
	resolved := make(map[string]string, len(d.Secrets))
	for name, envVar := range d.Secrets {
		val, ok := os.LookupEnv(envVar)
		if !ok {
			return nil, fmt.Errorf("config: secret %q references unset environment variable %q", name, envVar)
		}
		resolved[name] = val
	}
	return resolved, nil
}

// StreamWith resolves a per-stream WITH-clause-equivalent option for
// streamName, returning the empty string when the stream or the key is
// absent. It implements only the stream-config layer of §6.5's
// precedence order: Definition carries no application-wide option map,
// so there is no application-level default to fall back to (the query's
// own WITH clause, highest of all, is applied by the caller before ever
// consulting this).
func (d *Definition) StreamWith(streamName, key string) string {
	for _, s := range d.Streams {
		if s.Name == streamName {
			if v, ok := s.With[key]; ok {
				return v
			}
			break
		}
	}
	return ""
}
