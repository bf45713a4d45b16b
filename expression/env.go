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

package expression

import "github.com/eventflux-io/engine-sub003/record"

// Schema describes how to flatten a StateEvent into an expr-lang
// evaluation environment: the ordered attribute names of each chain's
// positional Values.
type Schema struct {
	Chains    []string
	AttrNames map[string][]string
}

// SingleStream builds a Schema for a plain one-stream expression (a
// filter's WHERE clause, a window's sort key) where attribute names are
// referenced unqualified.
func SingleStream(attrNames []string) Schema {
	return Schema{Chains: []string{""}, AttrNames: map[string][]string{"": attrNames}}
}

// BuildEnv flattens a StateEvent into the map expr-lang evaluates against.
// A single anonymous chain ("") flattens straight into the top-level map
// so unqualified field names resolve directly; named chains (join/pattern
// sides) nest under their chain name so expressions can write "L.amount".
func BuildEnv(se *record.StateEvent, schema Schema) map[string]interface{} {
	env := make(map[string]interface{})
	for _, chain := range schema.Chains {
		ev := se.Chain(chain)
		names := schema.AttrNames[chain]
		sub := chainEnv(ev, names)
		if chain == "" {
			for k, v := range sub {
				env[k] = v
			}
			continue
		}
		env[chain] = sub
	}
	return env
}

func chainEnv(ev *record.StreamEvent, names []string) map[string]interface{} {
	sub := make(map[string]interface{}, len(names))
	if ev == nil {
		for _, n := range names {
			sub[n] = nil
		}
		return sub
	}
	for i, n := range names {
		sub[n] = ToNative(ev.At(i))
	}
	if ev.Attrs != nil {
		for k, v := range ev.Attrs {
			sub[k] = ToNative(v)
		}
	}
	return sub
}
