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

package condition

import (
	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/record"
)

// Condition is a compiled boolean predicate evaluated against a
// StateEvent: a WHERE clause, a join ON clause, a HAVING clause, or a
// pattern's inline filter. It binds an expression.Executor to the
// Schema describing how to flatten the StateEvent the predicate runs
// against.
type Condition struct {
	exec   *expression.Executor
	schema expression.Schema
}

// Compile compiles source against schema. source follows expr-lang
// syntax; unqualified names resolve against the schema's sole anonymous
// chain, qualified "L.field"/"R.field" names against named chains.
func Compile(source string, schema expression.Schema) (*Condition, error) {
	exec, err := expression.CompileBool(source)
	if err != nil {
		return nil, err
	}
	return &Condition{exec: exec, schema: schema}, nil
}

// Evaluate runs the predicate. An unmatched OUTER-join chain or an
// unbound pattern slot resolves its fields to nil, which is_null/
// is_not_null and comparison operators can test directly.
func (c *Condition) Evaluate(se *record.StateEvent) bool {
	env := expression.BuildEnv(se, c.schema)
	return c.exec.EvalBool(env)
}
