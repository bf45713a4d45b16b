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

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/eventflux-io/engine-sub003/record"
)

// Executor is a compiled scalar or boolean expression, evaluated
// repeatedly against different StateEvent-derived environments.
type Executor struct {
	source  string
	program *vm.Program
}

// baseOptions mirrors the teacher's condition package: undefined
// variables (an unmatched OUTER join side, a pattern slot not yet bound)
// evaluate to nil rather than erroring, and a handful of CEP-flavored
// helper functions are always in scope.
func baseOptions() []expr.Option {
	return []expr.Option{
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, fmt.Errorf("like_match requires string parameters")
			}
			return matchesLikePattern(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_null requires 1 parameter")
			}
			return params[0] == nil, nil
		}),
		expr.Function("is_not_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_not_null requires 1 parameter")
			}
			return params[0] != nil, nil
		}),
		expr.AllowUndefinedVariables(),
	}
}

// Compile compiles a scalar expression (a projection expression, a CASE
// branch, a sort key). The result may be of any type.
func Compile(source string) (*Executor, error) {
	program, err := expr.Compile(source, baseOptions()...)
	if err != nil {
		return nil, err
	}
	return &Executor{source: source, program: program}, nil
}

// CompileBool compiles a boolean expression (WHERE/ON/HAVING/pattern
// filter), forcing the result through expr.AsBool the way the teacher's
// ExprCondition does.
func CompileBool(source string) (*Executor, error) {
	opts := append(baseOptions(), expr.AsBool())
	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return &Executor{source: source, program: program}, nil
}

func (e *Executor) Source() string { return e.source }

// Eval runs the expression and widens the result into a record.Value.
func (e *Executor) Eval(env map[string]interface{}) (record.Value, error) {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return record.Null(), err
	}
	return FromNative(out), nil
}

// EvalBool runs a CompileBool-compiled expression. Per §7's expression
// error policy, a runtime evaluation error (nil field dereference inside
// a custom function, a type surprise that escaped static checking)
// degrades the result to false rather than propagating.
func (e *Executor) EvalBool(env map[string]interface{}) bool {
	out, err := expr.Run(e.program, env)
	if err != nil {
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// matchesLikePattern implements SQL LIKE semantics: % matches any run of
// characters, _ matches exactly one.
func matchesLikePattern(text, pattern string) bool {
	return likeMatch(text, pattern, 0, 0)
}

func likeMatch(text, pattern string, ti, pi int) bool {
	if pi >= len(pattern) {
		return ti >= len(text)
	}
	if ti >= len(text) {
		for i := pi; i < len(pattern); i++ {
			if pattern[i] != '%' {
				return false
			}
		}
		return true
	}
	switch pattern[pi] {
	case '%':
		if likeMatch(text, pattern, ti, pi+1) {
			return true
		}
		for i := ti; i < len(text); i++ {
			if likeMatch(text, pattern, i+1, pi+1) {
				return true
			}
		}
		return false
	case '_':
		return likeMatch(text, pattern, ti+1, pi+1)
	default:
		return text[ti] == pattern[pi] && likeMatch(text, pattern, ti+1, pi+1)
	}
}
