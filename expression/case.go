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

// WhenThen is one branch of a CASE expression.
type WhenThen struct {
	When *Executor
	Then *Executor
}

// SearchedCase evaluates CASE WHEN <bool-expr> THEN <expr> ... END: each
// When is a boolean condition, evaluated in order, first true wins.
type SearchedCase struct {
	Cases []WhenThen
	Else  *Executor
}

func (c *SearchedCase) Eval(env map[string]interface{}) (record.Value, error) {
	for _, ct := range c.Cases {
		if ct.When.EvalBool(env) {
			return ct.Then.Eval(env)
		}
	}
	if c.Else != nil {
		return c.Else.Eval(env)
	}
	return record.Null(), nil
}

// SimpleCase evaluates CASE <operand> WHEN <value-expr> THEN <expr> ...
// END. Per §4.12, NULL never matches: a NULL operand skips every WHEN and
// falls through to ELSE, and a WHEN branch whose own value evaluates to
// NULL is skipped rather than compared.
type SimpleCase struct {
	Operand *Executor
	Cases   []WhenThen
	Else    *Executor
}

func (c *SimpleCase) Eval(env map[string]interface{}) (record.Value, error) {
	operand, err := c.Operand.Eval(env)
	if err != nil {
		return record.Null(), err
	}
	if !operand.IsNull() {
		for _, ct := range c.Cases {
			whenVal, err := ct.When.Eval(env)
			if err != nil || whenVal.IsNull() {
				continue
			}
			if record.StrictEqual(operand, whenVal) {
				return ct.Then.Eval(env)
			}
		}
	}
	if c.Else != nil {
		return c.Else.Eval(env)
	}
	return record.Null(), nil
}
