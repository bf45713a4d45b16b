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

/*
Package condition compiles the boolean predicates that gate filters,
join ON clauses, HAVING clauses, and pattern inline filters, binding the
expression package's compiled executor to a StateEvent schema so callers
work in terms of records rather than raw expr-lang environments.

	cond, err := condition.Compile("amount > 100 && symbol == \"IBM\"", expression.SingleStream(attrs))
	if cond.Evaluate(stateEvent) {
		...
	}

Qualified access ("L.amount", "R.amount") addresses join/pattern chains
by name; an unmatched OUTER side resolves to nil fields rather than
erroring, so is_null/is_not_null express NULL-padding checks directly.
*/
package condition
