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

package processor

import (
	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/record"
)

// filterChain is the sole chain name a Filter's Condition is compiled
// against: an unqualified WHERE clause over the one stream flowing
// through it.
const filterChain = ""

// Filter evaluates a WHERE-clause Condition against every input event,
// passing CURRENT and EXPIRED events through unchanged when the
// condition holds and dropping them otherwise. An EXPIRED twin of a
// previously passed CURRENT event must be evaluated against the same
// condition result the CURRENT evaluation produced in order to preserve
// the eviction invariant; callers that need that guarantee (a Filter
// downstream of a window) rely on the condition being deterministic over
// the same attribute values, which holds since Filter carries no state of
// its own.
type Filter struct {
	cond *condition.Condition
}

// NewFilter compiles source (expr-lang syntax) against schema and
// returns a Filter ready to wire into a query graph.
func NewFilter(source string, schema expression.Schema) (*Filter, error) {
	cond, err := condition.Compile(source, schema)
	if err != nil {
		return nil, err
	}
	return &Filter{cond: cond}, nil
}

func (f *Filter) Kind() Kind { return FilterKind }

// Process keeps ev only when the compiled condition evaluates true.
func (f *Filter) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	se := record.NewStateEvent([]string{filterChain}).WithChain(filterChain, ev)
	if !f.cond.Evaluate(se) {
		return nil, nil
	}
	return []*record.StreamEvent{ev}, nil
}
