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

package pattern

import (
	"time"

	"github.com/eventflux-io/engine-sub003/condition"
)

// Mode names the top-level combinator joining a Pattern's Steps.
// Nested combinators are the known limitation of §4.8: only a single
// top-level Sequence, And, or Or is supported, never a mix.
type Mode int

const (
	Sequence Mode = iota // "->": steps matched strictly in order
	And                  // both steps matched, in either order
	Or                   // either step matches; completes the pattern
)

// Step is one `e = S` element: a binding variable name, the stream it
// listens to, an optional inline filter (evaluated against the
// candidate event alone, never downstream context), and a count
// quantifier (`e{m,n}`; Min=Max=1 for a plain unquantified step).
type Step struct {
	Name   string
	Stream string
	Filter *condition.Condition
	Min    int
	Max    int
}

// NewStep builds an unquantified step (exactly one occurrence).
func NewStep(name, stream string, filter *condition.Condition) Step {
	return Step{Name: name, Stream: stream, Filter: filter, Min: 1, Max: 1}
}

// Quantified returns a copy of s requiring between min and max
// consecutive occurrences (§4.8's `e{m,n}`).
func (s Step) Quantified(min, max int) Step {
	s.Min, s.Max = min, max
	return s
}

// Pattern is a compiled composite-event definition: the steps joined by
// Mode, EVERY continuous-restart, and an optional WITHIN time budget
// from the first to the last bound event.
type Pattern struct {
	Steps  []Step
	Mode   Mode
	Every  bool
	Within time.Duration
}
