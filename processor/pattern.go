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
	"github.com/eventflux-io/engine-sub003/pattern"
	"github.com/eventflux-io/engine-sub003/record"
)

// Pattern feeds every event belonging to any of a composite pattern's
// steps into a shared Matcher (§4.8) and flattens completed matches into
// plain StreamEvents, one slot per step in declaration order. A
// quantified step (`e{m,n}`) contributes only its most recently bound
// occurrence — the Matcher itself already collapses to one event per
// step name, so Pattern has no per-occurrence fan-out to perform.
//
// Matcher.Handle is internally mutex-guarded, so Pattern is safe to call
// concurrently from more than one input stream's delivery goroutine
// without an external lock.
type Pattern struct {
	m      *pattern.Matcher
	output string
	slots  []chainSlot
}

// NewPattern builds the Processor wrapping m. stepNames and stepWidths
// name each pattern step (in declaration order) and its stream's
// attribute count, laying out the flattened output schema.
func NewPattern(m *pattern.Matcher, output string, stepNames []string, stepWidths []int) *Pattern {
	return &Pattern{m: m, output: output, slots: flattenSchema(stepNames, stepWidths)}
}

func (p *Pattern) Kind() Kind { return PatternKind }

func (p *Pattern) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	composites := p.m.Handle(ev)
	out := make([]*record.StreamEvent, len(composites))
	for i, c := range composites {
		out[i] = flatten(c, p.output, p.slots)
	}
	return out, nil
}
