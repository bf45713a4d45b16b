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

import "github.com/eventflux-io/engine-sub003/record"

// chainSlot names one flattened output column: the chain it is sourced
// from and its positional index within that chain's event.
type chainSlot struct {
	chain string
	index int
}

// flattenSchema builds the positional layout a composite StateEvent
// (join, pattern) is flattened into: every chain's attributes in order,
// chains themselves in the given order. A NULL-padded (unmatched OUTER
// side, unbound pattern step) chain resolves every slot to NULL, since
// StateEvent.Chain("").At(i) degrades through a nil *StreamEvent safely.
func flattenSchema(chains []string, widths []int) []chainSlot {
	var slots []chainSlot
	for i, c := range chains {
		for k := 0; k < widths[i]; k++ {
			slots = append(slots, chainSlot{chain: c, index: k})
		}
	}
	return slots
}

// flatten projects a composite StateEvent into a single StreamEvent
// tagged output, in slots order, so the rest of a query's chain (WHERE/
// GROUP BY/SELECT) can keep operating on plain StreamEvents.
func flatten(se *record.StateEvent, output string, slots []chainSlot) *record.StreamEvent {
	values := make([]record.Value, len(slots))
	for i, s := range slots {
		values[i] = se.Chain(s.chain).At(s.index)
	}
	return &record.StreamEvent{
		Stream:    output,
		Timestamp: compositeTimestamp(se),
		Type:      se.Type,
		Values:    values,
	}
}

// NewFlattener exposes the same composite-to-StreamEvent projection used
// internally by StreamJoinSide/TableJoin/Pattern, for callers outside this
// package that receive composites through a side channel rather than a
// Processor.Process call — namely a StreamJoin's own SetCallback, which
// carries the timer-driven window emissions (timeBatch, sliding) that
// never pass through StreamJoinSide.Process.
func NewFlattener(output string, chains []string, widths []int) func(*record.StateEvent) *record.StreamEvent {
	slots := flattenSchema(chains, widths)
	return func(se *record.StateEvent) *record.StreamEvent {
		return flatten(se, output, slots)
	}
}

// compositeTimestamp picks the latest timestamp among a composite's
// bound chains, since a NULL-padded side carries none.
func compositeTimestamp(se *record.StateEvent) int64 {
	var ts int64
	for _, ev := range se.Events {
		if ev != nil && ev.Timestamp > ts {
			ts = ev.Timestamp
		}
	}
	return ts
}
