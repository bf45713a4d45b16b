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
	"github.com/eventflux-io/engine-sub003/aggregator"
	"github.com/eventflux-io/engine-sub003/record"
)

// Aggregate wraps a grouped aggregator (§4.5): every input touches a
// GROUP BY bucket, but a row only leaves the stage once per distinct key
// per trigger, carrying the settled CURRENT/EXPIRED tag ApplyBatch
// assigns it — not one row per internal add/remove a window batch
// happened to produce.
type Aggregate struct {
	g        *aggregator.Grouped
	output   string
	keyNames []string
	outNames []string
}

// NewAggregate builds an Aggregate emitting rows on stream output.
// keyNames and outNames name the GROUP BY key attributes and the
// aggregator vector's attributes respectively, attached to the emitted
// event's Attrs map (positional Values hold the same data in KeyAttrs++
// Values order, for a downstream Project compiled against positional
// indices).
func NewAggregate(output string, g *aggregator.Grouped, keyNames, outNames []string) *Aggregate {
	return &Aggregate{g: g, output: output, keyNames: keyNames, outNames: outNames}
}

func (a *Aggregate) Kind() Kind { return AggregateKind }

// Process satisfies the Processor interface for a single event; runStages
// instead calls ProcessBatch directly on the whole set of records one
// window trigger produced, so a CURRENT/EXPIRED pair from the same
// eviction settles to one row rather than two.
func (a *Aggregate) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	return a.ProcessBatch([]*record.StreamEvent{ev})
}

// ProcessBatch applies every record in evs to the grouped aggregator, in
// order, then emits the settled row §4.5 calls for per distinct key
// touched — see aggregator.Grouped.ApplyBatch for the settlement rule.
func (a *Aggregate) ProcessBatch(evs []*record.StreamEvent) ([]*record.StreamEvent, error) {
	rows := a.g.ApplyBatch(evs)
	out := make([]*record.StreamEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, a.eventFromRow(row))
	}
	return out, nil
}

func (a *Aggregate) eventFromRow(row aggregator.Row) *record.StreamEvent {
	values := make([]record.Value, 0, len(row.KeyAttrs)+len(row.Values))
	values = append(values, row.KeyAttrs...)
	values = append(values, row.Values...)

	attrs := make(map[string]record.Value, len(a.keyNames)+len(a.outNames))
	for i, n := range a.keyNames {
		if i < len(row.KeyAttrs) {
			attrs[n] = row.KeyAttrs[i]
		}
	}
	for i, n := range a.outNames {
		if i < len(row.Values) {
			attrs[n] = row.Values[i]
		}
	}

	return &record.StreamEvent{
		Stream:    a.output,
		Timestamp: row.Timestamp,
		Type:      row.Type,
		Values:    values,
		Attrs:     attrs,
	}
}
