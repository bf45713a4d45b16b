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

package aggregator

import (
	"strings"

	"github.com/eventflux-io/engine-sub003/record"
)

// OutputSpec names one aggregator vector slot: the source attribute it
// reads and the aggregator kind to run over it (by Builtins registry
// name).
type OutputSpec struct {
	Name       string // the output attribute name
	Kind       string // "count", "sum", "avg", "min", "max", "stddev", "distinctcount"
	SourceAttr int    // positional index into the triggering StreamEvent's Values
}

// groupBucket is the per-key state: one aggregator instance per
// OutputSpec, plus the CURRENT/EXPIRED observation counters that decide
// when the bucket becomes empty and eligible for GC (§4.5).
type groupBucket struct {
	aggs        []Aggregator
	liveCurrent int64          // CURRENT observed minus matching EXPIRED observed
	keyAttrs    []record.Value // captured once, from the event that opened this bucket
}

// Grouped implements the GROUP BY hash-keyed aggregator-map of §4.5: a
// key -> per-key aggregator vector, fed `add` on CURRENT input and
// `remove` on EXPIRED input, garbage collecting buckets once their
// CURRENT/EXPIRED observations balance back to zero.
type Grouped struct {
	specs   []OutputSpec
	keyAttrs []int // positional attribute indices forming the GROUP BY key; empty means one global group
	buckets map[string]*groupBucket
}

// NewGrouped builds a grouped aggregator. keyAttrs may be empty for an
// ungrouped aggregation (a single implicit group).
func NewGrouped(specs []OutputSpec, keyAttrs []int) *Grouped {
	return &Grouped{specs: specs, keyAttrs: keyAttrs, buckets: make(map[string]*groupBucket)}
}

func (g *Grouped) keyFor(ev *record.StreamEvent) string {
	if len(g.keyAttrs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, idx := range g.keyAttrs {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(distinctKey(ev.At(idx)))
	}
	return b.String()
}

func (g *Grouped) newBucket(ev *record.StreamEvent) *groupBucket {
	aggs := make([]Aggregator, len(g.specs))
	for i, spec := range g.specs {
		factory, ok := Builtins.Get(spec.Kind)
		if !ok {
			continue
		}
		aggs[i] = factory()
	}
	bucket := &groupBucket{aggs: aggs}
	for _, idx := range g.keyAttrs {
		bucket.keyAttrs = append(bucket.keyAttrs, ev.At(idx))
	}
	return bucket
}

// Row is one GROUP BY output: the key's attribute values followed by the
// aggregator vector's current values, in OutputSpec order, plus the
// Type/Timestamp the emitting event should carry.
type Row struct {
	KeyAttrs  []record.Value
	Values    []record.Value
	Timestamp int64
	Type      record.EventType
}

func (g *Grouped) rowFromBucket(bucket *groupBucket, ts int64, typ record.EventType) Row {
	row := Row{KeyAttrs: bucket.keyAttrs, Values: make([]record.Value, len(bucket.aggs)), Timestamp: ts, Type: typ}
	for i, agg := range bucket.aggs {
		if agg != nil {
			row.Values[i] = agg.Value()
		} else {
			row.Values[i] = record.Null()
		}
	}
	return row
}

// Apply feeds one input event through the grouped aggregator, returning
// the row for the key it touched (per §4.5's "a row is emitted per
// distinct key on every input that affects that key"). ok is always
// true: even when this same call GC'd the bucket (an EXPIRED that
// exactly balances the bucket's last CURRENT), the caller still receives
// that final row's values before the bucket disappears.
//
// Apply is the single-event primitive; callers driving a batch of
// records produced by one window trigger (a CURRENT paired with its own
// evicted EXPIRED, or a tumbling batch's full CURRENT/EXPIRED run) want
// ApplyBatch instead, which collapses such a batch down to the settled
// row per §4.5's emission policy rather than one row per internal
// add/remove.
func (g *Grouped) Apply(ev *record.StreamEvent) (Row, bool) {
	key := g.keyFor(ev)
	bucket, ok := g.buckets[key]
	if !ok {
		bucket = g.newBucket(ev)
		g.buckets[key] = bucket
	}

	for i, spec := range g.specs {
		if bucket.aggs[i] == nil {
			continue
		}
		v := ev.At(spec.SourceAttr)
		if ev.Type == record.Expired {
			bucket.aggs[i].Remove(v)
		} else {
			bucket.aggs[i].Add(v)
		}
	}

	if ev.Type == record.Current {
		bucket.liveCurrent++
	} else {
		bucket.liveCurrent--
	}

	row := g.rowFromBucket(bucket, ev.Timestamp, ev.Type)

	if bucket.liveCurrent <= 0 {
		delete(g.buckets, key)
	}
	return row, true
}

// ApplyBatch feeds a batch of events — everything a single window
// trigger produced — through the grouped aggregator in order, but
// returns at most one settled Row per distinct key touched, per §4.5's
// "a row is emitted per distinct key on every input" where one window
// trigger is one input:
//
//   - If the key's bucket is still live (not GC'd) once the whole batch
//     has been applied, the settled row is its final state, tagged
//     Current.
//   - Otherwise the bucket closed during this batch. If this batch
//     contributed at least one of the bucket's own CURRENT events, the
//     settled row is the bucket's state right after the last such
//     CURRENT — the peak this batch actually added — tagged Expired to
//     mark the group as closed.
//   - Otherwise this batch only retracted content a prior batch already
//     reported (a stale EXPIRED with nothing new for this key), and no
//     row is emitted for that key at all.
//
// Keys are returned in the order they were first touched within the
// batch, per §4.5's "output ordering per input record is by the order
// keys were touched by that input".
func (g *Grouped) ApplyBatch(evs []*record.StreamEvent) []Row {
	type keyState struct {
		peak          Row
		sawCurrent    bool
		lastTimestamp int64
	}

	touched := make(map[string]*keyState)
	var order []string

	for _, ev := range evs {
		key := g.keyFor(ev)
		row, _ := g.Apply(ev)

		ks, ok := touched[key]
		if !ok {
			ks = &keyState{}
			touched[key] = ks
			order = append(order, key)
		}
		ks.lastTimestamp = ev.Timestamp
		if ev.Type == record.Current {
			ks.peak = row
			ks.sawCurrent = true
		}
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		ks := touched[key]
		if bucket, live := g.buckets[key]; live {
			rows = append(rows, g.rowFromBucket(bucket, ks.lastTimestamp, record.Current))
			continue
		}
		if ks.sawCurrent {
			peak := ks.peak
			peak.Type = record.Expired
			rows = append(rows, peak)
		}
	}
	return rows
}

// Len reports the number of live (non-GC'd) groups, for tests and
// monitoring.
func (g *Grouped) Len() int { return len(g.buckets) }
