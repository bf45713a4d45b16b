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

package table

import (
	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/record"
)

// CompiledCondition is the backend-neutral result of compiling an
// expression against a table's schema (§4.9's compile_condition): Key,
// when non-empty, names an exact EncodeKey match eligible for O(1)
// index lookup; Eval is always available as a residual row filter
// (applied within a matching key's bucket to handle duplicate keys, or
// as the sole test when Key is empty and a full scan is required).
type CompiledCondition struct {
	Key  string
	Eval *condition.Condition
}

// KeyEquality builds a CompiledCondition for an exact-key lookup, with
// no residual filter: every row sharing the key is a match.
func KeyEquality(key string) *CompiledCondition { return &CompiledCondition{Key: key} }

// Scan builds a CompiledCondition with no usable index key: every row
// is tested against cond in insertion order.
func Scan(cond *condition.Condition) *CompiledCondition { return &CompiledCondition{Eval: cond} }

// Table is the thread-safe contract of §4.9, common to the in-memory,
// cache and delegating variants.
type Table interface {
	Insert(row *record.StreamEvent) error
	Find(cc *CompiledCondition) []*record.StreamEvent
	Contains(cc *CompiledCondition) bool
	Update(cc *CompiledCondition, apply func(*record.StreamEvent)) int
	Delete(cc *CompiledCondition) int

	// FindRowsForJoin implements §4.9's find_rows_for_join(event,
	// condition): an enrichment join's point lookup or range scan,
	// driven by the same index-or-scan machinery as Find, but testing
	// each candidate row together with ev rather than alone, since a
	// join's ON clause spans both the driving stream and the table.
	FindRowsForJoin(ev *record.StreamEvent, cc *CompiledCondition) []*record.StreamEvent

	// Rows returns every live row (insertion order), for the rare ON
	// clause find_rows_for_join can't narrow by key at all (cc.Key
	// empty) and callers needing the full live set directly.
	Rows() []*record.StreamEvent
}

// JoinDrivingChain and JoinTableChain name the two chains an enrichment
// join's combined StateEvent exposes to its ON clause: the driving
// stream record and the candidate table row, matching the schema
// runtime.compileTableJoinQuery compiles the ON expression against.
const (
	JoinDrivingChain = "S"
	JoinTableChain   = "T"
)

// wrapRow lifts a single table row into the single-chain StateEvent
// shape condition.Condition evaluates against, matching how a WHERE
// clause over an unqualified single stream is bound (expression.
// SingleStream's anonymous chain).
func wrapRow(row *record.StreamEvent) *record.StateEvent {
	return &record.StateEvent{Chains: []string{""}, Events: []*record.StreamEvent{row}, Type: record.Current}
}

// wrapJoinRow combines a driving event and a candidate table row into
// the two-chain StateEvent an enrichment join's ON clause evaluates
// against.
func wrapJoinRow(ev, row *record.StreamEvent) *record.StateEvent {
	se := record.NewStateEvent([]string{JoinDrivingChain, JoinTableChain})
	return se.WithChain(JoinDrivingChain, ev).WithChain(JoinTableChain, row)
}

func rowKeyFor(keyAttrs []int, row *record.StreamEvent) string {
	if len(keyAttrs) == 0 {
		return ""
	}
	vals := make([]record.Value, len(keyAttrs))
	for i, a := range keyAttrs {
		vals[i] = row.At(a)
	}
	return EncodeKey(vals...)
}

// scanIndices finds the positions in rows matching cc, using index for
// an O(1) bucket lookup when cc names a key and falling back to a full
// scan otherwise. Tombstoned (nil) slots are skipped. wrap builds the
// StateEvent a candidate row is tested against — Find/Update/Delete/
// Contains wrap a row alone (wrapRow); FindRowsForJoin wraps the row
// alongside its driving event instead (wrapJoinRow), so a two-chain ON
// clause can see both sides.
func scanIndices(rows []*record.StreamEvent, index map[string][]int, cc *CompiledCondition, wrap func(*record.StreamEvent) *record.StateEvent) []int {
	var out []int
	if cc.Key != "" && index != nil {
		for _, idx := range index[cc.Key] {
			if rows[idx] == nil {
				continue
			}
			if cc.Eval == nil || cc.Eval.Evaluate(wrap(rows[idx])) {
				out = append(out, idx)
			}
		}
		return out
	}
	for i, row := range rows {
		if row == nil {
			continue
		}
		if cc.Eval == nil || cc.Eval.Evaluate(wrap(row)) {
			out = append(out, i)
		}
	}
	return out
}

func removeIndexEntry(index map[string][]int, key string, idx int) {
	entries := index[key]
	for i, e := range entries {
		if e == idx {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(index, key)
	} else {
		index[key] = entries
	}
}
