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

package join

import (
	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/table"
)

// TableSource is the surface a table-join needs from a table store:
// FindRowsForJoin for the narrowed (or, lacking a recognized key, full)
// candidate scan per §4.9's find_rows_for_join, Rows as the fallback for
// callers that just want the live set. table.Table satisfies this
// structurally.
type TableSource interface {
	FindRowsForJoin(ev *record.StreamEvent, cc *table.CompiledCondition) []*record.StreamEvent
	Rows() []*record.StreamEvent
}

const (
	chainS = table.JoinDrivingChain // driving stream
	chainT = table.JoinTableChain   // table
)

// TableJoin implements the enrichment-only stream-table join of §4.7: a
// stream record triggers find_rows_for_join against the table, and each
// match emits a composite of the same type as the driving event (so an
// EXPIRED from an upstream window propagates through with a fresh
// lookup against current table state, matching "no EXPIRED unless the
// driving stream is itself windowed").
type TableJoin struct {
	table  TableSource
	cond   *condition.Condition
	keyFor func(ev *record.StreamEvent) string
}

// NewTableJoin binds table as the enrichment side; cond is the ON
// expression compiled against a schema with chains "S" (stream) and "T"
// (table). keyFor, when non-nil, derives an index probe key from the
// driving event for an equi-join the planner recognized in the ON
// clause (the common "S.a == T.b" shape, with b the table's configured
// key); OnStream falls back to a full table scan when keyFor is nil or
// returns an empty key, same as an uncompilable WHERE/ON clause does for
// the table package's Find.
func NewTableJoin(table TableSource, cond *condition.Condition, keyFor func(ev *record.StreamEvent) string) *TableJoin {
	return &TableJoin{table: table, cond: cond, keyFor: keyFor}
}

// OnStream probes the table for ev via find_rows_for_join and returns
// one composite StateEvent per match, inner-join semantics: no match
// means no output.
func (j *TableJoin) OnStream(ev *record.StreamEvent) []*record.StateEvent {
	var key string
	if j.keyFor != nil {
		key = j.keyFor(ev)
	}
	cc := &table.CompiledCondition{Key: key, Eval: j.cond}

	rows := j.table.FindRowsForJoin(ev, cc)
	out := make([]*record.StateEvent, 0, len(rows))
	for _, row := range rows {
		se := record.NewStateEvent([]string{chainS, chainT})
		se = se.WithChain(chainS, ev).WithChain(chainT, row)
		se.Type = ev.Type
		out = append(out, se)
	}
	return out
}
