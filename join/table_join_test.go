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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/table"
)

type fakeTable struct{ rows []*record.StreamEvent }

func (f *fakeTable) Rows() []*record.StreamEvent { return f.rows }

// FindRowsForJoin is a plain scan (no index): enough to exercise
// TableJoin.OnStream without pulling in a real table.Table.
func (f *fakeTable) FindRowsForJoin(ev *record.StreamEvent, cc *table.CompiledCondition) []*record.StreamEvent {
	var out []*record.StreamEvent
	for _, row := range f.rows {
		se := record.NewStateEvent([]string{chainS, chainT})
		se = se.WithChain(chainS, ev).WithChain(chainT, row)
		if cc.Eval == nil || cc.Eval.Evaluate(se) {
			out = append(out, row)
		}
	}
	return out
}

func newTableJoinCond(t *testing.T) *condition.Condition {
	t.Helper()
	schema := expression.Schema{
		Chains: []string{chainS, chainT},
		AttrNames: map[string][]string{
			chainS: {"id"},
			chainT: {"id", "name"},
		},
	}
	cond, err := condition.Compile("S.id == T.id", schema)
	require.NoError(t, err)
	return cond
}

func TestTableJoinEnrichesOnMatch(t *testing.T) {
	table := &fakeTable{rows: []*record.StreamEvent{
		record.NewStreamEvent("U", 0, []record.Value{record.Int32(1), record.String("A")}),
		record.NewStreamEvent("U", 0, []record.Value{record.Int32(2), record.String("B")}),
	}}
	j := NewTableJoin(table, newTableJoinCond(t), nil)

	out := j.OnStream(record.NewStreamEvent("O", 1, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.Equal(t, record.Current, out[0].Type)
	require.Equal(t, "A", out[0].Chain(chainT).At(1).AsString())
}

func TestTableJoinEmitsNothingWithoutMatch(t *testing.T) {
	table := &fakeTable{rows: []*record.StreamEvent{
		record.NewStreamEvent("U", 0, []record.Value{record.Int32(9), record.String("Z")}),
	}}
	j := NewTableJoin(table, newTableJoinCond(t), nil)

	out := j.OnStream(record.NewStreamEvent("O", 1, []record.Value{record.Int32(1)}))
	require.Empty(t, out)
}

func TestTableJoinPropagatesExpiredFromWindowedDrivingStream(t *testing.T) {
	table := &fakeTable{rows: []*record.StreamEvent{
		record.NewStreamEvent("U", 0, []record.Value{record.Int32(1), record.String("A")}),
	}}
	j := NewTableJoin(table, newTableJoinCond(t), nil)

	ev := record.NewStreamEvent("O", 1, []record.Value{record.Int32(1)}).AsExpired()
	out := j.OnStream(ev)
	require.Len(t, out, 1)
	require.Equal(t, record.Expired, out[0].Type)
}
