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
	"github.com/eventflux-io/engine-sub003/window"
)

func newEqJoinCond(t *testing.T) *condition.Condition {
	t.Helper()
	schema := expression.Schema{
		Chains: []string{chainL, chainR},
		AttrNames: map[string][]string{
			chainL: {"id"},
			chainR: {"id"},
		},
	}
	cond, err := condition.Compile("L.id == R.id", schema)
	require.NoError(t, err)
	return cond
}

func newLengthWindow(t *testing.T, n int) window.Window {
	t.Helper()
	w, err := window.New(window.Config{Kind: window.Length, Length: n})
	require.NoError(t, err)
	return w
}

func TestInnerJoinEmitsOnlyOnMatch(t *testing.T) {
	left := newLengthWindow(t, 10)
	right := newLengthWindow(t, 10)
	j := New(Inner, left, right, newEqJoinCond(t))

	out := j.AddLeft(record.NewStreamEvent("L", 1, []record.Value{record.Int32(1)}))
	require.Empty(t, out)

	out = j.AddRight(record.NewStreamEvent("R", 2, []record.Value{record.Int32(2)}))
	require.Empty(t, out)

	out = j.AddRight(record.NewStreamEvent("R", 3, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.True(t, out[0].Complete())
	require.Equal(t, record.Current, out[0].Type)
}

func TestLeftJoinNullPadsThenWithdraws(t *testing.T) {
	left := newLengthWindow(t, 10)
	right := newLengthWindow(t, 10)
	j := New(Left, left, right, newEqJoinCond(t))

	out := j.AddLeft(record.NewStreamEvent("L", 1, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.False(t, out[0].Complete())
	require.Equal(t, record.Current, out[0].Type)
	require.Nil(t, out[0].Chain(chainR))

	out = j.AddRight(record.NewStreamEvent("R", 2, []record.Value{record.Int32(1)}))
	require.Len(t, out, 2)
	require.Equal(t, record.Expired, out[0].Type)
	require.Nil(t, out[0].Chain(chainR))
	require.Equal(t, record.Current, out[1].Type)
	require.True(t, out[1].Complete())
}

func TestRightJoinPreservesRightOnly(t *testing.T) {
	left := newLengthWindow(t, 10)
	right := newLengthWindow(t, 10)
	j := New(Right, left, right, newEqJoinCond(t))

	out := j.AddLeft(record.NewStreamEvent("L", 1, []record.Value{record.Int32(9)}))
	require.Empty(t, out)

	out = j.AddRight(record.NewStreamEvent("R", 2, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.False(t, out[0].Complete())
	require.Nil(t, out[0].Chain(chainL))
}

func TestFullOuterJoinPreservesBothSides(t *testing.T) {
	left := newLengthWindow(t, 10)
	right := newLengthWindow(t, 10)
	j := New(Full, left, right, newEqJoinCond(t))

	out := j.AddLeft(record.NewStreamEvent("L", 1, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.False(t, out[0].Complete())

	out = j.AddRight(record.NewStreamEvent("R", 2, []record.Value{record.Int32(5)}))
	require.Len(t, out, 1)
	require.False(t, out[0].Complete())
	require.Nil(t, out[0].Chain(chainL))
}

func TestLeftJoinWindowEvictionWithdrawsComposite(t *testing.T) {
	left := newLengthWindow(t, 1) // capacity 1: second insert evicts the first
	right := newLengthWindow(t, 10)
	j := New(Left, left, right, newEqJoinCond(t))

	out := j.AddRight(record.NewStreamEvent("R", 1, []record.Value{record.Int32(1)}))
	require.Empty(t, out)

	out = j.AddLeft(record.NewStreamEvent("L", 2, []record.Value{record.Int32(1)}))
	require.Len(t, out, 1)
	require.True(t, out[0].Complete())

	// Evicts the matched left record; the composite withdraws as EXPIRED.
	out = j.AddLeft(record.NewStreamEvent("L", 3, []record.Value{record.Int32(9)}))
	var sawExpiredMatch, sawNewPad bool
	for _, se := range out {
		if se.Complete() && se.Type == record.Expired {
			sawExpiredMatch = true
		}
		if !se.Complete() && se.Type == record.Current {
			sawNewPad = true
		}
	}
	require.True(t, sawExpiredMatch)
	require.True(t, sawNewPad)
}
