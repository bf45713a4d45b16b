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

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsIndependent(t *testing.T) {
	e := NewStreamEvent("orders", 100, []Value{Int32(1), String("a")})
	e.SetAttr("total", Float64(9.5))

	c := e.Clone()
	c.Values[0] = Int32(99)
	c.SetAttr("total", Float64(0))

	assert.Equal(t, int64(1), e.Values[0].AsInt64())
	v, _ := e.Attr("total")
	assert.Equal(t, 9.5, v.AsFloat64())
}

func TestAsExpiredPreservesValuesChangesType(t *testing.T) {
	e := NewStreamEvent("orders", 100, []Value{Int32(1)})
	require.Equal(t, Current, e.Type)
	x := e.AsExpired()
	assert.Equal(t, Expired, x.Type)
	assert.Equal(t, Current, e.Type)
	assert.Equal(t, int64(1), x.Values[0].AsInt64())
}

func TestAtOutOfRangeIsNull(t *testing.T) {
	e := NewStreamEvent("orders", 100, []Value{Int32(1)})
	assert.True(t, e.At(5).IsNull())
	assert.True(t, e.At(-1).IsNull())
}

func TestStateEventOuterJoinNullPadding(t *testing.T) {
	s := NewStateEvent([]string{"L", "R"})
	left := NewStreamEvent("orders", 1, []Value{Int32(7)})
	s2 := s.WithChain("L", left)

	assert.Nil(t, s2.Chain("R"))
	assert.False(t, s2.Complete())
	assert.NotNil(t, s2.Chain("L"))
	assert.Nil(t, s.Chain("L")) // original untouched: s was never mutated

	s3 := s2.WithChain("R", NewStreamEvent("shipments", 2, []Value{Int32(7)}))
	assert.True(t, s3.Complete())
}

func TestAccessPathResolvesValuesAndAttrs(t *testing.T) {
	ev := NewStreamEvent("orders", 1, []Value{Int32(42), String("gold")})
	ev.SetAttr("total", Float64(3.14))
	s := NewStateEvent([]string{"L"}).WithChain("L", ev)

	v := s.Resolve(AccessPath{Chain: 0, Section: SectionValues, Attr: 1}, nil)
	assert.Equal(t, "gold", v.AsString())

	v = s.Resolve(AccessPath{Chain: 0, Section: SectionAttrs, Attr: 0}, []string{"total"})
	assert.Equal(t, 3.14, v.AsFloat64())
}

func TestAccessPathMissingChainIsNull(t *testing.T) {
	s := NewStateEvent([]string{"L", "R"})
	v := s.Resolve(AccessPath{Chain: 1, Section: SectionValues, Attr: 0}, nil)
	assert.True(t, v.IsNull())
}
