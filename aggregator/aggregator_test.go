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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/record"
)

func TestSumAddRemove(t *testing.T) {
	a := &SumAggregator{}
	a.Add(record.Int32(5))
	a.Add(record.Int32(3))
	assert.Equal(t, 8.0, a.Value().AsFloat64())
	a.Remove(record.Int32(5))
	assert.Equal(t, 3.0, a.Value().AsFloat64())
}

func TestAvgEmptyIsNull(t *testing.T) {
	a := &AvgAggregator{}
	assert.True(t, a.Value().IsNull())
	a.Add(record.Int32(10))
	a.Add(record.Int32(20))
	assert.Equal(t, 15.0, a.Value().AsFloat64())
}

func TestMinMaxOverMultiset(t *testing.T) {
	min := newMinMax(true)
	min.Add(record.Int32(5))
	min.Add(record.Int32(1))
	min.Add(record.Int32(9))
	assert.Equal(t, 1.0, min.Value().AsFloat64())
	min.Remove(record.Int32(1))
	assert.Equal(t, 5.0, min.Value().AsFloat64())
}

func TestStdDevRequiresTwoSamples(t *testing.T) {
	a := &StdDevAggregator{}
	a.Add(record.Int32(5))
	assert.True(t, a.Value().IsNull())
	a.Add(record.Int32(7))
	assert.InDelta(t, 1.414, a.Value().AsFloat64(), 0.01)
}

func TestDistinctCount(t *testing.T) {
	a := newDistinctCount()
	a.Add(record.String("x"))
	a.Add(record.String("y"))
	a.Add(record.String("x"))
	assert.EqualValues(t, 2, a.Value().AsInt64())
	a.Remove(record.String("x"))
	assert.EqualValues(t, 2, a.Value().AsInt64())
	a.Remove(record.String("x"))
	assert.EqualValues(t, 1, a.Value().AsInt64())
}

func TestBuiltinsRegistryHasAllSevenKinds(t *testing.T) {
	for _, kind := range []string{"count", "sum", "avg", "min", "max", "stddev", "distinctcount"} {
		_, ok := Builtins.Get(kind)
		assert.True(t, ok, "missing builtin %s", kind)
	}
}

func TestGroupedAggregationByKey(t *testing.T) {
	specs := []OutputSpec{{Name: "total", Kind: "sum", SourceAttr: 1}}
	g := NewGrouped(specs, []int{0})

	ibm1 := record.NewStreamEvent("trades", 1, []record.Value{record.String("IBM"), record.Float64(10)})
	aapl := record.NewStreamEvent("trades", 2, []record.Value{record.String("AAPL"), record.Float64(20)})
	ibm2 := record.NewStreamEvent("trades", 3, []record.Value{record.String("IBM"), record.Float64(5)})

	row, ok := g.Apply(ibm1)
	require.True(t, ok)
	assert.Equal(t, 10.0, row.Values[0].AsFloat64())

	row, ok = g.Apply(aapl)
	require.True(t, ok)
	assert.Equal(t, 20.0, row.Values[0].AsFloat64())

	row, ok = g.Apply(ibm2)
	require.True(t, ok)
	assert.Equal(t, 15.0, row.Values[0].AsFloat64())
	assert.Equal(t, 2, g.Len())
}

func TestGroupedBucketGCOnBalancedExpire(t *testing.T) {
	specs := []OutputSpec{{Name: "total", Kind: "count", SourceAttr: 0}}
	g := NewGrouped(specs, []int{0})

	cur := record.NewStreamEvent("s", 1, []record.Value{record.String("A")})
	_, _ = g.Apply(cur)
	assert.Equal(t, 1, g.Len())

	exp := cur.AsExpired()
	_, _ = g.Apply(exp)
	assert.Equal(t, 0, g.Len())
}
