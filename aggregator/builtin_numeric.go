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
	"math"
	"strconv"

	"github.com/eventflux-io/engine-sub003/record"
)

// CountAggregator counts every non-NULL value added.
type CountAggregator struct{ n int64 }

func (a *CountAggregator) Add(v record.Value) {
	if !v.IsNull() {
		a.n++
	}
}
func (a *CountAggregator) Remove(v record.Value) {
	if !v.IsNull() && a.n > 0 {
		a.n--
	}
}
func (a *CountAggregator) Value() record.Value { return record.Int64(a.n) }
func (a *CountAggregator) New() Aggregator     { return &CountAggregator{} }

// SumAggregator maintains a running sum.
type SumAggregator struct{ sum float64 }

func (a *SumAggregator) Add(v record.Value) {
	if v.IsNumeric() {
		a.sum += v.AsFloat64()
	}
}
func (a *SumAggregator) Remove(v record.Value) {
	if v.IsNumeric() {
		a.sum -= v.AsFloat64()
	}
}
func (a *SumAggregator) Value() record.Value { return record.Float64(a.sum) }
func (a *SumAggregator) New() Aggregator     { return &SumAggregator{} }

// AvgAggregator maintains sum and count for O(1) incremental average.
type AvgAggregator struct {
	sum   float64
	count int64
}

func (a *AvgAggregator) Add(v record.Value) {
	if v.IsNumeric() {
		a.sum += v.AsFloat64()
		a.count++
	}
}
func (a *AvgAggregator) Remove(v record.Value) {
	if v.IsNumeric() && a.count > 0 {
		a.sum -= v.AsFloat64()
		a.count--
	}
}
func (a *AvgAggregator) Value() record.Value {
	if a.count == 0 {
		return record.Null()
	}
	return record.Float64(a.sum / float64(a.count))
}
func (a *AvgAggregator) New() Aggregator { return &AvgAggregator{} }

// StdDevAggregator maintains sum and sum-of-squares for incremental
// sample standard deviation; it reports NULL for fewer than two samples.
type StdDevAggregator struct {
	sum   float64
	sumSq float64
	count int64
}

func (a *StdDevAggregator) Add(v record.Value) {
	if !v.IsNumeric() {
		return
	}
	x := v.AsFloat64()
	a.sum += x
	a.sumSq += x * x
	a.count++
}
func (a *StdDevAggregator) Remove(v record.Value) {
	if !v.IsNumeric() || a.count == 0 {
		return
	}
	x := v.AsFloat64()
	a.sum -= x
	a.sumSq -= x * x
	a.count--
}
func (a *StdDevAggregator) Value() record.Value {
	if a.count < 2 {
		return record.Null()
	}
	n := float64(a.count)
	mean := a.sum / n
	variance := (a.sumSq - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0 // floating-point drift from repeated add/remove
	}
	return record.Float64(math.Sqrt(variance))
}
func (a *StdDevAggregator) New() Aggregator { return &StdDevAggregator{} }

// minMaxAggregator maintains a value->count multiset so Remove can drop
// exactly one occurrence of a value without disturbing the others;
// Value() scans the (typically small) distinct-key set for the extreme.
type minMaxAggregator struct {
	counts map[float64]int64
	isMin  bool
}

func newMinMax(isMin bool) *minMaxAggregator {
	return &minMaxAggregator{counts: make(map[float64]int64), isMin: isMin}
}

func (a *minMaxAggregator) Add(v record.Value) {
	if !v.IsNumeric() {
		return
	}
	a.counts[v.AsFloat64()]++
}
func (a *minMaxAggregator) Remove(v record.Value) {
	if !v.IsNumeric() {
		return
	}
	x := v.AsFloat64()
	if a.counts[x] <= 1 {
		delete(a.counts, x)
	} else {
		a.counts[x]--
	}
}
func (a *minMaxAggregator) Value() record.Value {
	if len(a.counts) == 0 {
		return record.Null()
	}
	first := true
	var extreme float64
	for k := range a.counts {
		if first || (a.isMin && k < extreme) || (!a.isMin && k > extreme) {
			extreme = k
			first = false
		}
	}
	return record.Float64(extreme)
}
func (a *minMaxAggregator) New() Aggregator { return newMinMax(a.isMin) }

// distinctCountAggregator counts distinct non-NULL values currently
// present, using a value->refcount multiset identical in shape to
// minMaxAggregator but keyed on a widened string so non-numeric values
// (e.g. STRING) can be distinguished too.
type distinctCountAggregator struct {
	counts map[string]int64
}

func newDistinctCount() *distinctCountAggregator {
	return &distinctCountAggregator{counts: make(map[string]int64)}
}

func distinctKey(v record.Value) string {
	if v.IsNumeric() {
		return "n:" + strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	}
	return "s:" + v.AsString()
}

func (a *distinctCountAggregator) Add(v record.Value) {
	if v.IsNull() {
		return
	}
	a.counts[distinctKey(v)]++
}
func (a *distinctCountAggregator) Remove(v record.Value) {
	if v.IsNull() {
		return
	}
	k := distinctKey(v)
	if a.counts[k] <= 1 {
		delete(a.counts, k)
	} else {
		a.counts[k]--
	}
}
func (a *distinctCountAggregator) Value() record.Value { return record.Int64(int64(len(a.counts))) }
func (a *distinctCountAggregator) New() Aggregator      { return newDistinctCount() }
