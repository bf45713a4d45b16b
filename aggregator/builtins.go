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

import "github.com/eventflux-io/engine-sub003/registry"

func newBuiltinsRegistry() *registry.Registry[Factory] {
	r := registry.New[Factory]()
	r.Register("count", func() Aggregator { return &CountAggregator{} }, "numeric", "set")
	r.Register("sum", func() Aggregator { return &SumAggregator{} }, "numeric")
	r.Register("avg", func() Aggregator { return &AvgAggregator{} }, "numeric")
	r.Register("min", func() Aggregator { return newMinMax(true) }, "numeric")
	r.Register("max", func() Aggregator { return newMinMax(false) }, "numeric")
	r.Register("stddev", func() Aggregator { return &StdDevAggregator{} }, "numeric")
	r.Register("distinctcount", func() Aggregator { return newDistinctCount() }, "set")
	return r
}
