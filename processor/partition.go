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
	"github.com/eventflux-io/engine-sub003/partition"
	"github.com/eventflux-io/engine-sub003/record"
)

// Partition wraps a partition.Router as a single Processor node (§4.10):
// Process just dispatches to the per-key Instance, created lazily.
type Partition struct {
	r *partition.Router
}

// NewPartition wraps r.
func NewPartition(r *partition.Router) *Partition { return &Partition{r: r} }

func (p *Partition) Kind() Kind { return PartitionKind }

func (p *Partition) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	return p.r.Route(ev)
}
