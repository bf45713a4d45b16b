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

// Package processor implements the closed set of query-graph node kinds
// named in §9: Filter, Project, Window, Aggregate, StreamJoin, TableJoin,
// Pattern, Partition, InsertIntoStream, InsertIntoTable. Every concrete
// type satisfies Processor and carries a Kind() tag, generalized from the
// teacher's types.Operator (an Init/Apply pair run over a shared
// StreamSqlContext spanning a whole query) to a narrower per-event
// Process call: this runtime has no single mutable query context to
// thread through, since one compiled Query can fan its output to more
// than one downstream junction.
package processor

import "github.com/eventflux-io/engine-sub003/record"

// Kind tags which of the closed variant set a Processor implements, so a
// scheduler can batch work by kind (§9) instead of dispatching through a
// type switch on every event.
type Kind int

const (
	FilterKind Kind = iota
	ProjectKind
	WindowKind
	AggregateKind
	StreamJoinKind
	TableJoinKind
	PatternKind
	PartitionKind
	InsertIntoStreamKind
	InsertIntoTableKind
)

func (k Kind) String() string {
	switch k {
	case FilterKind:
		return "Filter"
	case ProjectKind:
		return "Project"
	case WindowKind:
		return "Window"
	case AggregateKind:
		return "Aggregate"
	case StreamJoinKind:
		return "StreamJoin"
	case TableJoinKind:
		return "TableJoin"
	case PatternKind:
		return "Pattern"
	case PartitionKind:
		return "Partition"
	case InsertIntoStreamKind:
		return "InsertIntoStream"
	case InsertIntoTableKind:
		return "InsertIntoTable"
	default:
		return "Unknown"
	}
}

// Processor is the single contract every query-graph node satisfies.
// Process consumes one input record and returns zero or more output
// records — zero when a Filter rejects, one for a one-to-one Project, or
// several when a window eviction accompanies the new CURRENT admission.
// Implementations that need to emit asynchronously (a timer-driven
// window flush) do so through their own side channel and return nil from
// Process for the triggering call; the runtime wiring (package runtime)
// is responsible for fanning both paths into the same downstream
// junction.
type Processor interface {
	Kind() Kind
	Process(ev *record.StreamEvent) ([]*record.StreamEvent, error)
}
