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
	"github.com/eventflux-io/engine-sub003/join"
	"github.com/eventflux-io/engine-sub003/record"
)

// StreamJoinSide feeds one side of a stream-stream join (§4.6) and
// flattens the resulting composites into plain StreamEvents so the rest
// of a query's chain never has to know a join produced them.
type StreamJoinSide struct {
	j      *join.StreamJoin
	isLeft bool
	output string
	slots  []chainSlot
}

// NewStreamJoinSide builds the Processor for one side of j. leftWidth/
// rightWidth are each stream's attribute count, used to lay out the
// flattened output schema as left-then-right.
func NewStreamJoinSide(j *join.StreamJoin, isLeft bool, output string, leftWidth, rightWidth int) *StreamJoinSide {
	return &StreamJoinSide{
		j: j, isLeft: isLeft, output: output,
		slots: flattenSchema([]string{"L", "R"}, []int{leftWidth, rightWidth}),
	}
}

func (s *StreamJoinSide) Kind() Kind { return StreamJoinKind }

func (s *StreamJoinSide) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	var composites []*record.StateEvent
	if s.isLeft {
		composites = s.j.AddLeft(ev)
	} else {
		composites = s.j.AddRight(ev)
	}
	out := make([]*record.StreamEvent, len(composites))
	for i, c := range composites {
		out[i] = flatten(c, s.output, s.slots)
	}
	return out, nil
}

// TableJoin feeds the driving stream of a stream-table enrichment join
// (§4.7), flattening each match into a plain StreamEvent.
type TableJoin struct {
	j      *join.TableJoin
	output string
	slots  []chainSlot
}

// NewTableJoin builds the Processor wrapping j. streamWidth/tableWidth
// are the driving stream's and table's attribute counts.
func NewTableJoin(j *join.TableJoin, output string, streamWidth, tableWidth int) *TableJoin {
	return &TableJoin{
		j: j, output: output,
		slots: flattenSchema([]string{"S", "T"}, []int{streamWidth, tableWidth}),
	}
}

func (t *TableJoin) Kind() Kind { return TableJoinKind }

func (t *TableJoin) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	composites := t.j.OnStream(ev)
	out := make([]*record.StreamEvent, len(composites))
	for i, c := range composites {
		out[i] = flatten(c, t.output, t.slots)
	}
	return out, nil
}
