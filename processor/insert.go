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
	"context"

	"github.com/eventflux-io/engine-sub003/junction"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/table"
)

// InsertIntoStream is the terminal node of a query targeting another
// stream (§6.1's OutputStream): it publishes to the stream's junction
// and passes ev through unchanged, so it can sit anywhere in a chain
// without altering what a test sees as the query's own output.
type InsertIntoStream struct {
	j   *junction.Junction
	ctx context.Context
}

// NewInsertIntoStream publishes into j using ctx for every Publish call;
// ctx is typically the engine's root context, cancelled on Stop.
func NewInsertIntoStream(j *junction.Junction, ctx context.Context) *InsertIntoStream {
	if ctx == nil {
		ctx = context.Background()
	}
	return &InsertIntoStream{j: j, ctx: ctx}
}

func (p *InsertIntoStream) Kind() Kind { return InsertIntoStreamKind }

func (p *InsertIntoStream) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	p.j.Publish(p.ctx, ev)
	return []*record.StreamEvent{ev}, nil
}

// InsertIntoTable is the terminal node of a query targeting a table
// (§6.1's OutputTable): every CURRENT/EXPIRED event is appended as a new
// row, per §4.9 — a table has no notion of removing a row because its
// driving stream's window evicted the record that produced it.
type InsertIntoTable struct {
	t table.Table
}

// NewInsertIntoTable wraps t.
func NewInsertIntoTable(t table.Table) *InsertIntoTable { return &InsertIntoTable{t: t} }

func (p *InsertIntoTable) Kind() Kind { return InsertIntoTableKind }

func (p *InsertIntoTable) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	if err := p.t.Insert(ev); err != nil {
		return nil, err
	}
	return []*record.StreamEvent{ev}, nil
}
