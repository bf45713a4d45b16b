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

package table

import (
	"context"

	"github.com/eventflux-io/engine-sub003/record"
)

// DataSource is the narrow surface a delegating (JDBC-like) table needs
// from an external store: execute a backend-native query and return
// rows. Query receives the key CompiledCondition names, or an empty key
// with scan set when the condition has none; the condition's expression
// itself is not passed, and DelegatingTable filters the returned rows
// with CompiledCondition.Eval.
type DataSource interface {
	Query(ctx context.Context, key string, scan bool) ([]*record.StreamEvent, error)
}

// DelegatingTable forwards every operation to an external DataSource and
// keeps no local copy of the rows, per §4.9's "no local persistence".
// DataSource is read-only: Insert is a no-op, Update applies its function
// to the rows Find returns without writing them back, and Delete only
// counts matches. ConnectivityError-class failures degrade to empty results rather than
// panicking, consistent with the runtime's degrade-not-crash policy.
type DelegatingTable struct {
	source DataSource
	onErr  func(error)
}

// NewDelegatingTable binds source. onErr, if non-nil, observes every
// DataSource failure (wiring point for the fault/logger packages); it
// may be nil in tests.
func NewDelegatingTable(source DataSource, onErr func(error)) *DelegatingTable {
	return &DelegatingTable{source: source, onErr: onErr}
}

func (t *DelegatingTable) reportErr(err error) {
	if err != nil && t.onErr != nil {
		t.onErr(err)
	}
}

func (t *DelegatingTable) Insert(row *record.StreamEvent) error {
	// A delegating table has no local row vector to append to; inserts
	// are the driving stream's own sink concern (§6.2), not this table's.
	return nil
}

func (t *DelegatingTable) Find(cc *CompiledCondition) []*record.StreamEvent {
	rows, err := t.source.Query(context.Background(), cc.Key, cc.Key == "")
	t.reportErr(err)
	if err != nil {
		return nil
	}
	if cc.Eval == nil {
		return rows
	}
	out := make([]*record.StreamEvent, 0, len(rows))
	for _, row := range rows {
		if cc.Eval.Evaluate(wrapRow(row)) {
			out = append(out, row)
		}
	}
	return out
}

func (t *DelegatingTable) Contains(cc *CompiledCondition) bool {
	return len(t.Find(cc)) > 0
}

// FindRowsForJoin implements §4.9's find_rows_for_join: the same
// key-or-scan DataSource query as Find, but the residual filter tests
// each candidate against ev alongside the row rather than alone.
func (t *DelegatingTable) FindRowsForJoin(ev *record.StreamEvent, cc *CompiledCondition) []*record.StreamEvent {
	rows, err := t.source.Query(context.Background(), cc.Key, cc.Key == "")
	t.reportErr(err)
	if err != nil {
		return nil
	}
	if cc.Eval == nil {
		return rows
	}
	out := make([]*record.StreamEvent, 0, len(rows))
	for _, row := range rows {
		if cc.Eval.Evaluate(wrapJoinRow(ev, row)) {
			out = append(out, row)
		}
	}
	return out
}

func (t *DelegatingTable) Update(cc *CompiledCondition, apply func(*record.StreamEvent)) int {
	rows := t.Find(cc)
	for _, row := range rows {
		apply(row)
	}
	return len(rows)
}

func (t *DelegatingTable) Delete(cc *CompiledCondition) int {
	return len(t.Find(cc))
}

func (t *DelegatingTable) Rows() []*record.StreamEvent {
	rows, err := t.source.Query(context.Background(), "", true)
	t.reportErr(err)
	return rows
}
