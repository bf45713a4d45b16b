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
	"sync"

	"github.com/eventflux-io/engine-sub003/record"
)

// MemTable is the unbounded in-memory table variant of §4.9: O(1)
// point operations when keyAttrs names an indexed key, O(n) scan
// otherwise. Deleted rows are tombstoned (set to nil) in place and the
// index is rebuilt on delete, matching the "rebuild index" wording.
type MemTable struct {
	mu       sync.RWMutex
	keyAttrs []int
	rows     []*record.StreamEvent
	index    map[string][]int
}

// NewMemTable builds an in-memory table. keyAttrs, when non-empty,
// names the positional attributes forming the indexed row key; an
// empty keyAttrs means every operation falls back to a full scan.
func NewMemTable(keyAttrs []int) *MemTable {
	t := &MemTable{keyAttrs: keyAttrs}
	if len(keyAttrs) > 0 {
		t.index = make(map[string][]int)
	}
	return t
}

func (t *MemTable) Insert(row *record.StreamEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := len(t.rows)
	t.rows = append(t.rows, row)
	if t.index != nil {
		k := rowKeyFor(t.keyAttrs, row)
		t.index[k] = append(t.index[k], idx)
	}
	return nil
}

func (t *MemTable) Find(cc *CompiledCondition) []*record.StreamEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idxs := scanIndices(t.rows, t.index, cc, wrapRow)
	out := make([]*record.StreamEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = t.rows[idx]
	}
	return out
}

func (t *MemTable) Contains(cc *CompiledCondition) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(scanIndices(t.rows, t.index, cc, wrapRow)) > 0
}

// FindRowsForJoin implements §4.9's find_rows_for_join: the same
// index-or-scan path as Find, but testing each candidate against ev
// alongside the row so a two-chain ON clause can reference both sides.
func (t *MemTable) FindRowsForJoin(ev *record.StreamEvent, cc *CompiledCondition) []*record.StreamEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idxs := scanIndices(t.rows, t.index, cc, func(row *record.StreamEvent) *record.StateEvent {
		return wrapJoinRow(ev, row)
	})
	out := make([]*record.StreamEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = t.rows[idx]
	}
	return out
}

func (t *MemTable) Update(cc *CompiledCondition, apply func(*record.StreamEvent)) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := scanIndices(t.rows, t.index, cc, wrapRow)
	for _, idx := range idxs {
		row := t.rows[idx]
		oldKey := rowKeyFor(t.keyAttrs, row)
		apply(row)
		if t.index != nil {
			if newKey := rowKeyFor(t.keyAttrs, row); newKey != oldKey {
				removeIndexEntry(t.index, oldKey, idx)
				t.index[newKey] = append(t.index[newKey], idx)
			}
		}
	}
	return len(idxs)
}

func (t *MemTable) Delete(cc *CompiledCondition) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := scanIndices(t.rows, t.index, cc, wrapRow)
	if len(idxs) == 0 {
		return 0
	}
	for _, idx := range idxs {
		t.rows[idx] = nil
	}
	if t.index != nil {
		t.index = make(map[string][]int, len(t.index))
		for i, row := range t.rows {
			if row == nil {
				continue
			}
			k := rowKeyFor(t.keyAttrs, row)
			t.index[k] = append(t.index[k], i)
		}
	}
	return len(idxs)
}

func (t *MemTable) Rows() []*record.StreamEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*record.StreamEvent, 0, len(t.rows))
	for _, row := range t.rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out
}
