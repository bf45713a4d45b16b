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

// CacheTable is the bounded FIFO-eviction table variant of §4.9: once
// the live row count exceeds maxSize, the oldest insert is evicted.
// It never blocks on insert and never spills to any secondary store.
type CacheTable struct {
	mu       sync.Mutex
	maxSize  int
	keyAttrs []int
	rows     []*record.StreamEvent
	index    map[string][]int
	fifo     []int // live row indices, oldest first
}

// NewCacheTable builds a cache table holding at most maxSize live rows.
func NewCacheTable(maxSize int, keyAttrs []int) *CacheTable {
	t := &CacheTable{maxSize: maxSize, keyAttrs: keyAttrs}
	if len(keyAttrs) > 0 {
		t.index = make(map[string][]int)
	}
	return t
}

func (t *CacheTable) Insert(row *record.StreamEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := len(t.rows)
	t.rows = append(t.rows, row)
	t.fifo = append(t.fifo, idx)
	if t.index != nil {
		k := rowKeyFor(t.keyAttrs, row)
		t.index[k] = append(t.index[k], idx)
	}
	if len(t.fifo) > t.maxSize {
		oldest := t.fifo[0]
		t.fifo = t.fifo[1:]
		t.evictLocked(oldest)
	}
	return nil
}

func (t *CacheTable) evictLocked(idx int) {
	row := t.rows[idx]
	t.rows[idx] = nil
	if row != nil && t.index != nil {
		removeIndexEntry(t.index, rowKeyFor(t.keyAttrs, row), idx)
	}
}

func (t *CacheTable) Find(cc *CompiledCondition) []*record.StreamEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := scanIndices(t.rows, t.index, cc, wrapRow)
	out := make([]*record.StreamEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = t.rows[idx]
	}
	return out
}

func (t *CacheTable) Contains(cc *CompiledCondition) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(scanIndices(t.rows, t.index, cc, wrapRow)) > 0
}

// FindRowsForJoin implements §4.9's find_rows_for_join: the same
// index-or-scan path as Find, but testing each candidate against ev
// alongside the row so a two-chain ON clause can reference both sides.
func (t *CacheTable) FindRowsForJoin(ev *record.StreamEvent, cc *CompiledCondition) []*record.StreamEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := scanIndices(t.rows, t.index, cc, func(row *record.StreamEvent) *record.StateEvent {
		return wrapJoinRow(ev, row)
	})
	out := make([]*record.StreamEvent, len(idxs))
	for i, idx := range idxs {
		out[i] = t.rows[idx]
	}
	return out
}

func (t *CacheTable) Update(cc *CompiledCondition, apply func(*record.StreamEvent)) int {
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

func (t *CacheTable) Delete(cc *CompiledCondition) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	idxs := scanIndices(t.rows, t.index, cc, wrapRow)
	removed := make(map[int]bool, len(idxs))
	for _, idx := range idxs {
		t.evictLocked(idx)
		removed[idx] = true
	}
	if len(removed) > 0 {
		fifo := t.fifo[:0]
		for _, idx := range t.fifo {
			if !removed[idx] {
				fifo = append(fifo, idx)
			}
		}
		t.fifo = fifo
	}
	return len(idxs)
}

func (t *CacheTable) Rows() []*record.StreamEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*record.StreamEvent, 0, len(t.rows))
	for _, row := range t.rows {
		if row != nil {
			out = append(out, row)
		}
	}
	return out
}
