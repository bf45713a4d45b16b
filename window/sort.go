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

package window

import (
	"encoding/json"
	"sort"

	"github.com/eventflux-io/engine-sub003/record"
)

// SortWindow keeps the n smallest (by key vector) records seen, ordered
// by SortKeys with stable insertion-order tie-breaks. On overflow the
// largest-in-order record is evicted as EXPIRED.
type SortWindow struct {
	baseWindow
	n    int
	keys []SortKey
}

func newSortWindow(cfg Config) *SortWindow {
	return &SortWindow{n: cfg.Length, keys: cfg.SortKeys}
}

func (w *SortWindow) Kind() Kind { return Sort }
func (w *SortWindow) Start()     {}

func (w *SortWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, ev)
	sort.SliceStable(w.buffer, func(i, j int) bool {
		return compareKeys(w.buffer[i].Values, w.buffer[j].Values, w.keys) < 0
	})

	out := []*record.StreamEvent{ev}
	if len(w.buffer) > w.n {
		evicted := w.buffer[len(w.buffer)-1]
		w.buffer = w.buffer[:len(w.buffer)-1]
		out = append(out, evicted.AsExpired())
	}
	return out
}

type sortSnapshot struct {
	N      int                  `json:"n"`
	Keys   []SortKey            `json:"keys"`
	Buffer []record.StreamEvent `json:"buffer"`
}

func (w *SortWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := sortSnapshot{N: w.n, Keys: w.keys}
	for _, e := range w.buffer {
		snap.Buffer = append(snap.Buffer, *e)
	}
	return json.Marshal(snap)
}

func (w *SortWindow) Restore(data []byte) error {
	var snap sortSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.n, w.keys = snap.N, snap.Keys
	w.buffer = w.buffer[:0]
	for i := range snap.Buffer {
		e := snap.Buffer[i]
		w.buffer = append(w.buffer, &e)
	}
	return nil
}
