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

	"github.com/eventflux-io/engine-sub003/record"
)

// LengthWindow is a sliding buffer of the last n records: each insert
// emits CURRENT, and if the buffer now exceeds n, the oldest record is
// evicted and re-emitted as EXPIRED.
type LengthWindow struct {
	baseWindow
	n int
}

func newLengthWindow(cfg Config) *LengthWindow {
	return &LengthWindow{n: cfg.Length}
}

func (w *LengthWindow) Kind() Kind { return Length }

func (w *LengthWindow) Start() {}

func (w *LengthWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := []*record.StreamEvent{ev}
	w.buffer = append(w.buffer, ev)
	if len(w.buffer) > w.n {
		evicted := w.buffer[0]
		w.buffer = w.buffer[1:]
		out = append(out, evicted.AsExpired())
	}
	return out
}

type lengthSnapshot struct {
	N      int                   `json:"n"`
	Buffer []record.StreamEvent `json:"buffer"`
}

func (w *LengthWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := lengthSnapshot{N: w.n}
	for _, e := range w.buffer {
		snap.Buffer = append(snap.Buffer, *e)
	}
	return json.Marshal(snap)
}

func (w *LengthWindow) Restore(data []byte) error {
	var snap lengthSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.n = snap.N
	w.buffer = w.buffer[:0]
	for i := range snap.Buffer {
		e := snap.Buffer[i]
		w.buffer = append(w.buffer, &e)
	}
	return nil
}
