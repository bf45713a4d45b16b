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

// LengthBatchWindow accumulates non-overlapping batches of n records: on
// the n-th input, the whole batch is emitted as CURRENTs followed by the
// same records as EXPIREDs, then the buffer resets.
type LengthBatchWindow struct {
	baseWindow
	n int
}

func newLengthBatchWindow(cfg Config) *LengthBatchWindow {
	return &LengthBatchWindow{n: cfg.Length}
}

func (w *LengthBatchWindow) Kind() Kind { return LengthBatch }
func (w *LengthBatchWindow) Start()     {}

func (w *LengthBatchWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buffer = append(w.buffer, ev)
	if len(w.buffer) < w.n {
		return nil
	}

	batch := w.buffer
	w.buffer = nil

	out := make([]*record.StreamEvent, 0, len(batch)*2)
	out = append(out, batch...)
	for _, e := range batch {
		out = append(out, e.AsExpired())
	}
	return out
}

type lengthBatchSnapshot struct {
	N      int                  `json:"n"`
	Buffer []record.StreamEvent `json:"buffer"`
}

func (w *LengthBatchWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := lengthBatchSnapshot{N: w.n}
	for _, e := range w.buffer {
		snap.Buffer = append(snap.Buffer, *e)
	}
	return json.Marshal(snap)
}

func (w *LengthBatchWindow) Restore(data []byte) error {
	var snap lengthBatchSnapshot
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
