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
	"time"

	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/utils/timex"
)

// TimeBatchWindow tumbles by wall-clock time: a background timer flushes
// the accumulated batch as CURRENT+EXPIRED every `duration`, per §4.4.
// Tumbling is this window under an alias at the design level.
type TimeBatchWindow struct {
	baseWindow
	duration      time.Duration
	epochBoundary bool
	epoch         int64
	ticker        *time.Ticker
}

func newTimeBatchWindow(cfg Config) *TimeBatchWindow {
	return &TimeBatchWindow{
		duration:      cfg.Duration,
		epochBoundary: cfg.EpochBoundary,
		epoch:         cfg.Epoch,
	}
}

func (w *TimeBatchWindow) Kind() Kind { return TimeBatch }

// Start launches the background flush timer. The first boundary is
// either the runtime epoch (EpochBoundary) or, absent that, simply
// `duration` after Start is called (approximating "the first event's
// timestamp" boundary without requiring the window to peek at input
// before any timer has been armed).
func (w *TimeBatchWindow) Start() {
	w.mu.Lock()
	if w.stopCh == nil {
		w.stopCh = make(chan struct{})
	}
	interval := w.duration
	if w.epochBoundary && w.epoch > 0 {
		sinceEpoch := time.Unix(0, time.Now().UnixNano()-w.epoch)
		aligned := timex.AlignTimeToWindow(sinceEpoch, w.duration)
		if elapsed := sinceEpoch.Sub(aligned); elapsed > 0 {
			interval = w.duration - elapsed
		}
	}
	w.mu.Unlock()

	w.ticker = time.NewTicker(interval)
	go w.run()
}

func (w *TimeBatchWindow) run() {
	<-w.ticker.C
	w.flush()
	w.ticker.Reset(w.duration)
	for {
		select {
		case <-w.stopCh:
			w.ticker.Stop()
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *TimeBatchWindow) flush() {
	w.mu.Lock()
	batch := w.buffer
	w.buffer = nil
	w.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	out := make([]*record.StreamEvent, 0, len(batch)*2)
	out = append(out, batch...)
	for _, e := range batch {
		out = append(out, e.AsExpired())
	}
	w.emit(out)
}

// Add only buffers; emission is entirely timer-driven, so Add's direct
// return is always empty and callers must have registered SetCallback to
// observe this window's output.
func (w *TimeBatchWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	w.buffer = append(w.buffer, ev)
	w.mu.Unlock()
	return nil
}

type timeBatchSnapshot struct {
	DurationNanos int64                `json:"durationNanos"`
	Buffer        []record.StreamEvent `json:"buffer"`
}

func (w *TimeBatchWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := timeBatchSnapshot{DurationNanos: int64(w.duration)}
	for _, e := range w.buffer {
		snap.Buffer = append(snap.Buffer, *e)
	}
	return json.Marshal(snap)
}

func (w *TimeBatchWindow) Restore(data []byte) error {
	var snap timeBatchSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.duration = time.Duration(snap.DurationNanos)
	w.buffer = w.buffer[:0]
	for i := range snap.Buffer {
		e := snap.Buffer[i]
		w.buffer = append(w.buffer, &e)
	}
	return nil
}
