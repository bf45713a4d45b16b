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
)

// slideEntry tracks an inserted record alongside the wall-clock instant
// it's due to expire (insertion time + size), so the periodic flush can
// evict by expiry instant independent of any particular input's arrival.
type slideEntry struct {
	ev       *record.StreamEvent
	expireAt int64 // unix nanos
}

// SlidingWindow emits, at every `slide` interval, the records inserted
// within the last `size`. Unlike time(d) it never evicts synchronously on
// Add: eviction and emission both happen on the slide tick.
type SlidingWindow struct {
	baseWindow
	size    time.Duration
	slide   time.Duration
	entries []slideEntry
	ticker  *time.Ticker
}

func newSlidingWindow(cfg Config) *SlidingWindow {
	return &SlidingWindow{size: cfg.Size, slide: cfg.Slide}
}

func (w *SlidingWindow) Kind() Kind { return Sliding }

func (w *SlidingWindow) Start() {
	w.mu.Lock()
	if w.stopCh == nil {
		w.stopCh = make(chan struct{})
	}
	w.mu.Unlock()
	w.ticker = time.NewTicker(w.slide)
	go w.run()
}

func (w *SlidingWindow) run() {
	for {
		select {
		case <-w.stopCh:
			w.ticker.Stop()
			return
		case <-w.ticker.C:
			w.tick()
		}
	}
}

func (w *SlidingWindow) tick() {
	w.mu.Lock()
	now := time.Now().UnixNano()
	kept := w.entries[:0]
	var expired []*record.StreamEvent
	for _, e := range w.entries {
		if e.expireAt <= now {
			expired = append(expired, e.ev)
		} else {
			kept = append(kept, e)
		}
	}
	w.entries = kept
	current := make([]*record.StreamEvent, len(w.entries))
	for i, e := range w.entries {
		current[i] = e.ev
	}
	w.mu.Unlock()

	out := make([]*record.StreamEvent, 0, len(current)+len(expired))
	out = append(out, current...)
	for _, e := range expired {
		out = append(out, e.AsExpired())
	}
	w.emit(out)
}

// Current overrides baseWindow.Current since SlidingWindow keeps its
// records in entries, not the shared buffer.
func (w *SlidingWindow) Current() []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*record.StreamEvent, len(w.entries))
	for i, e := range w.entries {
		out[i] = e.ev
	}
	return out
}

// Add only buffers; emission is tick-driven, matching "emits at every
// slide interval" in §4.4.
func (w *SlidingWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	w.entries = append(w.entries, slideEntry{ev: ev, expireAt: time.Now().Add(w.size).UnixNano()})
	w.mu.Unlock()
	return nil
}

type slidingSnapshot struct {
	SizeNanos  int64                `json:"sizeNanos"`
	SlideNanos int64                `json:"slideNanos"`
	Entries    []slidingEntrySnap   `json:"entries"`
}

type slidingEntrySnap struct {
	Event    record.StreamEvent `json:"event"`
	ExpireAt int64              `json:"expireAt"`
}

func (w *SlidingWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := slidingSnapshot{SizeNanos: int64(w.size), SlideNanos: int64(w.slide)}
	for _, e := range w.entries {
		snap.Entries = append(snap.Entries, slidingEntrySnap{Event: *e.ev, ExpireAt: e.expireAt})
	}
	return json.Marshal(snap)
}

func (w *SlidingWindow) Restore(data []byte) error {
	var snap slidingSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size = time.Duration(snap.SizeNanos)
	w.slide = time.Duration(snap.SlideNanos)
	w.entries = w.entries[:0]
	for i := range snap.Entries {
		ev := snap.Entries[i].Event
		w.entries = append(w.entries, slideEntry{ev: &ev, expireAt: snap.Entries[i].ExpireAt})
	}
	return nil
}
