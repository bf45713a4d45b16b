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

// TimeWindow slides by time: on each input, anything older than
// now-duration is evicted as EXPIRED before the input is admitted as
// CURRENT. now is the arriving event's own Timestamp for plain time(d),
// or the value of a named attribute for externalTime(tsAttr, d), giving
// both variants the same eviction logic over different time sources.
type TimeWindow struct {
	baseWindow
	duration   int64 // nanoseconds
	external   bool
	tsAttrIdx  int
	lateness   int64
	maxSeenTs  int64
}

func newTimeWindow(cfg Config, external bool) *TimeWindow {
	return &TimeWindow{
		duration:  cfg.Duration.Nanoseconds(),
		external:  external,
		tsAttrIdx: cfg.TimestampAttr,
		lateness:  cfg.Lateness.Nanoseconds(),
	}
}

func (w *TimeWindow) Kind() Kind {
	if w.external {
		return ExternalTime
	}
	return Time
}

func (w *TimeWindow) Start() {}

func (w *TimeWindow) eventTime(ev *record.StreamEvent) int64 {
	if !w.external {
		return ev.Timestamp
	}
	return ev.At(w.tsAttrIdx).AsInt64()
}

func (w *TimeWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.eventTime(ev)
	if now > w.maxSeenTs {
		w.maxSeenTs = now
	}

	// Bounded lateness (externalTime only): an event arriving more than
	// `lateness` behind the latest seen event time is dropped rather than
	// admitted, per §4.4's "degrade by dropping malformed records".
	if w.external && w.lateness > 0 && now < w.maxSeenTs-w.lateness {
		return nil
	}

	threshold := now - w.duration
	out := make([]*record.StreamEvent, 0, 2)

	kept := w.buffer[:0]
	for _, e := range w.buffer {
		if w.eventTime(e) < threshold {
			out = append(out, e.AsExpired())
		} else {
			kept = append(kept, e)
		}
	}
	w.buffer = kept
	w.buffer = append(w.buffer, ev)
	out = append(out, ev)
	return out
}

type timeSnapshot struct {
	Duration  int64                `json:"duration"`
	External  bool                 `json:"external"`
	TsAttrIdx int                  `json:"tsAttrIdx"`
	Lateness  int64                `json:"lateness"`
	MaxSeenTs int64                `json:"maxSeenTs"`
	Buffer    []record.StreamEvent `json:"buffer"`
}

func (w *TimeWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := timeSnapshot{
		Duration: w.duration, External: w.external, TsAttrIdx: w.tsAttrIdx,
		Lateness: w.lateness, MaxSeenTs: w.maxSeenTs,
	}
	for _, e := range w.buffer {
		snap.Buffer = append(snap.Buffer, *e)
	}
	return json.Marshal(snap)
}

func (w *TimeWindow) Restore(data []byte) error {
	var snap timeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.duration, w.external, w.tsAttrIdx = snap.Duration, snap.External, snap.TsAttrIdx
	w.lateness, w.maxSeenTs = snap.Lateness, snap.MaxSeenTs
	w.buffer = w.buffer[:0]
	for i := range snap.Buffer {
		e := snap.Buffer[i]
		w.buffer = append(w.buffer, &e)
	}
	return nil
}
