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

// session is one open per-key session: its accumulated records in
// insertion order and the timestamp of the last one admitted.
type session struct {
	records []*record.StreamEvent
	lastTs  int64
}

// SessionWindow extends an open per-key session while the gap between
// consecutive events stays within `gap`; otherwise it closes the
// previous session (emitting all its records as EXPIRED) and opens a new
// one. Closing is entirely input-driven per §4.4's literal wording — a
// key whose session never sees another event simply never closes until
// Flush is called. The runtime never calls Flush, so such a session stays
// open for the engine's lifetime.
type SessionWindow struct {
	baseWindow
	gap        int64 // nanoseconds
	keyed      bool
	keyAttrIdx int
	sessions   map[string]*session
}

func newSessionWindow(cfg Config) *SessionWindow {
	return &SessionWindow{
		gap:        cfg.Gap.Nanoseconds(),
		keyed:      cfg.HasSessionKey,
		keyAttrIdx: cfg.SessionKeyIdx,
		sessions:   make(map[string]*session),
	}
}

func (w *SessionWindow) Kind() Kind { return Session }
func (w *SessionWindow) Start()     {}

func (w *SessionWindow) key(ev *record.StreamEvent) string {
	if !w.keyed {
		return ""
	}
	v := ev.At(w.keyAttrIdx)
	return v.AsString()
}

func (w *SessionWindow) Add(ev *record.StreamEvent) []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()

	k := w.key(ev)
	s, open := w.sessions[k]

	var out []*record.StreamEvent
	if open && ev.Timestamp-s.lastTs > w.gap {
		for _, r := range s.records {
			out = append(out, r.AsExpired())
		}
		delete(w.sessions, k)
		open = false
	}

	if !open {
		s = &session{}
		w.sessions[k] = s
	}
	s.records = append(s.records, ev)
	s.lastTs = ev.Timestamp
	out = append(out, ev)
	return out
}

// Current returns every open session's records, ordered by session key so
// repeated calls are stable; join probing cares about per-key grouping,
// not cross-key interleaving.
func (w *SessionWindow) Current() []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]string, 0, len(w.sessions))
	for k := range w.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []*record.StreamEvent
	for _, k := range keys {
		out = append(out, w.sessions[k].records...)
	}
	return out
}

// Flush force-closes every open session and returns each one's records
// as EXPIRED. Engine.Stop does not call it; it is invoked only directly
// on a SessionWindow.
func (w *SessionWindow) Flush() []*record.StreamEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []*record.StreamEvent
	for k, s := range w.sessions {
		for _, r := range s.records {
			out = append(out, r.AsExpired())
		}
		delete(w.sessions, k)
	}
	return out
}

type sessionSnapshot struct {
	GapNanos   int64                     `json:"gapNanos"`
	Keyed      bool                      `json:"keyed"`
	KeyAttrIdx int                       `json:"keyAttrIdx"`
	Sessions   map[string]sessionSnap    `json:"sessions"`
}

type sessionSnap struct {
	Records []record.StreamEvent `json:"records"`
	LastTs  int64                `json:"lastTs"`
}

func (w *SessionWindow) Capture() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := sessionSnapshot{
		GapNanos: w.gap, Keyed: w.keyed, KeyAttrIdx: w.keyAttrIdx,
		Sessions: make(map[string]sessionSnap, len(w.sessions)),
	}
	for k, s := range w.sessions {
		ss := sessionSnap{LastTs: s.lastTs}
		for _, r := range s.records {
			ss.Records = append(ss.Records, *r)
		}
		snap.Sessions[k] = ss
	}
	return json.Marshal(snap)
}

func (w *SessionWindow) Restore(data []byte) error {
	var snap sessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gap, w.keyed, w.keyAttrIdx = snap.GapNanos, snap.Keyed, snap.KeyAttrIdx
	w.sessions = make(map[string]*session, len(snap.Sessions))
	for k, ss := range snap.Sessions {
		s := &session{lastTs: ss.LastTs}
		for i := range ss.Records {
			r := ss.Records[i]
			s.records = append(s.records, &r)
		}
		w.sessions[k] = s
	}
	return nil
}
