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

package pattern

import (
	"sync"

	"github.com/eventflux-io/engine-sub003/record"
)

// partial is one in-flight assignment of Pattern variables to concrete
// events plus a cursor into the pattern graph (§4.8).
type partial struct {
	bindings map[string][]*record.StreamEvent
	matched  map[string]bool // And/Or mode: which step names have bound

	cursor        int // Sequence mode: index of the next expected step
	countAtCursor int // Sequence mode: occurrences matched at cursor so far

	startTs int64
	seq     int64
}

func newPartial(seq int64) *partial {
	return &partial{
		bindings: make(map[string][]*record.StreamEvent),
		matched:  make(map[string]bool),
		seq:      seq,
	}
}

func (p *partial) clone() *partial {
	nb := make(map[string][]*record.StreamEvent, len(p.bindings))
	for k, v := range p.bindings {
		cp := make([]*record.StreamEvent, len(v))
		copy(cp, v)
		nb[k] = cp
	}
	nm := make(map[string]bool, len(p.matched))
	for k, v := range p.matched {
		nm[k] = v
	}
	return &partial{
		bindings: nb, matched: nm,
		cursor: p.cursor, countAtCursor: p.countAtCursor,
		startTs: p.startTs, seq: p.seq,
	}
}

func (p *partial) bind(name string, ev *record.StreamEvent) {
	p.bindings[name] = append(p.bindings[name], ev)
}

// wrapCandidate lifts a single candidate event into the single-chain
// StateEvent shape a step's inline Filter evaluates against — the
// candidate alone, no downstream visibility, per §4.8.
func wrapCandidate(ev *record.StreamEvent) *record.StateEvent {
	return &record.StateEvent{Chains: []string{""}, Events: []*record.StreamEvent{ev}, Type: record.Current}
}

func stepMatches(step Step, ev *record.StreamEvent) bool {
	if step.Stream != ev.Stream {
		return false
	}
	if step.Filter == nil {
		return true
	}
	return step.Filter.Evaluate(wrapCandidate(ev))
}

// Matcher runs one compiled Pattern's state machine (§4.8): each input
// event is tried against every active partial's cursor, new partials
// are seeded, WITHIN-expired partials are evicted, and terminal
// partials emit a StateEvent.
type Matcher struct {
	pattern Pattern

	mu            sync.Mutex
	partials      []*partial
	nextSeq       int64
	completedOnce bool // Or mode, !Every: pattern is a one-shot detector
	callback      func([]*record.StateEvent)

	// OnTimeout, if set, observes every partial evicted for exceeding
	// WITHIN — the wiring point for fault.PartialMatchTimeout.
	OnTimeout func()
}

// New builds a Matcher for pattern.
func New(pattern Pattern) *Matcher {
	return &Matcher{pattern: pattern}
}

// SetCallback registers the consumer of this matcher's terminal output.
func (m *Matcher) SetCallback(cb func([]*record.StateEvent)) { m.callback = cb }

// Handle feeds one input event through the state machine and returns
// any StateEvents completed by it.
func (m *Matcher) Handle(ev *record.StreamEvent) []*record.StateEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpiredLocked(ev.Timestamp)

	var out []*record.StateEvent
	switch m.pattern.Mode {
	case Sequence:
		out = m.handleSequence(ev)
	case And:
		out = m.handleAnd(ev)
	case Or:
		out = m.handleOr(ev)
	}
	if m.callback != nil && len(out) > 0 {
		m.callback(out)
	}
	return out
}

func (m *Matcher) evictExpiredLocked(now int64) {
	if m.pattern.Within <= 0 || len(m.partials) == 0 {
		return
	}
	kept := m.partials[:0]
	for _, p := range m.partials {
		if now-p.startTs <= int64(m.pattern.Within) {
			kept = append(kept, p)
		} else if m.OnTimeout != nil {
			m.OnTimeout()
		}
	}
	m.partials = kept
}

func (m *Matcher) toStateEvent(p *partial, t record.EventType) *record.StateEvent {
	chains := make([]string, len(m.pattern.Steps))
	events := make([]*record.StreamEvent, len(m.pattern.Steps))
	for i, step := range m.pattern.Steps {
		chains[i] = step.Name
		if bound := p.bindings[step.Name]; len(bound) > 0 {
			events[i] = bound[len(bound)-1]
		}
	}
	return &record.StateEvent{Chains: chains, Events: events, Type: t}
}

// tryExtendSequence advances p past any already-quantifier-satisfied
// steps looking for one ev can extend, per rule 1 ("try to extend
// every partial whose cursor accepts this stream") generalized to skip
// a fulfilled quantified step when ev belongs further ahead.
func (m *Matcher) tryExtendSequence(p *partial, ev *record.StreamEvent) (*partial, bool) {
	cur := p.cursor
	count := p.countAtCursor
	for cur < len(m.pattern.Steps) {
		step := m.pattern.Steps[cur]
		if stepMatches(step, ev) {
			clone := p.clone()
			clone.cursor = cur
			clone.countAtCursor = count
			clone.bind(step.Name, ev)
			clone.countAtCursor++
			if clone.countAtCursor >= step.Max {
				clone.cursor = cur + 1
				clone.countAtCursor = 0
			}
			return clone, true
		}
		if count >= step.Min {
			cur++
			count = 0
			continue
		}
		return nil, false
	}
	return nil, false
}

func (m *Matcher) handleSequence(ev *record.StreamEvent) []*record.StateEvent {
	var out []*record.StateEvent
	activeBefore := len(m.partials)

	var next []*partial
	for _, p := range m.partials {
		clone, ok := m.tryExtendSequence(p, ev)
		if !ok {
			next = append(next, p)
			continue
		}
		if clone.cursor >= len(m.pattern.Steps) {
			out = append(out, m.toStateEvent(clone, record.Current))
		} else {
			next = append(next, clone)
		}
	}
	m.partials = next

	first := m.pattern.Steps[0]
	if stepMatches(first, ev) && (m.pattern.Every || activeBefore == 0) {
		seed := newPartial(m.nextSeq)
		m.nextSeq++
		seed.startTs = ev.Timestamp
		seed.bind(first.Name, ev)
		seed.countAtCursor = 1
		if seed.countAtCursor >= first.Max {
			seed.cursor = 1
			seed.countAtCursor = 0
		}
		if seed.cursor >= len(m.pattern.Steps) {
			out = append(out, m.toStateEvent(seed, record.Current))
		} else {
			m.partials = append(m.partials, seed)
		}
	}
	return out
}

func (m *Matcher) handleAnd(ev *record.StreamEvent) []*record.StateEvent {
	var out []*record.StateEvent
	activeBefore := len(m.partials)

	var next []*partial
	for _, p := range m.partials {
		extended := false
		clone := p
		for _, step := range m.pattern.Steps {
			if p.matched[step.Name] || !stepMatches(step, ev) {
				continue
			}
			clone = p.clone()
			clone.bind(step.Name, ev)
			clone.matched[step.Name] = true
			extended = true
			break
		}
		if !extended {
			next = append(next, p)
			continue
		}
		if allMatched(m.pattern.Steps, clone.matched) {
			out = append(out, m.toStateEvent(clone, record.Current))
		} else {
			next = append(next, clone)
		}
	}
	m.partials = next

	startable := len(m.pattern.Steps) > 0 && stepMatches(m.pattern.Steps[0], ev)
	if !startable {
		for _, step := range m.pattern.Steps[1:] {
			if stepMatches(step, ev) {
				startable = true
				break
			}
		}
	}
	if startable && (m.pattern.Every || activeBefore == 0) {
		seed := newPartial(m.nextSeq)
		m.nextSeq++
		seed.startTs = ev.Timestamp
		for _, step := range m.pattern.Steps {
			if stepMatches(step, ev) {
				seed.bind(step.Name, ev)
				seed.matched[step.Name] = true
				break
			}
		}
		if allMatched(m.pattern.Steps, seed.matched) {
			out = append(out, m.toStateEvent(seed, record.Current))
		} else {
			m.partials = append(m.partials, seed)
		}
	}
	return out
}

func allMatched(steps []Step, matched map[string]bool) bool {
	for _, s := range steps {
		if !matched[s.Name] {
			return false
		}
	}
	return true
}

// handleOr completes the pattern the instant either step matches;
// OR never needs in-flight partial state beyond honoring EVERY's
// restart gating, since a single event fully satisfies the pattern.
func (m *Matcher) handleOr(ev *record.StreamEvent) []*record.StateEvent {
	if !m.pattern.Every && m.completedOnce {
		return nil
	}
	for _, step := range m.pattern.Steps {
		if !stepMatches(step, ev) {
			continue
		}
		p := newPartial(m.nextSeq)
		m.nextSeq++
		p.startTs = ev.Timestamp
		p.bind(step.Name, ev)
		m.completedOnce = true
		return []*record.StateEvent{m.toStateEvent(p, record.Current)}
	}
	return nil
}
