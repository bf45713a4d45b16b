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

package join

import (
	"sync"

	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/window"
)

// Kind names a stream-stream join variant (§4.6).
type Kind int

const (
	Inner Kind = iota
	Left
	Right
	Full
)

const (
	chainL = "L"
	chainR = "R"
)

// StreamJoin consumes records from two windowed streams and emits
// StateEvents composed of matched (L, R) slots, per §4.6's contract.
// It wraps both windows rather than owning storage itself: matching
// probes the live side's Current() snapshot, and timer-driven window
// emissions (timeBatch, sliding) reach the join through the callback
// each window was given at construction.
type StreamJoin struct {
	kind Kind
	cond *condition.Condition
	left window.Window
	right window.Window

	mu       sync.Mutex
	leftPad  map[*record.StreamEvent]*record.StateEvent
	rightPad map[*record.StreamEvent]*record.StateEvent
	callback func([]*record.StateEvent)
}

// New builds a StreamJoin over left/right and registers itself as each
// window's callback so timer-driven emissions flow through the same
// matching logic as synchronous Add calls.
func New(kind Kind, left, right window.Window, cond *condition.Condition) *StreamJoin {
	j := &StreamJoin{
		kind:     kind,
		cond:     cond,
		left:     left,
		right:    right,
		leftPad:  make(map[*record.StreamEvent]*record.StateEvent),
		rightPad: make(map[*record.StreamEvent]*record.StateEvent),
	}
	left.SetCallback(func(evs []*record.StreamEvent) { j.publish(j.processSide(true, evs)) })
	right.SetCallback(func(evs []*record.StreamEvent) { j.publish(j.processSide(false, evs)) })
	return j
}

// SetCallback registers the consumer of this join's composite output.
func (j *StreamJoin) SetCallback(cb func([]*record.StateEvent)) { j.callback = cb }

func (j *StreamJoin) publish(out []*record.StateEvent) {
	if j.callback != nil && len(out) > 0 {
		j.callback(out)
	}
}

// AddLeft feeds ev into the left window and returns the composites
// produced synchronously (the window's own CURRENT/EXPIRED output run
// through the join's matching logic).
func (j *StreamJoin) AddLeft(ev *record.StreamEvent) []*record.StateEvent {
	return j.processSide(true, j.left.Add(ev))
}

// AddRight is AddLeft's mirror for the right stream.
func (j *StreamJoin) AddRight(ev *record.StreamEvent) []*record.StateEvent {
	return j.processSide(false, j.right.Add(ev))
}

func (j *StreamJoin) preserves(isLeft bool) bool {
	switch j.kind {
	case Full:
		return true
	case Left:
		return isLeft
	case Right:
		return !isLeft
	default:
		return false
	}
}

func (j *StreamJoin) padMap(isLeft bool) map[*record.StreamEvent]*record.StateEvent {
	if isLeft {
		return j.leftPad
	}
	return j.rightPad
}

func (j *StreamJoin) composite(isLeft bool, mine, other *record.StreamEvent, t record.EventType) *record.StateEvent {
	se := record.NewStateEvent([]string{chainL, chainR})
	if isLeft {
		se = se.WithChain(chainL, mine).WithChain(chainR, other)
	} else {
		se = se.WithChain(chainR, mine).WithChain(chainL, other)
	}
	se.Type = t
	return se
}

func withdrawn(se *record.StateEvent) *record.StateEvent {
	c := se.Clone()
	c.Type = record.Expired
	return c
}

// processSide runs each produced event (the raw Add/callback output of
// one side's window) through the ON condition against the other side's
// current contents, per §4.6's execution and ordering rules: matches are
// emitted in the other window's insertion (probe) order.
func (j *StreamJoin) processSide(isLeft bool, produced []*record.StreamEvent) []*record.StateEvent {
	if len(produced) == 0 {
		return nil
	}
	other := j.right
	if !isLeft {
		other = j.left
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	var out []*record.StateEvent
	for _, ev := range produced {
		otherEvents := other.Current()
		var matches []*record.StreamEvent
		for _, oe := range otherEvents {
			probe := j.composite(isLeft, ev, oe, record.Current)
			if j.cond.Evaluate(probe) {
				matches = append(matches, oe)
			}
		}

		switch ev.Type {
		case record.Current:
			if len(matches) == 0 {
				if j.preserves(isLeft) {
					se := j.composite(isLeft, ev, nil, record.Current)
					j.padMap(isLeft)[ev] = se
					out = append(out, se)
				}
				continue
			}
			otherPad := j.padMap(!isLeft)
			for _, oe := range matches {
				if pad, ok := otherPad[oe]; ok {
					out = append(out, withdrawn(pad))
					delete(otherPad, oe)
				}
				out = append(out, j.composite(isLeft, ev, oe, record.Current))
			}
		case record.Expired:
			if len(matches) == 0 {
				if j.preserves(isLeft) {
					if pad, ok := j.padMap(isLeft)[ev]; ok {
						out = append(out, withdrawn(pad))
						delete(j.padMap(isLeft), ev)
					}
				}
				continue
			}
			for _, oe := range matches {
				out = append(out, j.composite(isLeft, ev, oe, record.Expired))
			}
		}
	}
	return out
}
