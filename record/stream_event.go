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

package record

// EventType tags whether a StreamEvent asserts a fact (Current) or
// retracts one previously emitted (Expired). Every Current event a window
// or join emits is, per the eviction/withdrawal invariant, eventually
// followed by exactly one Expired twin carrying the same attribute values.
type EventType uint8

const (
	Current EventType = iota
	Expired
)

func (t EventType) String() string {
	if t == Expired {
		return "EXPIRED"
	}
	return "CURRENT"
}

// StreamEvent is one positional tuple flowing through a stream, stamped
// with the timestamp it was admitted (or, for window output, the
// timestamp of the window operation that produced it).
type StreamEvent struct {
	Stream    string
	Timestamp int64
	Type      EventType
	Values    []Value

	// Attrs holds additional named outputs attached by aggregators,
	// selectors, or pattern bindings that don't have a positional slot in
	// the original stream schema (e.g. a GROUP BY aggregate column).
	Attrs map[string]Value
}

// NewStreamEvent constructs a Current event with the given positional
// values at the given timestamp.
func NewStreamEvent(stream string, timestamp int64, values []Value) *StreamEvent {
	return &StreamEvent{Stream: stream, Timestamp: timestamp, Type: Current, Values: values}
}

// Clone makes a shallow copy safe to hand to a second consumer of a fan-out
// junction; Values and Attrs are copied so that one consumer mutating its
// copy (e.g. a processor attaching an aggregate Attr) never affects another.
func (e *StreamEvent) Clone() *StreamEvent {
	if e == nil {
		return nil
	}
	values := make([]Value, len(e.Values))
	copy(values, e.Values)
	var attrs map[string]Value
	if e.Attrs != nil {
		attrs = make(map[string]Value, len(e.Attrs))
		for k, v := range e.Attrs {
			attrs[k] = v
		}
	}
	return &StreamEvent{
		Stream:    e.Stream,
		Timestamp: e.Timestamp,
		Type:      e.Type,
		Values:    values,
		Attrs:     attrs,
	}
}

// AsExpired returns a clone stamped Expired, the twin every window/join
// eviction must emit for a previously emitted Current event.
func (e *StreamEvent) AsExpired() *StreamEvent {
	c := e.Clone()
	c.Type = Expired
	return c
}

// At returns the positional value at index, or Null if out of range (a
// schema mismatch that the compiler should have already rejected, but the
// runtime degrades rather than panics per §7).
func (e *StreamEvent) At(index int) Value {
	if e == nil || index < 0 || index >= len(e.Values) {
		return Null()
	}
	return e.Values[index]
}

// Attr returns a named attached attribute, if present.
func (e *StreamEvent) Attr(name string) (Value, bool) {
	if e == nil || e.Attrs == nil {
		return Null(), false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

// SetAttr attaches or overwrites a named attribute, lazily allocating the
// map.
func (e *StreamEvent) SetAttr(name string, v Value) {
	if e.Attrs == nil {
		e.Attrs = make(map[string]Value, 4)
	}
	e.Attrs[name] = v
}
