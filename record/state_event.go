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

// StateEvent is a composite record joining one StreamEvent per participating
// chain (join sides, pattern sequence slots). A nil slot in Events means
// "no match on this side yet" — the NULL-padding a LEFT/RIGHT/FULL OUTER
// join or an EVERY pattern produces before every chain has matched.
type StateEvent struct {
	// Chains names each slot in declaration order ("L"/"R" for a two-way
	// join, or the pattern step names for a sequence).
	Chains []string
	Events []*StreamEvent
	Type   EventType
}

// NewStateEvent allocates a StateEvent with n empty (nil) chain slots.
func NewStateEvent(chains []string) *StateEvent {
	return &StateEvent{
		Chains: chains,
		Events: make([]*StreamEvent, len(chains)),
		Type:   Current,
	}
}

// WithChain returns a shallow copy with the named chain's slot set to ev.
// Copy-on-write keeps partially matched pattern states (retained across
// WITHIN windows) from aliasing each other's slices.
func (s *StateEvent) WithChain(chain string, ev *StreamEvent) *StateEvent {
	idx := s.indexOf(chain)
	if idx < 0 {
		return s
	}
	events := make([]*StreamEvent, len(s.Events))
	copy(events, s.Events)
	events[idx] = ev
	return &StateEvent{Chains: s.Chains, Events: events, Type: s.Type}
}

func (s *StateEvent) indexOf(chain string) int {
	for i, c := range s.Chains {
		if c == chain {
			return i
		}
	}
	return -1
}

// Chain returns the StreamEvent bound to the named chain, or nil if that
// chain hasn't matched (OUTER-join NULL padding or an unmatched pattern
// slot).
func (s *StateEvent) Chain(chain string) *StreamEvent {
	idx := s.indexOf(chain)
	if idx < 0 {
		return nil
	}
	return s.Events[idx]
}

// Complete reports whether every chain slot is bound — the point at which
// a pattern sequence or an INNER join emits.
func (s *StateEvent) Complete() bool {
	for _, e := range s.Events {
		if e == nil {
			return false
		}
	}
	return true
}

// AccessPath is the four-element address (chain, index-in-chain, section,
// attribute) used by compiled expressions to pull a value out of a
// StateEvent without string lookups on the hot path. Section 0 addresses
// the chain's positional Values; section 1 addresses its attached Attrs
// (by the same integer Attr slot, resolved to a name at compile time via
// AttrNames).
type AccessPath struct {
	Chain   int
	Index   int
	Section int
	Attr    int
}

const (
	SectionValues = 0
	SectionAttrs  = 1
)

// Resolve walks an AccessPath against a StateEvent. AttrNames maps
// integer Attr slots to the attached-attribute name for Section 1 lookups;
// it may be nil when Section is SectionValues.
func (s *StateEvent) Resolve(path AccessPath, attrNames []string) Value {
	if path.Chain < 0 || path.Chain >= len(s.Events) {
		return Null()
	}
	ev := s.Events[path.Chain]
	if ev == nil {
		return Null()
	}
	switch path.Section {
	case SectionValues:
		return ev.At(path.Attr)
	case SectionAttrs:
		if path.Attr < 0 || path.Attr >= len(attrNames) {
			return Null()
		}
		v, _ := ev.Attr(attrNames[path.Attr])
		return v
	default:
		return Null()
	}
}

// Clone deep-copies the slot slice (not the StreamEvents themselves, which
// are treated as immutable once emitted).
func (s *StateEvent) Clone() *StateEvent {
	events := make([]*StreamEvent, len(s.Events))
	copy(events, s.Events)
	chains := make([]string, len(s.Chains))
	copy(chains, s.Chains)
	return &StateEvent{Chains: chains, Events: events, Type: s.Type}
}
