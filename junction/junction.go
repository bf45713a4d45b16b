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

package junction

import (
	"context"
	"sync"

	"github.com/eventflux-io/engine-sub003/record"
)

// Subscription is one consumer's view of a Junction: its own bounded
// buffer, drained by the consumer's own goroutine via Pop, decoupling its
// pace from every other subscriber and from the publisher.
type Subscription struct {
	name string
	ring *RingBuffer[*record.StreamEvent]
}

func (s *Subscription) Name() string { return s.name }

// Pop blocks for the next delivered record, or returns false once the
// junction has been closed and drained.
func (s *Subscription) Pop(ctx context.Context) (*record.StreamEvent, bool) {
	return s.ring.Pop(ctx)
}

// Dropped reports records discarded for this subscriber under
// DropOldest/DropNewest.
func (s *Subscription) Dropped() int64 { return s.ring.Dropped() }

// Blocked reports how many Publish calls had to wait on this subscriber
// under the Block policy.
func (s *Subscription) Blocked() int64 { return s.ring.Blocked() }

// Junction is the fan-out point for one stream: every StreamEvent handed
// to Publish is cloned and delivered to each current Subscription's own
// buffer, isolating one slow consumer's backpressure from the others.
type Junction struct {
	streamName string

	mu   sync.RWMutex
	subs []*Subscription
}

// New creates a junction for the named stream.
func New(streamName string) *Junction {
	return &Junction{streamName: streamName}
}

func (j *Junction) StreamName() string { return j.streamName }

// Subscribe registers a new consumer with its own bounded buffer and
// backpressure policy.
func (j *Junction) Subscribe(name string, capacity int, policy Policy) *Subscription {
	sub := &Subscription{name: name, ring: NewRingBuffer[*record.StreamEvent](capacity, policy)}
	j.mu.Lock()
	j.subs = append(j.subs, sub)
	j.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes a consumer's buffer.
func (j *Junction) Unsubscribe(sub *Subscription) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i, s := range j.subs {
		if s == sub {
			j.subs = append(j.subs[:i], j.subs[i+1:]...)
			sub.ring.Close()
			return
		}
	}
}

// Publish fans ev out to every current subscriber, cloning it per
// consumer so in-place attribute attachment by one processor never leaks
// to another. It returns once every subscriber's Push call (blocking or
// not, per its own policy) has returned.
func (j *Junction) Publish(ctx context.Context, ev *record.StreamEvent) {
	j.mu.RLock()
	subs := make([]*Subscription, len(j.subs))
	copy(subs, j.subs)
	j.mu.RUnlock()

	for _, s := range subs {
		_, _ = s.ring.Push(ctx, ev.Clone())
	}
}

// Close closes every subscriber's buffer, waking any blocked Pop/Push
// callers so their owning goroutines can exit.
func (j *Junction) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, s := range j.subs {
		s.ring.Close()
	}
	j.subs = nil
}
