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

// Package junction implements the stream junction and its per-consumer
// bounded buffers (§4.1): the fan-out point between a stream's producer
// and each of its subscribed processors, window, or table writer.
package junction

import (
	"context"
	"sync"
	"sync/atomic"
)

// Policy is the backpressure strategy applied when a consumer's buffer is
// full and a new record arrives for it.
type Policy int

const (
	// Block makes the publisher wait for room, propagating backpressure
	// to the producer goroutine.
	Block Policy = iota
	// DropOldest evicts the buffer's oldest item to make room for the new
	// one.
	DropOldest
	// DropNewest discards the incoming item, leaving the buffer untouched.
	DropNewest
)

// RingBuffer is a fixed-capacity circular buffer generalized from the
// teacher's utils/queue.Queue (an atomic-CAS float64 ring) to hold any
// payload type and to support the three backpressure policies of §4.1.
// A mutex replaces the pure CAS loop because Block must be able to park a
// goroutine until room is available, which a lock-free ring cannot do
// without spinning; the drop/blocked counters stay plain atomics so
// readers never contend with the producer/consumer path.
type RingBuffer[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    []T
	head     int
	count    int
	policy   Policy
	closed   bool

	dropped int64
	blocked int64
}

// NewRingBuffer allocates a ring buffer of the given capacity.
func NewRingBuffer[T any](capacity int, policy Policy) *RingBuffer[T] {
	if capacity <= 0 {
		capacity = 1
	}
	rb := &RingBuffer[T]{items: make([]T, capacity), policy: policy}
	rb.notFull = sync.NewCond(&rb.mu)
	rb.notEmpty = sync.NewCond(&rb.mu)
	return rb
}

func (r *RingBuffer[T]) cap() int { return len(r.items) }

// Push enqueues item according to the configured Policy. Under Block it
// waits until room frees up, the buffer is closed, or ctx is done.
// DropOldest/DropNewest never block: Push always returns immediately,
// reporting whether a drop occurred.
func (r *RingBuffer[T]) Push(ctx context.Context, item T) (dropped bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, context.Canceled
	}

	if r.count == r.cap() {
		switch r.policy {
		case DropNewest:
			atomic.AddInt64(&r.dropped, 1)
			return true, nil
		case DropOldest:
			r.dropOldestLocked()
			atomic.AddInt64(&r.dropped, 1)
		default: // Block
			atomic.AddInt64(&r.blocked, 1)
			if err := r.waitForRoom(ctx); err != nil {
				return false, err
			}
		}
	}

	r.pushLocked(item)
	r.notEmpty.Signal()
	return false, nil
}

// waitForRoom parks the caller on notFull until space opens, the buffer
// closes, or ctx is canceled. Must be called with r.mu held; it releases
// and reacquires the lock across the wait the way sync.Cond.Wait always
// does. A watcher goroutine is spun up only when ctx carries a
// cancellation so the common no-context-deadline case pays no extra cost.
func (r *RingBuffer[T]) waitForRoom(ctx context.Context) error {
	if ctx == nil || ctx.Done() == nil {
		for r.count == r.cap() && !r.closed {
			r.notFull.Wait()
		}
		if r.closed {
			return context.Canceled
		}
		return nil
	}

	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.notFull.Broadcast()
			r.mu.Unlock()
			close(done)
		case <-stop:
		}
	}()

	for r.count == r.cap() && !r.closed {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.notFull.Wait()
	}
	if r.closed {
		return context.Canceled
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (r *RingBuffer[T]) pushLocked(item T) {
	tail := (r.head + r.count) % r.cap()
	r.items[tail] = item
	r.count++
}

func (r *RingBuffer[T]) dropOldestLocked() {
	var zero T
	r.items[r.head] = zero
	r.head = (r.head + 1) % r.cap()
	r.count--
}

// Pop dequeues the oldest item, blocking until one is available, the
// buffer is closed, or ctx is done.
func (r *RingBuffer[T]) Pop(ctx context.Context) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.waitForItem(ctx); err != nil {
		var zero T
		return zero, false
	}
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.popLocked(), true
}

// waitForItem parks the caller on notEmpty until an item arrives, the
// buffer closes, or ctx is canceled, mirroring waitForRoom's handling of
// Push's symmetric wait. Must be called with r.mu held.
func (r *RingBuffer[T]) waitForItem(ctx context.Context) error {
	if ctx == nil || ctx.Done() == nil {
		for r.count == 0 && !r.closed {
			r.notEmpty.Wait()
		}
		if r.closed && r.count == 0 {
			return context.Canceled
		}
		return nil
	}

	done := make(chan struct{})
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.notEmpty.Broadcast()
			r.mu.Unlock()
			close(done)
		case <-stop:
		}
	}()

	for r.count == 0 && !r.closed {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.notEmpty.Wait()
	}
	if r.count > 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		if r.closed {
			return context.Canceled
		}
		return nil
	}
}

// TryPop dequeues without blocking.
func (r *RingBuffer[T]) TryPop() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		var zero T
		return zero, false
	}
	return r.popLocked(), true
}

func (r *RingBuffer[T]) popLocked() T {
	item := r.items[r.head]
	var zero T
	r.items[r.head] = zero
	r.head = (r.head + 1) % r.cap()
	r.count--
	r.notFull.Signal()
	return item
}

// Close unblocks any waiting Push/Pop callers; subsequent Pushes fail.
func (r *RingBuffer[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.notFull.Broadcast()
	r.notEmpty.Broadcast()
}

func (r *RingBuffer[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Dropped returns the number of records discarded under DropOldest/
// DropNewest since creation.
func (r *RingBuffer[T]) Dropped() int64 { return atomic.LoadInt64(&r.dropped) }

// Blocked returns the number of times a Block-policy Push had to wait for
// room.
func (r *RingBuffer[T]) Blocked() int64 { return atomic.LoadInt64(&r.blocked) }
