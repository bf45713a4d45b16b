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

package sink

import (
	"context"
	"sync"

	"github.com/eventflux-io/engine-sub003/logger"
)

// Pool fans Dispatch calls out across registered sinks. Async sinks run
// on a bounded worker pool so one slow endpoint never blocks another;
// when the pool is saturated the task runs directly in the dispatching
// goroutine instead of being dropped, the same degrade-under-pressure
// behavior as the teacher's submitSinkTask. Sync sinks run sequentially,
// in registration order, in the dispatching goroutine.
type Pool struct {
	log logger.Logger

	mu        sync.RWMutex
	sinks     []Sink
	syncSinks []Sink

	tasks chan func()
	done  chan struct{}
}

// NewPool starts workerCount background workers draining the task
// queue. log may be nil, in which case logger.GetDefault() is used.
func NewPool(workerCount int, queueDepth int, log logger.Logger) *Pool {
	if workerCount <= 0 {
		workerCount = 8
	}
	if queueDepth <= 0 {
		queueDepth = 256
	}
	if log == nil {
		log = logger.GetDefault()
	}
	p := &Pool{
		log:   log,
		tasks: make(chan func(), queueDepth),
		done:  make(chan struct{}),
	}
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case task := <-p.tasks:
			p.runRecovered(task)
		case <-p.done:
			return
		}
	}
}

func (p *Pool) runRecovered(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("sink task panic recovered: %v", r)
		}
	}()
	task()
}

// AddSink registers an asynchronous sink.
func (p *Pool) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

// AddSyncSink registers a synchronous sink, run sequentially and
// blocking Dispatch's caller; it should be fast.
func (p *Pool) AddSyncSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncSinks = append(p.syncSinks, s)
}

// Dispatch publishes data to every registered sink: async sinks are
// submitted to the worker pool (or run directly if it's full), sync
// sinks run in order in the caller's goroutine.
func (p *Pool) Dispatch(ctx context.Context, data []byte) {
	p.mu.RLock()
	async := make([]Sink, len(p.sinks))
	copy(async, p.sinks)
	sync := make([]Sink, len(p.syncSinks))
	copy(sync, p.syncSinks)
	p.mu.RUnlock()

	for _, s := range async {
		s := s
		task := func() {
			if err := s.Publish(ctx, data); err != nil {
				p.log.Error("sink publish failed: %v", err)
			}
		}
		select {
		case p.tasks <- task:
		default:
			p.runRecovered(task)
		}
	}

	for _, s := range sync {
		p.runRecovered(func() {
			if err := s.Publish(ctx, data); err != nil {
				p.log.Error("sync sink publish failed: %v", err)
			}
		})
	}
}

// Stop halts every worker goroutine. In-flight tasks already pulled off
// the queue are allowed to finish; anything still queued is abandoned.
func (p *Pool) Stop() {
	close(p.done)
}
