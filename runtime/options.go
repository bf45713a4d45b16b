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

package runtime

import (
	"time"

	"github.com/eventflux-io/engine-sub003/junction"
	"github.com/eventflux-io/engine-sub003/logger"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the Engine's logger in place of the package default.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithDiscardLog silences every log line the Engine would otherwise
// emit, useful for tests asserting on behavior rather than output.
func WithDiscardLog() Option {
	return func(e *Engine) { e.log = logger.NewDiscardLogger() }
}

// WithCheckpoint enables periodic state checkpointing (§4.11). interval
// is the flush period; fullEvery is how many checkpoints pass between
// full snapshots (1 means every checkpoint is full).
func WithCheckpoint(dataDir string, interval time.Duration, fullEvery int64) Option {
	return func(e *Engine) {
		e.checkpointDataDir = dataDir
		e.checkpointInterval = interval
		e.checkpointFullEvery = fullEvery
	}
}

// WithSinkPool sizes the outbound worker pool (§6.2) that AddSink builds
// for each sink it registers; every sink gets its own pool of this size.
func WithSinkPool(workerCount, queueDepth int) Option {
	return func(e *Engine) {
		e.sinkWorkerCount = workerCount
		e.sinkQueueDepth = queueDepth
	}
}

// WithPartitionTTL sets how long an idle partition.Router instance (§4.10)
// survives before being reaped. Zero disables reaping.
func WithPartitionTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.partitionTTL = ttl }
}

// WithSubscriptionBuffer sets the capacity and backpressure policy every
// internal query subscription uses when draining a stream's junction.
func WithSubscriptionBuffer(capacity int, policy junction.Policy) Option {
	return func(e *Engine) {
		e.subCapacity = capacity
		e.subPolicy = policy
	}
}
