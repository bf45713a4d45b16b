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

// Package sink implements the sink half of the §6.2 contract: a Sink is
// handed bytes (already produced by a sink mapper) and publishes them to
// an external endpoint. Pool fans Publish calls for potentially many
// registered sinks out across a bounded worker pool, panic-recovering
// each task and degrading to a synchronous direct call when the pool is
// saturated — directly grounded on the teacher's
// Stream.startSinkWorkerPool/submitSinkTask.
package sink

import (
	"context"
)

// Sink is one outbound endpoint. Publish accepts a per-operation
// deadline via ctx per §5's cancellation/timeout contract; on timeout
// the operation fails and the configured error strategy (§7) applies.
type Sink interface {
	Publish(ctx context.Context, data []byte) error
}

// Func adapts a plain function to Sink.
type Func func(ctx context.Context, data []byte) error

func (f Func) Publish(ctx context.Context, data []byte) error { return f(ctx, data) }
