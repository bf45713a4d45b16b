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

// Package source implements the source half of the §6.2 contract: a
// Source is handed a Callback and runs until Stop, having first proven
// connectivity. The Start/Stop/atomic-counter shape follows the
// teacher's Stream.Start/Emit/Stop, generalized from "receive data
// pushed synchronously by a caller" to "pull or receive from an
// external endpoint and push into a callback", since a source owns its
// own ingestion loop rather than being driven by caller calls.
package source

import (
	"context"
	"sync/atomic"
)

// Callback is on_data: a source hands every inbound message to it.
// A non-nil error means the mapping/dispatch failed; the source's
// caller (the runtime's wiring) decides the fault.Kind response, not
// the source itself.
type Callback func(data []byte) error

// Source is one ingestion endpoint. ValidateConnectivity MUST be called
// and must succeed before Start per §6.2 and §7's fail-fast
// configuration/connectivity error handling.
type Source interface {
	// ValidateConnectivity proves the endpoint is reachable without
	// starting ingestion.
	ValidateConnectivity(ctx context.Context) error

	// Start runs until ctx is cancelled or Stop is called, calling cb for
	// every inbound message. Start returns once the ingestion loop has
	// exited; it does not block the caller indefinitely on its own — the
	// caller runs it in its own goroutine.
	Start(ctx context.Context, cb Callback) error

	// Stop requests a cooperative shutdown; in-flight callback
	// invocations are allowed to complete.
	Stop() error
}

// Counters tallies a source's ingestion activity for monitoring.
type Counters struct {
	received int64
	errors   int64
}

func (c *Counters) IncReceived() { atomic.AddInt64(&c.received, 1) }
func (c *Counters) IncErrors()   { atomic.AddInt64(&c.errors, 1) }
func (c *Counters) Received() int64 { return atomic.LoadInt64(&c.received) }
func (c *Counters) Errors() int64   { return atomic.LoadInt64(&c.errors) }
