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

package fault

import "sync/atomic"

// MappingStrategy is the per-stream response to a MappingError (§7),
// configured alongside a stream definition.
type MappingStrategy int

const (
	Drop MappingStrategy = iota
	Retry
	Dlq
	Fail
)

func (s MappingStrategy) String() string {
	switch s {
	case Drop:
		return "drop"
	case Retry:
		return "retry"
	case Dlq:
		return "dlq"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Counters tallies the degrade-not-crash events of §7 so a monitoring
// layer can surface them, generalized from the teacher's
// stream.StatsCollector's plain atomic int64 fields.
type Counters struct {
	expressionErrors     int64
	invariantViolations  int64
	backpressureDrops    int64
	checkpointErrors     int64
	partialMatchTimeouts int64
	mappingErrors        int64
}

func (c *Counters) IncExpressionError()     { atomic.AddInt64(&c.expressionErrors, 1) }
func (c *Counters) IncInvariantViolation()   { atomic.AddInt64(&c.invariantViolations, 1) }
func (c *Counters) IncBackpressureDrop()     { atomic.AddInt64(&c.backpressureDrops, 1) }
func (c *Counters) IncCheckpointError()      { atomic.AddInt64(&c.checkpointErrors, 1) }
func (c *Counters) IncPartialMatchTimeout()  { atomic.AddInt64(&c.partialMatchTimeouts, 1) }
func (c *Counters) IncMappingError()         { atomic.AddInt64(&c.mappingErrors, 1) }

func (c *Counters) ExpressionErrors() int64     { return atomic.LoadInt64(&c.expressionErrors) }
func (c *Counters) InvariantViolations() int64   { return atomic.LoadInt64(&c.invariantViolations) }
func (c *Counters) BackpressureDrops() int64     { return atomic.LoadInt64(&c.backpressureDrops) }
func (c *Counters) CheckpointErrors() int64      { return atomic.LoadInt64(&c.checkpointErrors) }
func (c *Counters) PartialMatchTimeouts() int64  { return atomic.LoadInt64(&c.partialMatchTimeouts) }
func (c *Counters) MappingErrors() int64         { return atomic.LoadInt64(&c.mappingErrors) }

// Snapshot returns every counter's current value by name, for a
// monitoring endpoint or a test assertion.
func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"expression_errors":      c.ExpressionErrors(),
		"invariant_violations":   c.InvariantViolations(),
		"backpressure_drops":     c.BackpressureDrops(),
		"checkpoint_errors":      c.CheckpointErrors(),
		"partial_match_timeouts": c.PartialMatchTimeouts(),
		"mapping_errors":         c.MappingErrors(),
	}
}
