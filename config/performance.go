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

// Package config carries the runtime's layered tuning knobs — buffer
// sizes, overflow strategy, worker pool sizing, checkpoint interval and
// monitoring thresholds — and the application-level stream/table/
// trigger/secret definitions loaded from YAML, mirroring the teacher's
// types.PerformanceConfig shape and Default/HighPerformance/LowLatency
// presets.
package config

import "time"

// PerformanceConfig is the runtime's tuning surface: junction buffer
// sizing, backpressure overflow strategy, worker pool sizing, checkpoint
// interval, and monitoring thresholds (SPEC_FULL.md §2).
type PerformanceConfig struct {
	Buffer     BufferConfig     `yaml:"buffer"`
	Overflow   OverflowConfig   `yaml:"overflow"`
	Worker     WorkerConfig     `yaml:"worker"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// BufferConfig sizes each junction consumer's ring buffer (§4.1).
type BufferConfig struct {
	JunctionCapacity  int     `yaml:"junctionCapacity"`
	MaxBufferSize     int     `yaml:"maxBufferSize"`
	UsageThreshold    float64 `yaml:"usageThreshold"`
}

// OverflowConfig names the backpressure Policy (junction.Policy) applied
// when a consumer's buffer is full, plus the Block policy's wait budget.
type OverflowConfig struct {
	Strategy     string        `yaml:"strategy"` // "block", "dropOldest", "dropNewest"
	BlockTimeout time.Duration `yaml:"blockTimeout"`
}

// WorkerConfig sizes the shared worker pool for stateful processors
// (§5's "shared worker pool for stateful processors").
type WorkerConfig struct {
	PoolSize         int `yaml:"poolSize"`
	MaxRetryRoutines int `yaml:"maxRetryRoutines"`
}

// CheckpointConfig drives the checkpoint coordinator (§4.11).
type CheckpointConfig struct {
	Interval     time.Duration `yaml:"interval"`
	Dir          string        `yaml:"dir"`
	Incremental  bool          `yaml:"incremental"`
	RetryOnFail  int           `yaml:"retryOnFail"`
}

// MonitoringConfig gates the junction/fault counter observability named
// as an Observability-adjacent non-goal in spec.md — exposed here as
// plain thresholds rather than a metrics exporter.
type MonitoringConfig struct {
	Enabled             bool          `yaml:"enabled"`
	StatsUpdateInterval time.Duration `yaml:"statsUpdateInterval"`
	DropRateWarning     float64       `yaml:"dropRateWarning"`
	DropRateCritical    float64       `yaml:"dropRateCritical"`
}

// DefaultPerformanceConfig returns balanced settings suitable for most
// workloads.
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		Buffer: BufferConfig{
			JunctionCapacity: 1000,
			MaxBufferSize:    10000,
			UsageThreshold:   0.8,
		},
		Overflow: OverflowConfig{
			Strategy:     "dropOldest",
			BlockTimeout: 5 * time.Second,
		},
		Worker: WorkerConfig{
			PoolSize:         4,
			MaxRetryRoutines: 10,
		},
		Checkpoint: CheckpointConfig{
			Interval:    30 * time.Second,
			Dir:         "./checkpoints",
			RetryOnFail: 1,
		},
		Monitoring: MonitoringConfig{
			Enabled:             false,
			StatsUpdateInterval: 30 * time.Second,
			DropRateWarning:     10.0,
			DropRateCritical:    25.0,
		},
	}
}

// HighThroughputConfig favors large buffers and a bigger worker pool
// over minimal latency; the overflow strategy stays the default's.
func HighThroughputConfig() PerformanceConfig {
	c := DefaultPerformanceConfig()
	c.Buffer.JunctionCapacity = 5000
	c.Buffer.MaxBufferSize = 500000
	c.Worker.PoolSize = 8
	c.Monitoring.Enabled = true
	return c
}

// LowLatencyConfig favors small buffers and blocking backpressure over
// maximum throughput.
func LowLatencyConfig() PerformanceConfig {
	c := DefaultPerformanceConfig()
	c.Buffer.JunctionCapacity = 100
	c.Buffer.MaxBufferSize = 2000
	c.Buffer.UsageThreshold = 0.7
	c.Overflow.Strategy = "block"
	c.Overflow.BlockTimeout = 1 * time.Second
	c.Checkpoint.Interval = 5 * time.Second
	c.Monitoring.Enabled = true
	c.Monitoring.StatsUpdateInterval = 1 * time.Second
	return c
}
