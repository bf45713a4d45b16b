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

package checkpoint

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eventflux-io/engine-sub003/logger"
)

// PauseResume lets the Coordinator drain a consistent cut around a
// checkpoint: Pause must block new input until Resume is called. The
// runtime's input-handler wiring satisfies this; Coordinator has no
// other dependency on it.
type PauseResume interface {
	Pause()
	Resume()
}

// Coordinator periodically captures every registered StateHolder into a
// single compressed, sequenced archive file, following the teacher's
// PersistenceManager shape (a data directory, a flush-interval ticker, a
// stop channel, atomic counters) generalized from "buffer and flush
// ordered input records" to "capture and flush registered processor
// snapshots".
type Coordinator struct {
	dataDir   string
	interval  time.Duration
	fullEvery int64 // write a full archive every N checkpoints; 1 means always full
	log       logger.Logger
	gate      PauseResume

	mu        sync.Mutex
	holders   map[string]StateHolder
	nextID    int64
	lastFull  int64
	completed int64

	enabled int32 // atomic bool; 0 after a persistent write failure disables checkpointing
	healthy int32 // atomic bool mirror of enabled, read by monitoring

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCoordinator builds a Coordinator writing archives under dataDir
// every interval. fullEvery <= 1 means every checkpoint is a full
// snapshot (the §4.11 "Incremental option" is then unused). gate may be
// nil, in which case Checkpoint runs without pausing input — acceptable
// for tests and for holders whose Capture is already a consistent
// atomic snapshot.
func NewCoordinator(dataDir string, interval time.Duration, fullEvery int64, gate PauseResume, log logger.Logger) *Coordinator {
	if fullEvery < 1 {
		fullEvery = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Coordinator{
		dataDir:   dataDir,
		interval:  interval,
		fullEvery: fullEvery,
		gate:      gate,
		log:       log,
		holders:   make(map[string]StateHolder),
		enabled:   1,
		healthy:   1,
	}
}

// Register adds a named holder to the consistent cut taken on every
// Checkpoint call. Registering the same name twice replaces the holder.
func (c *Coordinator) Register(name string, holder StateHolder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holders[name] = holder
}

// Start launches the background interval-driven checkpoint loop.
func (c *Coordinator) Start() {
	c.stopCh = make(chan struct{})
	go c.loop()
}

func (c *Coordinator) loop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.Checkpoint(); err != nil {
				c.log.Error("checkpoint failed: %v", err)
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop halts the background loop. In-flight checkpoints are allowed to
// finish.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		if c.stopCh != nil {
			close(c.stopCh)
		}
	})
}

// Enabled reports whether checkpointing is still active; it flips false
// once a write has failed a retry, per §4.11's Failure paragraph.
func (c *Coordinator) Enabled() bool { return atomic.LoadInt32(&c.enabled) == 1 }

// Healthy mirrors Enabled as the health signal surfaced to monitoring.
func (c *Coordinator) Healthy() bool { return atomic.LoadInt32(&c.healthy) == 1 }

// Checkpoint drains one consistent cut and writes it to disk, retrying
// once on failure before disabling the coordinator. Processing is never
// blocked by a failure: the caller — the interval loop, or a manual
// caller — simply logs and continues.
func (c *Coordinator) Checkpoint() error {
	if !c.Enabled() {
		return fmt.Errorf("checkpoint: coordinator disabled after a prior persistent failure")
	}

	if c.gate != nil {
		c.gate.Pause()
		defer c.gate.Resume()
	}

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	full := c.fullEvery <= 1 || id-c.lastFull >= c.fullEvery
	lastFull := c.lastFull

	holders := make(map[string]StateHolder, len(c.holders))
	for name, h := range c.holders {
		holders[name] = h
	}
	c.mu.Unlock()

	a := archive{ID: id, Full: full, Holders: make(map[string]holderSnapshot, len(holders))}
	for name, h := range holders {
		snap, err := captureOne(h, full, lastFull)
		if err != nil {
			return fmt.Errorf("checkpoint: capture %q: %w", name, err)
		}
		a.Holders[name] = snap
	}

	err := writeArchive(c.dataDir, a)
	if err != nil {
		c.log.Warn("checkpoint write failed, retrying once: %v", err)
		err = writeArchive(c.dataDir, a)
	}
	if err != nil {
		atomic.StoreInt32(&c.enabled, 0)
		atomic.StoreInt32(&c.healthy, 0)
		return fmt.Errorf("checkpoint: persistent write failure, checkpointing disabled: %w", err)
	}

	c.mu.Lock()
	if full {
		c.lastFull = id
	}
	c.completed++
	c.mu.Unlock()
	return nil
}

func captureOne(h StateHolder, full bool, lastFull int64) (holderSnapshot, error) {
	if !full {
		if dh, ok := h.(DeltaStateHolder); ok {
			data, ok, err := dh.Delta(lastFull)
			if err != nil {
				return holderSnapshot{}, err
			}
			if ok {
				return holderSnapshot{Kind: kindDelta, Since: lastFull, Data: data}, nil
			}
		}
	}
	data, err := h.Capture()
	if err != nil {
		return holderSnapshot{}, err
	}
	return holderSnapshot{Kind: kindFull, Data: data}, nil
}

// RestoreLatest loads the newest full archive in dataDir and restores
// each of its holder snapshots into the holders registered under the
// same name. Holders present in the archive but not registered (and
// vice versa) are skipped — a deliberate degrade, since a plan change
// between runs can add or remove stateful processors.
func (c *Coordinator) RestoreLatest() (restoredID int64, found bool, err error) {
	path, id, ok, err := latestFullArchive(c.dataDir)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}

	a, err := readArchive(path)
	if err != nil {
		return 0, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, snap := range a.Holders {
		holder, ok := c.holders[name]
		if !ok {
			continue
		}
		if err := holder.Restore(snap.Data); err != nil {
			return 0, false, fmt.Errorf("checkpoint: restore %q: %w", name, err)
		}
	}
	c.nextID = id + 1
	c.lastFull = id
	return id, true, nil
}
