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

// Package runtime wires a plan.LogicalPlan into a live engine: it
// compiles every Query into a processor.Processor chain, subscribes
// each chain to the junctions its input streams publish to, and owns
// the background goroutines (query input loops, window timers,
// partition reapers, the checkpoint coordinator, the sink pool) that
// keep it running. This is the generalization of the teacher's
// Streamsql+stream.Stream pair — a single SQL string compiled and run
// against one implicit input channel — to "many already-planned
// queries, reading from and writing to a shared junction graph".
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eventflux-io/engine-sub003/checkpoint"
	"github.com/eventflux-io/engine-sub003/fault"
	"github.com/eventflux-io/engine-sub003/junction"
	"github.com/eventflux-io/engine-sub003/logger"
	"github.com/eventflux-io/engine-sub003/mapper"
	"github.com/eventflux-io/engine-sub003/partition"
	"github.com/eventflux-io/engine-sub003/plan"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/sink"
	"github.com/eventflux-io/engine-sub003/source"
	"github.com/eventflux-io/engine-sub003/table"
	"github.com/eventflux-io/engine-sub003/window"
	"github.com/google/uuid"
)

// gate implements checkpoint.PauseResume over every query input
// goroutine: Pause takes the write lock, blocking until every
// in-flight handler has returned and new ones stop starting, giving the
// coordinator a consistent cut; Resume releases it.
type gate struct {
	mu sync.RWMutex
}

func (g *gate) Pause()  { g.mu.Lock() }
func (g *gate) Resume() { g.mu.Unlock() }

// sourceBinding tracks one AddSource registration so Start can launch
// its ingestion loop and Stop can tear it down.
type sourceBinding struct {
	name   string
	src    source.Source
	stream string
	schema mapper.Schema
	mp     mapper.SourceMapper
}

// sinkBinding tracks one AddSink registration: a drain subscription on
// the target stream's junction, mapped through a SinkMapper and handed
// to a dedicated sink.Pool — one pool per sink, not shared across
// bindings, since sink.Pool.Dispatch broadcasts to every sink it holds
// and two different streams' sinks must never receive each other's
// bytes.
type sinkBinding struct {
	sub    *junction.Subscription
	mapper mapper.SinkMapper
	schema mapper.Schema
	pool   *sink.Pool
}

// Engine is a running instance of a compiled LogicalPlan.
type Engine struct {
	log   logger.Logger
	plan  *plan.LogicalPlan
	gate  *gate
	ctx   context.Context
	cancel context.CancelFunc
	wg    sync.WaitGroup

	junctions map[string]*junction.Junction
	tables    map[string]table.Table

	inputs           []inputBinding
	partitionRouters []*partition.Router

	counters *fault.Counters

	subCapacity int
	subPolicy   junction.Policy
	partitionTTL time.Duration

	checkpointDataDir   string
	checkpointInterval  time.Duration
	checkpointFullEvery int64
	checkpoint          *checkpoint.Coordinator

	sinkWorkerCount int
	sinkQueueDepth  int

	sources []*sourceBinding
	sinks   []*sinkBinding

	windowsMu sync.Mutex
	windows   []window.Window
	started   bool
}

// trackWindow registers w so Start/Stop drive its lifecycle (§4.4: Sliding
// and TimeBatch windows run a background ticker that only exists between
// Start and Stop). compileQuery calls this for every window it builds,
// including ones a partition.Factory constructs lazily for a new key after
// the engine is already running, in which case w is started immediately
// rather than waiting for a Start call that already happened.
func (e *Engine) trackWindow(w window.Window) {
	e.windowsMu.Lock()
	defer e.windowsMu.Unlock()
	e.windows = append(e.windows, w)
	if e.started {
		w.Start()
	}
}

// New compiles p into a ready-to-Start Engine: every declared stream and
// query output gets a junction, every declared table is built through
// TableBuilders, and every query is compiled into its processor chain.
func New(p *plan.LogicalPlan, opts ...Option) (*Engine, error) {
	e := &Engine{
		log:          logger.GetDefault(),
		plan:         p,
		gate:         &gate{},
		junctions:    make(map[string]*junction.Junction),
		tables:       make(map[string]table.Table),
		counters:     &fault.Counters{},
		subCapacity:  1024,
		subPolicy:    junction.Block,
		sinkWorkerCount: 8,
		sinkQueueDepth:  256,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	for name := range p.Streams {
		e.junctionFor(name)
	}
	for _, q := range p.Queries {
		if q.OutputStream != "" {
			e.junctionFor(q.OutputStream)
		}
	}

	for name, def := range p.Tables {
		builder, ok := TableBuilders.Get(def.Extension)
		if !ok {
			return nil, fmt.Errorf("runtime: table %q names unregistered extension %q", name, def.Extension)
		}
		t, err := builder(def.Config)
		if err != nil {
			return nil, fmt.Errorf("runtime: building table %q: %w", name, err)
		}
		e.tables[name] = t
	}

	if e.checkpointDataDir != "" {
		e.checkpoint = checkpoint.NewCoordinator(e.checkpointDataDir, e.checkpointInterval, e.checkpointFullEvery, e.gate, e.log)
	}

	for _, q := range p.Queries {
		if err := compileQuery(e, q); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// junctionFor returns the junction for name, creating it if this is the
// first reference — an output stream never named in plan.Streams (a
// purely derived intermediate) still needs one.
func (e *Engine) junctionFor(name string) *junction.Junction {
	if j, ok := e.junctions[name]; ok {
		return j
	}
	j := junction.New(name)
	e.junctions[name] = j
	return j
}

// Counters exposes the engine's fault counters (§7) for monitoring.
func (e *Engine) Counters() *fault.Counters { return e.counters }

// Table returns the table registered under name (§4.9), letting a
// caller seed or inspect it directly rather than through the stream
// that feeds it — e.g. preloading a stream-table enrichment join's
// right side before the first record arrives.
func (e *Engine) Table(name string) (table.Table, bool) {
	t, ok := e.tables[name]
	return t, ok
}

// Start launches every query's input goroutines, the checkpoint
// coordinator, every partition router's reaper, and every registered
// source.
func (e *Engine) Start() error {
	e.windowsMu.Lock()
	e.started = true
	for _, w := range e.windows {
		w.Start()
	}
	e.windowsMu.Unlock()

	for _, in := range e.inputs {
		in := in
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for {
				ev, ok := in.sub.Pop(e.ctx)
				if !ok {
					return
				}
				e.gate.mu.RLock()
				in.handle(ev)
				e.gate.mu.RUnlock()
			}
		}()
	}

	for _, r := range e.partitionRouters {
		r.Start()
	}

	if e.checkpoint != nil {
		if _, _, err := e.checkpoint.RestoreLatest(); err != nil {
			e.log.Warn("runtime: checkpoint restore: %v", err)
		}
		e.checkpoint.Start()
	}

	for _, sb := range e.sources {
		sb := sb
		if err := sb.src.ValidateConnectivity(e.ctx); err != nil {
			return fmt.Errorf("runtime: source %q: %w", sb.name, err)
		}
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			if err := sb.src.Start(e.ctx, e.sourceCallback(sb)); err != nil {
				e.log.Error("runtime: source %q: %v", sb.name, err)
			}
		}()
	}

	for _, snk := range e.sinks {
		snk := snk
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for {
				ev, ok := snk.sub.Pop(e.ctx)
				if !ok {
					return
				}
				row := mapper.ValuesToRow(ev.Values, snk.schema)
				data, err := snk.mapper.Map([]mapper.Row{row}, snk.schema)
				if err != nil {
					e.counters.IncMappingError()
					continue
				}
				snk.pool.Dispatch(e.ctx, data)
			}
		}()
	}

	return nil
}

// Stop cooperatively shuts the engine down: it cancels every goroutine's
// context, stops the checkpoint coordinator and sink pool, then waits
// for every goroutine to exit.
func (e *Engine) Stop() {
	e.cancel()
	e.windowsMu.Lock()
	for _, w := range e.windows {
		w.Stop()
	}
	e.windowsMu.Unlock()
	for _, sb := range e.sources {
		_ = sb.src.Stop()
	}
	for _, r := range e.partitionRouters {
		r.Stop()
	}
	if e.checkpoint != nil {
		e.checkpoint.Stop()
	}
	for _, j := range e.junctions {
		j.Close()
	}
	for _, snk := range e.sinks {
		snk.pool.Stop()
	}
	e.wg.Wait()
}

// Subscribe hands back a direct read path on stream's junction, the
// programmatic counterpart to AddSink for a caller that wants raw
// StreamEvents rather than mapped bytes (tests, embedding callers).
func (e *Engine) Subscribe(stream, name string, capacity int, policy junction.Policy) *junction.Subscription {
	return e.junctionFor(stream).Subscribe(name, capacity, policy)
}

// Publish injects one event directly into stream's junction, the
// programmatic counterpart to a configured Source (mirrors the
// teacher's Streamsql.AddData/Emit path).
func (e *Engine) Publish(stream string, values []record.Value, ts int64) error {
	j, ok := e.junctions[stream]
	if !ok {
		return fmt.Errorf("runtime: unknown stream %q", stream)
	}
	j.Publish(e.ctx, record.NewStreamEvent(stream, ts, values))
	return nil
}

// sourceCallback builds the source.Callback that maps inbound bytes
// through sb's mapper and publishes each resulting row onto the
// stream's junction.
func (e *Engine) sourceCallback(sb *sourceBinding) source.Callback {
	return func(data []byte) error {
		rows, err := sb.mp.Map(data, sb.schema)
		if err != nil {
			e.counters.IncMappingError()
			return err
		}
		for _, row := range rows {
			values := mapper.RowToValues(row, sb.schema)
			if err := e.Publish(sb.stream, values, time.Now().UnixNano()); err != nil {
				return err
			}
		}
		return nil
	}
}

// AddSource registers src as an ingestion endpoint feeding streamName,
// mapping inbound bytes via the format registered under formatName
// (§6.2). Sources are validated and started by Start, never before.
func (e *Engine) AddSource(streamName string, src source.Source, formatName string) error {
	def, ok := e.plan.Streams[streamName]
	if !ok {
		return fmt.Errorf("runtime: source targets unknown stream %q", streamName)
	}
	pair, ok := MapperBuilders.Get(formatName)
	if !ok {
		return fmt.Errorf("runtime: unregistered mapper format %q", formatName)
	}
	schema, err := mapper.ToSchema(attrSpecsOf(def))
	if err != nil {
		return err
	}
	e.sources = append(e.sources, &sourceBinding{
		name:   uuid.NewString(),
		src:    src,
		stream: streamName,
		schema: schema,
		mp:     pair.source,
	})
	return nil
}

// AddSink registers s as an outbound endpoint draining streamName,
// mapping each event through the format registered under formatName and
// dispatching the resulting bytes via a dedicated sink.Pool.
func (e *Engine) AddSink(streamName string, s sink.Sink, formatName string) error {
	def, ok := e.plan.Streams[streamName]
	if !ok {
		return fmt.Errorf("runtime: sink targets unknown stream %q", streamName)
	}
	pair, ok := MapperBuilders.Get(formatName)
	if !ok {
		return fmt.Errorf("runtime: unregistered mapper format %q", formatName)
	}
	schema, err := mapper.ToSchema(attrSpecsOf(def))
	if err != nil {
		return err
	}

	pool := sink.NewPool(e.sinkWorkerCount, e.sinkQueueDepth, e.log)
	pool.AddSink(s)

	sub := e.junctionFor(streamName).Subscribe("sink-"+uuid.NewString(), e.subCapacity, e.subPolicy)
	e.sinks = append(e.sinks, &sinkBinding{sub: sub, mapper: pair.sink, schema: schema, pool: pool})
	return nil
}

func attrSpecsOf(def plan.StreamDef) []mapper.AttrSpec {
	specs := make([]mapper.AttrSpec, len(def.Attributes))
	for i, a := range def.Attributes {
		specs[i] = mapper.AttrSpec{Name: a.Name, Type: a.Type}
	}
	return specs
}
