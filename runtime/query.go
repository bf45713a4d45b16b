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
	"fmt"
	"regexp"
	"sync"

	"github.com/eventflux-io/engine-sub003/aggregator"
	"github.com/eventflux-io/engine-sub003/condition"
	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/join"
	"github.com/eventflux-io/engine-sub003/junction"
	"github.com/eventflux-io/engine-sub003/logger"
	"github.com/eventflux-io/engine-sub003/partition"
	"github.com/eventflux-io/engine-sub003/pattern"
	"github.com/eventflux-io/engine-sub003/plan"
	"github.com/eventflux-io/engine-sub003/processor"
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/table"
	"github.com/eventflux-io/engine-sub003/window"
)

// inputBinding ties one subscription to the handler that drains it;
// Engine.Start launches one goroutine per binding.
type inputBinding struct {
	sub    *junction.Subscription
	handle func(ev *record.StreamEvent)
}

// runStages drives evs through stages[from:], fanning each stage's
// output into the next stage's input and stopping early once a stage
// yields nothing — a Filter rejection or a window that hasn't evicted
// needs no further work downstream. A stage's own error only drops the
// triggering event; it never aborts the rest of the batch, matching the
// teacher's per-record error isolation in its operator pipeline.
//
// An Aggregate stage is the one exception to per-event fan-out: a window
// trigger can hand it a CURRENT paired with its own evicted EXPIRED (or a
// tumbling batch's whole CURRENT/EXPIRED run) in a single cur slice, and
// §4.5 settles that down to one row per distinct key, not one row per
// record. Running it through ProcessBatch over the whole slice at once —
// instead of Process per record — is what makes that settlement happen;
// every other stage kind stays per-event since Filter/Project/Window/etc.
// don't accumulate state across records the same way.
func runStages(stages []processor.Processor, from int, evs []*record.StreamEvent, log logger.Logger) []*record.StreamEvent {
	cur := evs
	for i := from; i < len(stages) && len(cur) > 0; i++ {
		if agg, ok := stages[i].(*processor.Aggregate); ok {
			out, err := agg.ProcessBatch(cur)
			if err != nil {
				if log != nil {
					log.Error("runtime: stage %s: %v", stages[i].Kind(), err)
				}
				cur = nil
				continue
			}
			cur = out
			continue
		}

		var next []*record.StreamEvent
		for _, ev := range cur {
			out, err := stages[i].Process(ev)
			if err != nil {
				if log != nil {
					log.Error("runtime: stage %s: %v", stages[i].Kind(), err)
				}
				continue
			}
			next = append(next, out...)
		}
		cur = next
	}
	return cur
}

// compiledQuery is one unpartitioned query's stage pipeline. mu
// serializes every entry point into the pipeline — the subscription's
// own synchronous Process calls and a window's async timer callback —
// since neither the window nor the aggregator it feeds are safe for
// concurrent mutation.
type compiledQuery struct {
	name      string
	mu        sync.Mutex
	stages    []processor.Processor
	windowIdx int
	log       logger.Logger
}

func (q *compiledQuery) run(from int, evs []*record.StreamEvent) {
	if len(evs) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	runStages(q.stages, from, evs, q.log)
}

// subChain is the per-key copy of a partitioned query's pipeline
// (§4.10): partition.Factory builds a fresh one, with its own window
// and aggregator instances, the first time a key is observed.
type subChain struct {
	mu        sync.Mutex
	stages    []processor.Processor
	windowIdx int
	log       logger.Logger
}

func (c *subChain) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return runStages(c.stages, 0, []*record.StreamEvent{ev}, c.log), nil
}

func (c *subChain) runAsync(from int, evs []*record.StreamEvent) {
	if len(evs) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	runStages(c.stages, from, evs, c.log)
}

func indexOf(names []string, name string) int {
	if name == "" {
		return -1
	}
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func indicesOf(names []string, targets []string) []int {
	out := make([]int, len(targets))
	for i, t := range targets {
		out[i] = indexOf(names, t)
	}
	return out
}

func attrNamesOf(def plan.StreamDef) []string {
	names := make([]string, len(def.Attributes))
	for i, a := range def.Attributes {
		names[i] = a.Name
	}
	return names
}

// tableAttrNames resolves a table's positional schema: a table sharing
// its name with a declared stream (the common "a query inserts into
// this table" shape) borrows that stream's schema; otherwise it falls
// back to the extension's own comma-separated "attributes" config.
func tableAttrNames(e *Engine, tableName string) []string {
	if def, ok := e.plan.Streams[tableName]; ok {
		return attrNamesOf(def)
	}
	if def, ok := e.plan.Tables[tableName]; ok {
		if raw, ok := def.Config["attributes"]; ok && raw != "" {
			return splitAttrs(raw)
		}
	}
	return nil
}

// equiJoinPattern recognizes the single shape this planner derives an
// indexed lookup key from: a bare "S.attr == T.attr" or "T.attr ==
// S.attr" equality spanning the whole ON clause. Anything more — an
// AND'd second clause, a computed expression on either side — falls
// back to the full-scan residual test, same as an uncompilable WHERE
// does for Table.Find in the table package.
var equiJoinPattern = regexp.MustCompile(`^\s*([ST])\.(\w+)\s*==\s*([ST])\.(\w+)\s*$`)

// equiJoinKeyAttr extracts the stream-side and table-side attribute
// names from an ON clause matching equiJoinPattern.
func equiJoinKeyAttr(on string) (streamAttr, tableAttr string, ok bool) {
	m := equiJoinPattern.FindStringSubmatch(on)
	if m == nil {
		return "", "", false
	}
	if m[1] == "S" && m[3] == "T" {
		return m[2], m[4], true
	}
	if m[1] == "T" && m[3] == "S" {
		return m[4], m[2], true
	}
	return "", "", false
}

// tableKeyAttrNames resolves the attribute names forming a table's
// indexed key, from its extension config's comma-separated "key"
// (§4.9's index key, disjoint from the positional "attributes" schema
// used elsewhere), empty when the table declares none.
func tableKeyAttrNames(e *Engine, tableName string) []string {
	def, ok := e.plan.Tables[tableName]
	if !ok {
		return nil
	}
	raw, ok := def.Config["key"]
	if !ok || raw == "" {
		return nil
	}
	return splitAttrs(raw)
}

func splitAttrs(raw string) []string {
	var names []string
	start := 0
	for i := 0; i <= len(raw); i++ {
		if i == len(raw) || raw[i] == ',' {
			if i > start {
				names = append(names, raw[start:i])
			}
			start = i + 1
		}
	}
	return names
}

func joinKind(name string) (join.Kind, error) {
	switch name {
	case "inner", "":
		return join.Inner, nil
	case "left":
		return join.Left, nil
	case "right":
		return join.Right, nil
	case "full":
		return join.Full, nil
	default:
		return join.Inner, fmt.Errorf("runtime: unknown join kind %q", name)
	}
}

func patternMode(name string) (pattern.Mode, error) {
	switch name {
	case "sequence", "":
		return pattern.Sequence, nil
	case "and":
		return pattern.And, nil
	case "or":
		return pattern.Or, nil
	default:
		return pattern.Sequence, fmt.Errorf("runtime: unknown pattern mode %q", name)
	}
}

// buildStages compiles the common SQL-evaluation-order suffix shared by
// every input shape: an optional WHERE, an optional window, an optional
// GROUP BY aggregation, an optional HAVING, an optional SELECT
// projection, and the query's terminal Insert. withWindow is nil for
// InputJoin/InputPattern queries, whose windowing already happened
// inside the join/pattern stage itself.
func buildStages(e *Engine, q plan.Query, inputAttrNames []string, withWindow *plan.WindowSpec) ([]processor.Processor, int, error) {
	var stages []processor.Processor
	windowIdx := -1
	attrNames := append([]string(nil), inputAttrNames...)

	if q.Filter != "" {
		f, err := processor.NewFilter(q.Filter, expression.SingleStream(attrNames))
		if err != nil {
			return nil, -1, fmt.Errorf("runtime: query %q WHERE: %w", q.Name, err)
		}
		stages = append(stages, f)
	}

	if withWindow != nil {
		cfg, err := windowConfig(withWindow)
		if err != nil {
			return nil, -1, fmt.Errorf("runtime: query %q window: %w", q.Name, err)
		}
		w, err := window.New(cfg)
		if err != nil {
			return nil, -1, fmt.Errorf("runtime: query %q window: %w", q.Name, err)
		}
		windowIdx = len(stages)
		stages = append(stages, processor.NewWindow(w))
	}

	if len(q.GroupBy) > 0 || len(q.Aggregates) > 0 {
		keyAttrs := indicesOf(attrNames, q.GroupBy)
		specs := make([]aggregator.OutputSpec, len(q.Aggregates))
		outNames := make([]string, len(q.Aggregates))
		for i, a := range q.Aggregates {
			specs[i] = aggregator.OutputSpec{Name: a.OutputName, Kind: a.Kind, SourceAttr: indexOf(attrNames, a.SourceAttr)}
			outNames[i] = a.OutputName
		}
		g := aggregator.NewGrouped(specs, keyAttrs)
		stages = append(stages, processor.NewAggregate(q.Name+"#agg", g, q.GroupBy, outNames))
		attrNames = append(append([]string(nil), q.GroupBy...), outNames...)
	}

	if q.Having != "" {
		f, err := processor.NewFilter(q.Having, expression.SingleStream(attrNames))
		if err != nil {
			return nil, -1, fmt.Errorf("runtime: query %q HAVING: %w", q.Name, err)
		}
		stages = append(stages, f)
	}

	if len(q.Projections) > 0 {
		schema := expression.SingleStream(attrNames)
		specs := make([]processor.ColumnSpec, len(q.Projections))
		for i, p := range q.Projections {
			src := p.Expr
			if src == "" {
				src = p.OutputName
			}
			specs[i] = processor.ColumnSpec{Name: p.OutputName, Source: src}
		}
		proj, err := processor.NewProject(q.Name, schema, specs)
		if err != nil {
			return nil, -1, fmt.Errorf("runtime: query %q SELECT: %w", q.Name, err)
		}
		stages = append(stages, proj)
	}

	switch {
	case q.OutputStream != "":
		stages = append(stages, processor.NewInsertIntoStream(e.junctionFor(q.OutputStream), e.ctx))
	case q.OutputTable != "":
		t, ok := e.tables[q.OutputTable]
		if !ok {
			return nil, -1, fmt.Errorf("runtime: query %q targets unknown table %q", q.Name, q.OutputTable)
		}
		stages = append(stages, processor.NewInsertIntoTable(t))
	default:
		return nil, -1, fmt.Errorf("runtime: query %q names neither an output stream nor an output table", q.Name)
	}

	return stages, windowIdx, nil
}

// compileQuery builds one plan.Query's pipeline and wires its
// subscriptions, appending to e.inputs and, for a partitioned query,
// e.partitionRouters.
func compileQuery(e *Engine, q plan.Query) error {
	switch q.InputKind {
	case plan.InputStream:
		return compileStreamQuery(e, q)
	case plan.InputJoin:
		if q.Join == nil {
			return fmt.Errorf("runtime: query %q is InputJoin with no JoinSpec", q.Name)
		}
		if q.Join.Kind == "table" {
			return compileTableJoinQuery(e, q)
		}
		return compileStreamJoinQuery(e, q)
	case plan.InputPattern:
		return compilePatternQuery(e, q)
	default:
		return fmt.Errorf("runtime: query %q has unknown InputKind", q.Name)
	}
}

func compileStreamQuery(e *Engine, q plan.Query) error {
	def, ok := e.plan.Streams[q.Stream]
	if !ok {
		return fmt.Errorf("runtime: query %q reads unknown stream %q", q.Name, q.Stream)
	}
	attrNames := attrNamesOf(def)

	if q.PartitionKey == "" {
		stages, windowIdx, err := buildStages(e, q, attrNames, q.StreamWindow)
		if err != nil {
			return err
		}
		cq := &compiledQuery{name: q.Name, stages: stages, windowIdx: windowIdx, log: e.log}
		if windowIdx >= 0 {
			w := stages[windowIdx].(*processor.Window).Underlying()
			w.SetCallback(func(evs []*record.StreamEvent) { cq.run(windowIdx+1, evs) })
			if e.checkpoint != nil {
				e.checkpoint.Register(q.Name, w)
			}
			e.trackWindow(w)
		}
		sub := e.junctionFor(q.Stream).Subscribe(q.Name, e.subCapacity, e.subPolicy)
		e.inputs = append(e.inputs, inputBinding{sub: sub, handle: func(ev *record.StreamEvent) {
			cq.run(0, []*record.StreamEvent{ev})
		}})
		return nil
	}

	// Partitioned: validate once up front so a misconfigured query fails
	// at compile time rather than on the first key ever observed.
	if _, _, err := buildStages(e, q, attrNames, q.StreamWindow); err != nil {
		return err
	}
	keyIdx := indexOf(attrNames, q.PartitionKey)
	if keyIdx < 0 {
		return fmt.Errorf("runtime: query %q partitions on unknown attribute %q", q.Name, q.PartitionKey)
	}
	factory := func() partition.Instance {
		stages, windowIdx, err := buildStages(e, q, attrNames, q.StreamWindow)
		if err != nil {
			e.log.Error("runtime: query %q: rebuilding partition instance: %v", q.Name, err)
			return &subChain{log: e.log, windowIdx: -1}
		}
		sc := &subChain{stages: stages, windowIdx: windowIdx, log: e.log}
		if windowIdx >= 0 {
			w := stages[windowIdx].(*processor.Window).Underlying()
			w.SetCallback(func(evs []*record.StreamEvent) { sc.runAsync(windowIdx+1, evs) })
			e.trackWindow(w)
		}
		return sc
	}
	router := partition.New(keyIdx, factory, e.partitionTTL)
	e.partitionRouters = append(e.partitionRouters, router)
	pstage := processor.NewPartition(router)
	sub := e.junctionFor(q.Stream).Subscribe(q.Name, e.subCapacity, e.subPolicy)
	e.inputs = append(e.inputs, inputBinding{sub: sub, handle: func(ev *record.StreamEvent) {
		if _, err := pstage.Process(ev); err != nil {
			e.log.Error("runtime: query %q: %v", q.Name, err)
		}
	}})
	return nil
}

func compileStreamJoinQuery(e *Engine, q plan.Query) error {
	js := q.Join
	leftDef, ok := e.plan.Streams[js.LeftStream]
	if !ok {
		return fmt.Errorf("runtime: query %q joins unknown stream %q", q.Name, js.LeftStream)
	}
	rightDef, ok := e.plan.Streams[js.RightStream]
	if !ok {
		return fmt.Errorf("runtime: query %q joins unknown stream %q", q.Name, js.RightStream)
	}
	if js.LeftWindow == nil || js.RightWindow == nil {
		return fmt.Errorf("runtime: query %q: a stream-stream join requires both sides windowed", q.Name)
	}
	leftAttrs := attrNamesOf(leftDef)
	rightAttrs := attrNamesOf(rightDef)

	lcfg, err := windowConfig(js.LeftWindow)
	if err != nil {
		return fmt.Errorf("runtime: query %q left window: %w", q.Name, err)
	}
	rcfg, err := windowConfig(js.RightWindow)
	if err != nil {
		return fmt.Errorf("runtime: query %q right window: %w", q.Name, err)
	}
	lw, err := window.New(lcfg)
	if err != nil {
		return fmt.Errorf("runtime: query %q left window: %w", q.Name, err)
	}
	rw, err := window.New(rcfg)
	if err != nil {
		return fmt.Errorf("runtime: query %q right window: %w", q.Name, err)
	}

	schema := expression.Schema{
		Chains:    []string{"L", "R"},
		AttrNames: map[string][]string{"L": leftAttrs, "R": rightAttrs},
	}
	cond, err := condition.Compile(js.On, schema)
	if err != nil {
		return fmt.Errorf("runtime: query %q ON: %w", q.Name, err)
	}
	kind, err := joinKind(js.Kind)
	if err != nil {
		return fmt.Errorf("runtime: query %q: %w", q.Name, err)
	}
	sj := join.New(kind, lw, rw, cond)
	if e.checkpoint != nil {
		e.checkpoint.Register(q.Name+"#L", lw)
		e.checkpoint.Register(q.Name+"#R", rw)
	}
	e.trackWindow(lw)
	e.trackWindow(rw)

	outputAttrs := append(append([]string(nil), leftAttrs...), rightAttrs...)
	stages, _, err := buildStages(e, q, outputAttrs, nil)
	if err != nil {
		return err
	}
	cq := &compiledQuery{name: q.Name, stages: stages, windowIdx: -1, log: e.log}

	flatten := processor.NewFlattener(q.Name, []string{"L", "R"}, []int{len(leftAttrs), len(rightAttrs)})
	sj.SetCallback(func(composites []*record.StateEvent) {
		evs := make([]*record.StreamEvent, len(composites))
		for i, c := range composites {
			evs[i] = flatten(c)
		}
		cq.run(0, evs)
	})

	leftSide := processor.NewStreamJoinSide(sj, true, q.Name, len(leftAttrs), len(rightAttrs))
	rightSide := processor.NewStreamJoinSide(sj, false, q.Name, len(leftAttrs), len(rightAttrs))

	lsub := e.junctionFor(js.LeftStream).Subscribe(q.Name+"#L", e.subCapacity, e.subPolicy)
	rsub := e.junctionFor(js.RightStream).Subscribe(q.Name+"#R", e.subCapacity, e.subPolicy)
	e.inputs = append(e.inputs,
		inputBinding{sub: lsub, handle: func(ev *record.StreamEvent) {
			out, err := leftSide.Process(ev)
			if err != nil {
				e.log.Error("runtime: query %q: %v", q.Name, err)
				return
			}
			cq.run(0, out)
		}},
		inputBinding{sub: rsub, handle: func(ev *record.StreamEvent) {
			out, err := rightSide.Process(ev)
			if err != nil {
				e.log.Error("runtime: query %q: %v", q.Name, err)
				return
			}
			cq.run(0, out)
		}},
	)
	return nil
}

func compileTableJoinQuery(e *Engine, q plan.Query) error {
	js := q.Join
	streamDef, ok := e.plan.Streams[js.LeftStream]
	if !ok {
		return fmt.Errorf("runtime: query %q joins unknown stream %q", q.Name, js.LeftStream)
	}
	tbl, ok := e.tables[js.RightStream]
	if !ok {
		return fmt.Errorf("runtime: query %q joins unknown table %q", q.Name, js.RightStream)
	}
	streamAttrs := attrNamesOf(streamDef)
	tableAttrs := tableAttrNames(e, js.RightStream)

	schema := expression.Schema{
		Chains:    []string{"S", "T"},
		AttrNames: map[string][]string{"S": streamAttrs, "T": tableAttrs},
	}
	cond, err := condition.Compile(js.On, schema)
	if err != nil {
		return fmt.Errorf("runtime: query %q ON: %w", q.Name, err)
	}

	var keyFor func(ev *record.StreamEvent) string
	if streamAttr, tableAttr, ok := equiJoinKeyAttr(js.On); ok {
		if streamIdx := indexOf(streamAttrs, streamAttr); streamIdx >= 0 {
			if keyAttrs := tableKeyAttrNames(e, js.RightStream); len(keyAttrs) == 1 && keyAttrs[0] == tableAttr {
				keyFor = func(ev *record.StreamEvent) string {
					return table.EncodeKey(ev.At(streamIdx))
				}
			}
		}
	}

	tj := join.NewTableJoin(tbl, cond, keyFor)
	proc := processor.NewTableJoin(tj, q.Name, len(streamAttrs), len(tableAttrs))

	outputAttrs := append(append([]string(nil), streamAttrs...), tableAttrs...)
	stages, _, err := buildStages(e, q, outputAttrs, nil)
	if err != nil {
		return err
	}
	cq := &compiledQuery{name: q.Name, stages: stages, windowIdx: -1, log: e.log}

	sub := e.junctionFor(js.LeftStream).Subscribe(q.Name, e.subCapacity, e.subPolicy)
	e.inputs = append(e.inputs, inputBinding{sub: sub, handle: func(ev *record.StreamEvent) {
		out, err := proc.Process(ev)
		if err != nil {
			e.log.Error("runtime: query %q: %v", q.Name, err)
			return
		}
		cq.run(0, out)
	}})
	return nil
}

func compilePatternQuery(e *Engine, q plan.Query) error {
	ps := q.Pattern
	steps := make([]pattern.Step, len(ps.Steps))
	stepNames := make([]string, len(ps.Steps))
	stepWidths := make([]int, len(ps.Steps))
	var outputAttrs []string
	streamsSeen := make(map[string]bool)

	for i, s := range ps.Steps {
		def, ok := e.plan.Streams[s.Stream]
		if !ok {
			return fmt.Errorf("runtime: query %q pattern step %q reads unknown stream %q", q.Name, s.Name, s.Stream)
		}
		attrs := attrNamesOf(def)
		var filter *condition.Condition
		if s.Filter != "" {
			var err error
			filter, err = condition.Compile(s.Filter, expression.SingleStream(attrs))
			if err != nil {
				return fmt.Errorf("runtime: query %q pattern step %q filter: %w", q.Name, s.Name, err)
			}
		}
		step := pattern.NewStep(s.Name, s.Stream, filter)
		if s.Max > 0 {
			step = step.Quantified(s.Min, s.Max)
		}
		steps[i] = step
		stepNames[i] = s.Name
		stepWidths[i] = len(attrs)
		outputAttrs = append(outputAttrs, attrs...)
		streamsSeen[s.Stream] = true
	}

	mode, err := patternMode(ps.Mode)
	if err != nil {
		return fmt.Errorf("runtime: query %q: %w", q.Name, err)
	}
	m := pattern.New(pattern.Pattern{Steps: steps, Mode: mode, Every: ps.Every, Within: ps.Within})
	proc := processor.NewPattern(m, q.Name, stepNames, stepWidths)

	stages, _, err := buildStages(e, q, outputAttrs, nil)
	if err != nil {
		return err
	}
	cq := &compiledQuery{name: q.Name, stages: stages, windowIdx: -1, log: e.log}

	for stream := range streamsSeen {
		sub := e.junctionFor(stream).Subscribe(q.Name+"#"+stream, e.subCapacity, e.subPolicy)
		e.inputs = append(e.inputs, inputBinding{sub: sub, handle: func(ev *record.StreamEvent) {
			out, err := proc.Process(ev)
			if err != nil {
				e.log.Error("runtime: query %q: %v", q.Name, err)
				return
			}
			cq.run(0, out)
		}})
	}
	return nil
}
