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

// Package plan holds the LogicalPlan the runtime consumes from the SQL
// compiler (§6.1): stream/table definitions, triggers, and queries. The
// compiler itself is out of scope (spec.md's Non-goals); this package is
// the contract boundary, generalized from the teacher's planner package
// ("build a tree of Operators from a parsed rsql.Select AST") to
// "receive an already-built plan struct directly", since no AST exists
// on this side of the boundary.
package plan

import "time"

// Attribute is one positional schema field.
type Attribute struct {
	Name string
	Type string // "int32", "int64", "float32", "float64", "string", "bool", "bytes"
}

// StreamDef is a stream's name and positional attribute schema.
type StreamDef struct {
	Name       string
	Attributes []Attribute
}

// TableDef is a table's name, backing extension name (looked up in the
// table registry), and extension-specific configuration.
type TableDef struct {
	Name      string
	Extension string
	Config    map[string]string
}

// TriggerDef names a scheduled trigger definition.
type TriggerDef struct {
	Name string
	Cron string
}

// InputKind tags a Query's input shape.
type InputKind int

const (
	InputStream InputKind = iota
	InputPattern
	InputJoin
)

// WindowSpec names a per-source window to apply before filtering.
type WindowSpec struct {
	Kind   string // registry name: "length", "time", "session", ...
	Params []interface{}
}

// JoinSpec describes a stream-stream or stream-table join input.
type JoinSpec struct {
	Kind        string // "inner", "left", "right", "full" (stream-stream); "table" (stream-table)
	LeftStream  string
	RightStream string
	LeftWindow  *WindowSpec
	RightWindow *WindowSpec
	On          string // ON-clause expression source
}

// PatternStep mirrors pattern.Step at the plan level, kept as plain data
// so the compiler boundary never imports the condition/pattern packages.
type PatternStep struct {
	Name   string
	Stream string
	Filter string // optional inline filter expression source
	Min    int
	Max    int
}

// PatternSpec describes a FROM PATTERN (...) input.
type PatternSpec struct {
	Steps  []PatternStep
	Mode   string // "sequence", "and", "or"
	Every  bool
	Within time.Duration
}

// AggregateSpec names one GROUP BY output column.
type AggregateSpec struct {
	OutputName string
	Kind       string // "count", "sum", "avg", "min", "max", "stddev", "distinctcount"
	SourceAttr string
}

// Projection names one SELECT output column sourced from an input
// attribute, a CASE expression, or (when GroupBy is non-empty) an
// AggregateSpec computed upstream.
type Projection struct {
	OutputName string
	Expr       string // expr-lang source; empty when sourced from an aggregate
}

// Query is one compiled SELECT statement, directly per §6.1.
type Query struct {
	Name string

	InputKind   InputKind
	Stream      string // InputStream
	StreamWindow *WindowSpec
	Join        *JoinSpec    // InputJoin
	Pattern     *PatternSpec // InputPattern

	Filter string // WHERE-clause expression source, empty if none

	GroupBy     []string // positional/attribute names forming the GROUP BY key
	Aggregates  []AggregateSpec
	Projections []Projection
	Having      string // HAVING-clause expression source, empty if none

	OutputStream string // InsertIntoStream target
	OutputTable  string // InsertIntoTable target, mutually exclusive with OutputStream

	PartitionKey string // empty if unpartitioned
}

// LogicalPlan is the runtime's sole input from the compiler (§6.1).
type LogicalPlan struct {
	Streams  map[string]StreamDef
	Tables   map[string]TableDef
	Triggers []TriggerDef
	Queries  []Query
}

// New builds an empty LogicalPlan ready for a Builder to populate.
func New() *LogicalPlan {
	return &LogicalPlan{
		Streams: make(map[string]StreamDef),
		Tables:  make(map[string]TableDef),
	}
}
