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

package processor

import (
	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/record"
)

const projectChain = ""

// ProjectColumn pairs one SELECT output attribute with the compiled
// expression that produces it.
type ProjectColumn struct {
	Name string
	Expr *expression.Executor
}

// Project maps each input event into an output event carrying the
// SELECT list's columns, in order. Unlike Filter, Project always changes
// the event's Stream tag to the query's declared output stream — the
// downstream junction it feeds is keyed on that name, not the input's.
type Project struct {
	schema  expression.Schema
	columns []ProjectColumn
	output  string
}

// ColumnSpec names one uncompiled SELECT output column.
type ColumnSpec struct {
	Name   string
	Source string
}

// NewProject compiles every column's source expression against schema.
func NewProject(output string, schema expression.Schema, specs []ColumnSpec) (*Project, error) {
	columns := make([]ProjectColumn, 0, len(specs))
	for _, spec := range specs {
		exec, err := expression.Compile(spec.Source)
		if err != nil {
			return nil, err
		}
		columns = append(columns, ProjectColumn{Name: spec.Name, Expr: exec})
	}
	return &Project{schema: schema, columns: columns, output: output}, nil
}

// NewProjectColumns builds a Project from already-compiled columns,
// useful when a query shares one compiled Executor across a projection
// and a HAVING clause referencing the same expression.
func NewProjectColumns(output string, schema expression.Schema, columns []ProjectColumn) *Project {
	return &Project{schema: schema, columns: columns, output: output}
}

func (p *Project) Kind() Kind { return ProjectKind }

// Process evaluates every column against ev and emits one output event
// carrying the results positionally, preserving ev's timestamp and
// CURRENT/EXPIRED tag — an EXPIRED input must still produce an EXPIRED
// projection so a downstream consumer's own eviction accounting stays
// balanced.
func (p *Project) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	se := record.NewStateEvent([]string{projectChain}).WithChain(projectChain, ev)
	env := expression.BuildEnv(se, p.schema)

	values := make([]record.Value, len(p.columns))
	for i, col := range p.columns {
		v, err := col.Expr.Eval(env)
		if err != nil {
			values[i] = record.Null()
			continue
		}
		values[i] = v
	}

	out := &record.StreamEvent{
		Stream:    p.output,
		Timestamp: ev.Timestamp,
		Type:      ev.Type,
		Values:    values,
	}
	return []*record.StreamEvent{out}, nil
}
