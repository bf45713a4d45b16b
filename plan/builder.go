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

package plan

// Builder assembles a LogicalPlan by hand, fluent-style, for tests and
// examples that don't go through a SQL compiler — mirroring the
// teacher's BaseLogicalPlan.AddOperators/AddChildren chaining, adapted
// from "accumulate Operators into a tree" to "accumulate definitions
// and queries into a flat plan".
type Builder struct {
	plan *LogicalPlan
}

// NewBuilder starts a new plan.
func NewBuilder() *Builder {
	return &Builder{plan: New()}
}

// Stream registers a stream definition and returns the Builder for
// chaining.
func (b *Builder) Stream(name string, attrs ...Attribute) *Builder {
	b.plan.Streams[name] = StreamDef{Name: name, Attributes: attrs}
	return b
}

// Table registers a table definition.
func (b *Builder) Table(name, extension string, config map[string]string) *Builder {
	b.plan.Tables[name] = TableDef{Name: name, Extension: extension, Config: config}
	return b
}

// Trigger registers a trigger definition.
func (b *Builder) Trigger(name, cron string) *Builder {
	b.plan.Triggers = append(b.plan.Triggers, TriggerDef{Name: name, Cron: cron})
	return b
}

// Query appends a fully-constructed Query.
func (b *Builder) Query(q Query) *Builder {
	b.plan.Queries = append(b.plan.Queries, q)
	return b
}

// Build returns the assembled LogicalPlan.
func (b *Builder) Build() *LogicalPlan {
	return b.plan
}

// Attr is a convenience constructor for Attribute, shortening test plan
// construction.
func Attr(name, typ string) Attribute {
	return Attribute{Name: name, Type: typ}
}
