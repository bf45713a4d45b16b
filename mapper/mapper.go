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

// Package mapper implements the source/sink mapper contract of §6.2: a
// source mapper turns bytes into records, a sink mapper turns records
// into bytes. Three concrete mappers are provided — JSON (case-
// insensitive field name matching with positional fallback), CSV
// (strictly positional), and a passthrough binary framing used by
// internal timers and tests. Each widens JSON/CSV scalars to a target
// Schema's declared Kind per §4.13's INT ⊆ LONG ⊆ FLOAT ⊆ DOUBLE order.
package mapper

import (
	"fmt"

	"github.com/eventflux-io/engine-sub003/record"
)

// Field names one positional attribute a mapper reads or writes.
type Field struct {
	Name string
	Type record.Kind
}

// Schema is the ordered attribute list a mapper maps bytes against.
type Schema []Field

// Row is one mapped record: every schema attribute resolved to a Value,
// NULL where the source had no matching field and strict mode was off.
type Row map[string]record.Value

// SourceMapper converts inbound bytes into zero or more Rows.
type SourceMapper interface {
	Map(data []byte, schema Schema) ([]Row, error)
}

// SinkMapper converts outbound Rows into bytes.
type SinkMapper interface {
	Map(rows []Row, schema Schema) ([]byte, error)
}

// AttrSpec is one plan.Attribute-shaped (name, type-name) pair, the
// input ToSchema resolves into a Schema without this package importing
// plan (the compiler boundary stays one-directional).
type AttrSpec struct {
	Name string
	Type string
}

// ToSchema resolves the ordered attribute names and type names of a
// plan.StreamDef into a mapper Schema.
func ToSchema(attrs []AttrSpec) (Schema, error) {
	schema := make(Schema, 0, len(attrs))
	for _, a := range attrs {
		k, err := ParseKind(a.Type)
		if err != nil {
			return nil, err
		}
		schema = append(schema, Field{Name: a.Name, Type: k})
	}
	return schema, nil
}

// ParseKind resolves a plan.Attribute.Type string ("int32", "int64",
// "float32", "float64", "string", "bool", "bytes") to its record.Kind.
func ParseKind(typeName string) (record.Kind, error) {
	switch typeName {
	case "int32":
		return record.KindInt32, nil
	case "int64":
		return record.KindInt64, nil
	case "float32":
		return record.KindFloat32, nil
	case "float64":
		return record.KindFloat64, nil
	case "string":
		return record.KindString, nil
	case "bool":
		return record.KindBool, nil
	case "bytes":
		return record.KindBytes, nil
	default:
		return record.KindNull, fmt.Errorf("mapper: unknown attribute type %q", typeName)
	}
}

// RowToValues projects row into schema's positional order, the shape a
// record.StreamEvent's Values field expects.
func RowToValues(row Row, schema Schema) []record.Value {
	values := make([]record.Value, len(schema))
	for i, f := range schema {
		if v, ok := row[f.Name]; ok {
			values[i] = v
		} else {
			values[i] = record.Null()
		}
	}
	return values
}

// ValuesToRow is RowToValues's inverse, used by sink mappers to go from
// a StreamEvent's positional Values back to named fields.
func ValuesToRow(values []record.Value, schema Schema) Row {
	row := make(Row, len(schema))
	for i, f := range schema {
		if i < len(values) {
			row[f.Name] = values[i]
		} else {
			row[f.Name] = record.Null()
		}
	}
	return row
}
