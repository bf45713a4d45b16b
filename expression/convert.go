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

// Package expression compiles and evaluates the scalar and boolean
// expressions used in WHERE/ON/HAVING clauses, projections, and CASE
// expressions (§4.12), wrapping github.com/expr-lang/expr the way the
// teacher's condition package does.
package expression

import (
	"github.com/spf13/cast"

	"github.com/eventflux-io/engine-sub003/record"
)

// ToNative converts a record.Value to the plain Go value expr-lang's VM
// expects in an evaluation environment.
func ToNative(v record.Value) interface{} {
	switch v.Kind() {
	case record.KindNull:
		return nil
	case record.KindBool:
		return v.AsBool()
	case record.KindInt32:
		return int32(v.AsInt64())
	case record.KindInt64:
		return v.AsInt64()
	case record.KindFloat32:
		return float32(v.AsFloat64())
	case record.KindFloat64:
		return v.AsFloat64()
	case record.KindString:
		return v.AsString()
	case record.KindBytes:
		return v.AsBytes()
	case record.KindStruct:
		m := make(map[string]interface{}, len(v.AsFields()))
		for _, f := range v.AsFields() {
			m[f.Name] = ToNative(f.Value)
		}
		return m
	default:
		return v.AsObject()
	}
}

// FromNative infers a record.Value from a Go value returned by the expr
// VM (a projection result, a CASE branch result, a custom function
// return). Numeric literals in expr-lang surface as int or float64; both
// are widened using spf13/cast the way the teacher's utils/cast helpers
// coerce loosely typed inputs.
func FromNative(x interface{}) record.Value {
	switch t := x.(type) {
	case nil:
		return record.Null()
	case bool:
		return record.Bool(t)
	case int:
		return record.Int64(int64(t))
	case int32:
		return record.Int32(t)
	case int64:
		return record.Int64(t)
	case float32:
		return record.Float32(t)
	case float64:
		return record.Float64(t)
	case string:
		return record.String(t)
	case []byte:
		return record.Bytes(t)
	case map[string]interface{}:
		fields := make([]record.Field, 0, len(t))
		for k, v := range t {
			fields = append(fields, record.Field{Name: k, Value: FromNative(v)})
		}
		return record.Struct(fields)
	default:
		if f, err := cast.ToFloat64E(x); err == nil {
			return record.Float64(f)
		}
		return record.Object(x)
	}
}
