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

package mapper

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/utils/fieldpath"
)

// JSONMapper maps a single JSON object or a JSON array of objects/tuples
// to Rows. Object fields match schema attribute names case-insensitively;
// a bare tuple (a JSON array of scalars rather than objects) maps
// positionally against the schema instead. An attribute name containing a
// dot or bracket ("device.info.name", "readings[0].value") is resolved
// against the decoded object via fieldpath instead of a flat top-level
// lookup, so a source schema can reach into a nested payload without a
// separate projection stage.
type JSONMapper struct {
	// Strict makes a missing field a mapping error instead of NULL.
	Strict bool
}

func (m JSONMapper) Map(data []byte, schema Schema) ([]Row, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("mapper: invalid JSON: %w", err)
	}

	elements, ok := raw.([]interface{})
	if !ok {
		elements = []interface{}{raw}
	}

	rows := make([]Row, 0, len(elements))
	for _, el := range elements {
		row, err := m.mapElement(el, schema)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (m JSONMapper) mapElement(el interface{}, schema Schema) (Row, error) {
	row := make(Row, len(schema))
	switch v := el.(type) {
	case map[string]interface{}:
		lower := make(map[string]interface{}, len(v))
		for k, val := range v {
			lower[strings.ToLower(k)] = val
		}
		for _, f := range schema {
			var raw interface{}
			var found bool
			if fieldpath.IsNestedField(f.Name) {
				raw, found = fieldpath.GetNestedField(v, f.Name)
			} else {
				raw, found = lower[strings.ToLower(f.Name)]
			}
			if !found {
				if m.Strict {
					return nil, fmt.Errorf("mapper: missing required field %q", f.Name)
				}
				row[f.Name] = record.Null()
				continue
			}
			val, err := widen(raw, f.Type)
			if err != nil {
				return nil, err
			}
			row[f.Name] = val
		}
	case []interface{}:
		for i, f := range schema {
			if i >= len(v) {
				if m.Strict {
					return nil, fmt.Errorf("mapper: missing positional field %d (%q)", i, f.Name)
				}
				row[f.Name] = record.Null()
				continue
			}
			val, err := widen(v[i], f.Type)
			if err != nil {
				return nil, err
			}
			row[f.Name] = val
		}
	default:
		return nil, fmt.Errorf("mapper: JSON element must be an object or array, got %T", el)
	}
	return row, nil
}

// widen converts a decoded JSON scalar (float64, string, bool, nil, or a
// base64 string for bytes) to the schema's declared Kind.
func widen(raw interface{}, kind record.Kind) (record.Value, error) {
	if raw == nil {
		return record.Null(), nil
	}
	switch kind {
	case record.KindInt32:
		i, err := cast.ToInt32E(raw)
		if err != nil {
			return record.Null(), nil
		}
		return record.Int32(i), nil
	case record.KindInt64:
		i, err := cast.ToInt64E(raw)
		if err != nil {
			return record.Null(), nil
		}
		return record.Int64(i), nil
	case record.KindFloat32:
		f, err := cast.ToFloat32E(raw)
		if err != nil {
			return record.Null(), nil
		}
		return record.Float32(f), nil
	case record.KindFloat64:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return record.Null(), nil
		}
		return record.Float64(f), nil
	case record.KindBool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return record.Null(), nil
		}
		return record.Bool(b), nil
	case record.KindString:
		return record.String(cast.ToString(raw)), nil
	case record.KindBytes:
		b, err := base64.StdEncoding.DecodeString(cast.ToString(raw))
		if err != nil {
			return record.Null(), nil
		}
		return record.Bytes(b), nil
	default:
		return record.Null(), fmt.Errorf("mapper: unsupported target kind %v", kind)
	}
}

// JSONSink maps Rows into a JSON array of objects, keyed by schema
// attribute name.
type JSONSink struct{}

func (JSONSink) Map(rows []Row, schema Schema) ([]byte, error) {
	out := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]interface{}, len(schema))
		for _, f := range schema {
			v, ok := row[f.Name]
			if !ok {
				obj[f.Name] = nil
				continue
			}
			obj[f.Name] = nativeOf(v)
		}
		out = append(out, obj)
	}
	return json.Marshal(out)
}

func nativeOf(v record.Value) interface{} {
	switch v.Kind() {
	case record.KindNull:
		return nil
	case record.KindBool:
		return v.AsBool()
	case record.KindInt32, record.KindInt64:
		return v.AsInt64()
	case record.KindFloat32, record.KindFloat64:
		return v.AsFloat64()
	case record.KindString:
		return v.AsString()
	case record.KindBytes:
		return v.AsBytes()
	default:
		return v.AsObject()
	}
}
