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

package record

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// wireValue is Value's JSON-on-the-wire shape, used by window/checkpoint
// snapshots. The bytes mapper's binary framing (§6.2) does not use it.
// Value's fields are unexported (the tagged-union invariant must only be
// built through the constructors), so it needs this explicit codec rather
// than struct-tag-driven marshaling.
type wireValue struct {
	Kind   string      `json:"kind"`
	Bool   bool        `json:"bool,omitempty"`
	Int    int64       `json:"int,omitempty"`
	Float  float64     `json:"float,omitempty"`
	String string      `json:"string,omitempty"`
	Bytes  string      `json:"bytes,omitempty"` // base64
	Fields []wireField `json:"fields,omitempty"`
}

type wireField struct {
	Name  string    `json:"name"`
	Value wireValue `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	w := wireValue{Kind: v.kind.String()}
	switch v.kind {
	case KindBool:
		w.Bool = v.b
	case KindInt32, KindInt64:
		w.Int = v.i
	case KindFloat32, KindFloat64:
		w.Float = v.f
	case KindString:
		w.String = v.s
	case KindBytes:
		w.Bytes = base64.StdEncoding.EncodeToString(v.bytes)
	case KindStruct:
		for _, f := range v.fields {
			fb, err := f.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var fv wireValue
			if err := json.Unmarshal(fb, &fv); err != nil {
				return nil, err
			}
			w.Fields = append(w.Fields, wireField{Name: f.Name, Value: fv})
		}
	case KindObject:
		return nil, fmt.Errorf("record: Value of kind OBJECT is not JSON-serializable")
	}
	return json.Marshal(w)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "NULL", "":
		*v = Null()
	case "BOOL":
		*v = Bool(w.Bool)
	case "INT":
		*v = Int32(int32(w.Int))
	case "LONG":
		*v = Int64(w.Int)
	case "FLOAT":
		*v = Float32(float32(w.Float))
	case "DOUBLE":
		*v = Float64(w.Float)
	case "STRING":
		*v = String(w.String)
	case "BYTES":
		b, err := base64.StdEncoding.DecodeString(w.Bytes)
		if err != nil {
			return err
		}
		*v = Bytes(b)
	case "STRUCT":
		fields := make([]Field, 0, len(w.Fields))
		for _, wf := range w.Fields {
			fb, err := json.Marshal(wf.Value)
			if err != nil {
				return err
			}
			var fv Value
			if err := fv.UnmarshalJSON(fb); err != nil {
				return err
			}
			fields = append(fields, Field{Name: wf.Name, Value: fv})
		}
		*v = Struct(fields)
	default:
		return fmt.Errorf("record: unknown Value kind %q", w.Kind)
	}
	return nil
}
