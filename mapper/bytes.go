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
	"encoding/binary"
	"fmt"

	"github.com/eventflux-io/engine-sub003/record"
)

// EncodeBatch frames a batch of Rows into a small self-describing binary
// layout: a record count, then per record a field count, then per field
// the length-prefixed field name, a one-byte Kind tag, and a
// length-prefixed value payload. Used internally by timers and tests; Go has no bincode-ecosystem
// equivalent in the pack, so this is a deliberate stdlib-only encoding
// rather than a substitute dependency.
func EncodeBatch(rows []Row, schema Schema) []byte {
	buf := make([]byte, 0, 64*len(rows))
	buf = appendUvarint(buf, uint64(len(rows)))
	for _, row := range rows {
		buf = appendUvarint(buf, uint64(len(schema)))
		for _, f := range schema {
			v := row[f.Name]
			buf = appendUvarint(buf, uint64(len(f.Name)))
			buf = append(buf, f.Name...)
			buf = append(buf, byte(v.Kind()))
			payload := encodeValue(v)
			buf = appendUvarint(buf, uint64(len(payload)))
			buf = append(buf, payload...)
		}
	}
	return buf
}

// DecodeBatch is EncodeBatch's inverse.
func DecodeBatch(data []byte) ([]Row, error) {
	r := &byteReader{data: data}
	count, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, count)
	for i := uint64(0); i < count; i++ {
		fieldCount, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		row := make(Row, fieldCount)
		for j := uint64(0); j < fieldCount; j++ {
			nameLen, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			name, err := r.take(int(nameLen))
			if err != nil {
				return nil, err
			}
			kindByte, err := r.byte1()
			if err != nil {
				return nil, err
			}
			payloadLen, err := r.uvarint()
			if err != nil {
				return nil, err
			}
			payload, err := r.take(int(payloadLen))
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(record.Kind(kindByte), payload)
			if err != nil {
				return nil, err
			}
			row[string(name)] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeValue(v record.Value) []byte {
	switch v.Kind() {
	case record.KindNull:
		return nil
	case record.KindBool:
		if v.AsBool() {
			return []byte{1}
		}
		return []byte{0}
	case record.KindInt32, record.KindInt64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(v.AsInt64()))
		return b
	case record.KindFloat32, record.KindFloat64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(bitsOf(v.AsFloat64())))
		return b
	case record.KindString:
		return []byte(v.AsString())
	case record.KindBytes:
		return v.AsBytes()
	default:
		return nil
	}
}

func decodeValue(kind record.Kind, payload []byte) (record.Value, error) {
	switch kind {
	case record.KindNull:
		return record.Null(), nil
	case record.KindBool:
		return record.Bool(len(payload) > 0 && payload[0] == 1), nil
	case record.KindInt32:
		if len(payload) < 8 {
			return record.Null(), fmt.Errorf("mapper: short int32 payload")
		}
		return record.Int32(int32(binary.BigEndian.Uint64(payload))), nil
	case record.KindInt64:
		if len(payload) < 8 {
			return record.Null(), fmt.Errorf("mapper: short int64 payload")
		}
		return record.Int64(int64(binary.BigEndian.Uint64(payload))), nil
	case record.KindFloat32:
		if len(payload) < 8 {
			return record.Null(), fmt.Errorf("mapper: short float32 payload")
		}
		return record.Float32(float32(floatOf(binary.BigEndian.Uint64(payload)))), nil
	case record.KindFloat64:
		if len(payload) < 8 {
			return record.Null(), fmt.Errorf("mapper: short float64 payload")
		}
		return record.Float64(floatOf(binary.BigEndian.Uint64(payload))), nil
	case record.KindString:
		return record.String(string(payload)), nil
	case record.KindBytes:
		return record.Bytes(payload), nil
	default:
		return record.Null(), fmt.Errorf("mapper: unsupported wire kind %v", kind)
	}
}

// BytesMapper is the external bytes source mapper: exactly one record
// per message, per §6.2. Multi-record frames are rejected rather than
// silently taking the first.
type BytesMapper struct{}

func (BytesMapper) Map(data []byte, schema Schema) ([]Row, error) {
	rows, err := DecodeBatch(data)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("mapper: bytes mapper requires exactly one record per message, got %d", len(rows))
	}
	return rows, nil
}

// BytesSink is the external bytes sink mapper, the Map-side mirror of
// BytesMapper's one-record-per-message restriction.
type BytesSink struct{}

func (BytesSink) Map(rows []Row, schema Schema) ([]byte, error) {
	if len(rows) != 1 {
		return nil, fmt.Errorf("mapper: bytes mapper requires exactly one record per message, got %d", len(rows))
	}
	return EncodeBatch(rows, schema), nil
}
