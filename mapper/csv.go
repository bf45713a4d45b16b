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
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/eventflux-io/engine-sub003/record"
)

// CSVMapper maps CSV rows positionally against schema: column i binds to
// schema[i] regardless of any header row. Delimiter defaults to comma;
// quoting/escaping follows encoding/csv's RFC 4180 behavior.
type CSVMapper struct {
	Delimiter rune // zero defaults to ','
	HasHeader bool
}

func (m CSVMapper) reader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	if m.Delimiter != 0 {
		r.Comma = m.Delimiter
	}
	r.FieldsPerRecord = -1
	return r
}

func (m CSVMapper) Map(data []byte, schema Schema) ([]Row, error) {
	r := m.reader(data)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("mapper: invalid CSV: %w", err)
	}
	if m.HasHeader && len(records) > 0 {
		records = records[1:]
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(schema))
		for i, f := range schema {
			if i >= len(rec) {
				row[f.Name] = record.Null()
				continue
			}
			v, err := parseCSVField(rec[i], f.Type)
			if err != nil {
				return nil, fmt.Errorf("mapper: field %q: %w", f.Name, err)
			}
			row[f.Name] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSVField(field string, kind record.Kind) (record.Value, error) {
	if field == "" {
		return record.Null(), nil
	}
	switch kind {
	case record.KindInt32:
		i, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return record.Null(), err
		}
		return record.Int32(int32(i)), nil
	case record.KindInt64:
		i, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return record.Null(), err
		}
		return record.Int64(i), nil
	case record.KindFloat32:
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return record.Null(), err
		}
		return record.Float32(float32(f)), nil
	case record.KindFloat64:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return record.Null(), err
		}
		return record.Float64(f), nil
	case record.KindBool:
		b, err := strconv.ParseBool(field)
		if err != nil {
			return record.Null(), err
		}
		return record.Bool(b), nil
	case record.KindString:
		return record.String(field), nil
	case record.KindBytes:
		return record.Bytes([]byte(field)), nil
	default:
		return record.Null(), fmt.Errorf("unsupported target kind %v", kind)
	}
}

// CSVSink maps Rows to CSV lines in schema order.
type CSVSink struct {
	Delimiter rune
}

func (m CSVSink) Map(rows []Row, schema Schema) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if m.Delimiter != 0 {
		w.Comma = m.Delimiter
	}
	for _, row := range rows {
		line := make([]string, len(schema))
		for i, f := range schema {
			v, ok := row[f.Name]
			if !ok || v.IsNull() {
				line[i] = ""
				continue
			}
			line[i] = formatCSVField(v)
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatCSVField(v record.Value) string {
	switch v.Kind() {
	case record.KindBool:
		return strconv.FormatBool(v.AsBool())
	case record.KindInt32, record.KindInt64:
		return strconv.FormatInt(v.AsInt64(), 10)
	case record.KindFloat32, record.KindFloat64:
		return strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case record.KindString:
		return v.AsString()
	case record.KindBytes:
		return string(v.AsBytes())
	default:
		return ""
	}
}
