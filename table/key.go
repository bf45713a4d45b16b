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

package table

import (
	"strconv"
	"strings"

	"github.com/eventflux-io/engine-sub003/record"
)

// EncodeKey produces a canonical, type-tagged string key for values,
// the row-key format the index contract of §4.9 describes: 1 (INT) and
// 1 (LONG) never collide unless the schema says they're the same
// attribute, because each value's Kind is folded into its encoding.
func EncodeKey(values ...record.Value) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(encodeOne(v))
	}
	return b.String()
}

func encodeOne(v record.Value) string {
	switch v.Kind() {
	case record.KindNull:
		return "n:"
	case record.KindBool:
		if v.AsBool() {
			return "b:1"
		}
		return "b:0"
	case record.KindInt32:
		return "i32:" + strconv.FormatInt(v.AsInt64(), 10)
	case record.KindInt64:
		return "i64:" + strconv.FormatInt(v.AsInt64(), 10)
	case record.KindFloat32:
		return "f32:" + strconv.FormatFloat(v.AsFloat64(), 'g', -1, 32)
	case record.KindFloat64:
		return "f64:" + strconv.FormatFloat(v.AsFloat64(), 'g', -1, 64)
	case record.KindString:
		return "s:" + v.AsString()
	case record.KindBytes:
		return "y:" + string(v.AsBytes())
	default:
		return "o:" + v.AsString()
	}
}
