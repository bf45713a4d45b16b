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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []Value{
		Null(),
		Bool(true),
		Int32(7),
		Int64(-9),
		Float32(1.5),
		Float64(3.14),
		String("hi"),
		Bytes([]byte{1, 2, 3}),
		Struct([]Field{{Name: "a", Value: Int32(1)}, {Name: "b", Value: String("x")}}),
	}
	for _, v := range cases {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		var out Value
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, v.Kind(), out.Kind())
		if v.Kind() == KindStruct {
			assert.Equal(t, len(v.AsFields()), len(out.AsFields()))
		}
	}
}

func TestStreamEventJSONRoundTrip(t *testing.T) {
	e := NewStreamEvent("orders", 100, []Value{Int32(1), String("a")})
	e.SetAttr("total", Float64(9.5))

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var out StreamEvent
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, e.Stream, out.Stream)
	assert.Equal(t, e.Timestamp, out.Timestamp)
	assert.Equal(t, int64(1), out.Values[0].AsInt64())
	v, ok := out.Attr("total")
	require.True(t, ok)
	assert.Equal(t, 9.5, v.AsFloat64())
}
