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

package fieldpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These cases mirror the shapes mapper.JSONMapper actually resolves
// through IsNestedField/GetNestedField: a dotted path, an array index,
// a quoted map key, and the mixed forms a schema attribute name can
// take in practice.
func TestParseFieldPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []FieldPart
	}{
		{
			name:     "plain field",
			path:     "name",
			expected: []FieldPart{{Type: "field", Name: "name"}},
		},
		{
			name: "dotted nesting",
			path: "user.profile.name",
			expected: []FieldPart{
				{Type: "field", Name: "user"},
				{Type: "field", Name: "profile"},
				{Type: "field", Name: "name"},
			},
		},
		{
			name: "array index",
			path: "data[0]",
			expected: []FieldPart{
				{Type: "field", Name: "data"},
				{Type: "array_index", Index: 0, Key: "0", KeyType: "number"},
			},
		},
		{
			name: "array index then field",
			path: "users[1].name",
			expected: []FieldPart{
				{Type: "field", Name: "users"},
				{Type: "array_index", Index: 1, Key: "1", KeyType: "number"},
				{Type: "field", Name: "name"},
			},
		},
		{
			name: "quoted string key",
			path: "config['database']",
			expected: []FieldPart{
				{Type: "field", Name: "config"},
				{Type: "map_key", Key: "database", KeyType: "string"},
			},
		},
		{
			name: "double-quoted string key",
			path: `settings["timeout"]`,
			expected: []FieldPart{
				{Type: "field", Name: "settings"},
				{Type: "map_key", Key: "timeout", KeyType: "string"},
			},
		},
		{
			name: "negative index",
			path: "items[-1]",
			expected: []FieldPart{
				{Type: "field", Name: "items"},
				{Type: "array_index", Index: -1, Key: "-1", KeyType: "number"},
			},
		},
		{
			name: "mixed access",
			path: "users[0].profile['name']",
			expected: []FieldPart{
				{Type: "field", Name: "users"},
				{Type: "array_index", Index: 0, Key: "0", KeyType: "number"},
				{Type: "field", Name: "profile"},
				{Type: "map_key", Key: "name", KeyType: "string"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessor, err := ParseFieldPath(tt.path)
			require.NoError(t, err)
			require.NotNil(t, accessor)
			assert.Equal(t, tt.expected, accessor.Parts)
		})
	}
}

func TestParseFieldPathRejectsUnmatchedBracket(t *testing.T) {
	_, err := ParseFieldPath("data[0")
	require.Error(t, err)
	var accessErr *FieldAccessError
	require.ErrorAs(t, err, &accessErr)
}

func TestParseFieldPathEmptyPathReturnsNil(t *testing.T) {
	accessor, err := ParseFieldPath("")
	require.NoError(t, err)
	assert.Nil(t, accessor)
}

func TestIsNestedField(t *testing.T) {
	assert.True(t, IsNestedField("device.info.name"))
	assert.True(t, IsNestedField("readings[0].value"))
	assert.False(t, IsNestedField("name"))
	assert.False(t, IsNestedField(""))
}

// GetNestedField is what mapper.JSONMapper.mapElement calls for any
// schema attribute IsNestedField flags; these cases match the payload
// shapes a JSON source actually decodes into ([]interface{} and
// map[string]interface{}), not a synthetic struct tree.
func TestGetNestedFieldAgainstDecodedJSON(t *testing.T) {
	data := map[string]interface{}{
		"device": map[string]interface{}{
			"info": map[string]interface{}{
				"name": "sensor-1",
			},
		},
		"readings": []interface{}{
			map[string]interface{}{"value": 21.5},
			map[string]interface{}{"value": 22.0},
		},
		"tags": map[string]interface{}{
			"zone": "east",
		},
	}

	tests := []struct {
		name     string
		path     string
		expected interface{}
		found    bool
	}{
		{name: "dotted nesting", path: "device.info.name", expected: "sensor-1", found: true},
		{name: "array element field", path: "readings[0].value", expected: 21.5, found: true},
		{name: "last array element", path: "readings[-1].value", expected: 22.0, found: true},
		{name: "quoted map key", path: "tags['zone']", expected: "east", found: true},
		{name: "missing top-level field", path: "missing.field", expected: nil, found: false},
		{name: "index past the end", path: "readings[5].value", expected: nil, found: false},
		{name: "empty path", path: "", expected: nil, found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := GetNestedField(data, tt.path)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

// GetNestedField falls through to reflectutil.SafeFieldByName once a
// path component lands on a struct instead of a decoded map — the one
// non-JSON branch fieldpath carries for payloads a sink has already
// unmarshaled into a concrete type.
func TestGetNestedFieldAgainstStruct(t *testing.T) {
	type Info struct {
		Name string
	}
	type Device struct {
		Info Info
	}
	data := struct{ Device Device }{Device: Device{Info: Info{Name: "sensor-2"}}}

	got, found := GetNestedField(data, "Device.Info.Name")
	require.True(t, found)
	assert.Equal(t, "sensor-2", got)

	_, found = GetNestedField(data, "Device.Info.Missing")
	assert.False(t, found)
}
