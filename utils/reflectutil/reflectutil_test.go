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

package reflectutil

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string
	Age  int
}

func TestSafeFieldByNameReturnsField(t *testing.T) {
	v := reflect.ValueOf(sample{Name: "eventflux", Age: 3})

	field, err := SafeFieldByName(v, "Name")
	require.NoError(t, err)
	assert.Equal(t, "eventflux", field.String())
}

func TestSafeFieldByNameMissingField(t *testing.T) {
	v := reflect.ValueOf(sample{})

	_, err := SafeFieldByName(v, "Missing")
	require.Error(t, err)
}

func TestSafeFieldByNameNonStruct(t *testing.T) {
	v := reflect.ValueOf(42)

	_, err := SafeFieldByName(v, "Name")
	require.Error(t, err)
}

func TestSafeFieldByNameInvalidValue(t *testing.T) {
	_, err := SafeFieldByName(reflect.Value{}, "Name")
	require.Error(t, err)
}
