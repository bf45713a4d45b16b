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
	"fmt"
	"reflect"
)

// SafeFieldByName safely gets struct field
func SafeFieldByName(v reflect.Value, fieldName string) (reflect.Value, error) {
	// Check if Value is valid
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("invalid value")
	}

	// Check if it's a struct type
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("value is not a struct, got %v", v.Kind())
	}

	// Safely get field
	field := v.FieldByName(fieldName)
	if !field.IsValid() {
		return reflect.Value{}, fmt.Errorf("field %s not found", fieldName)
	}

	return field, nil
}
