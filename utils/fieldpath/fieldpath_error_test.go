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
)

func TestFieldAccessErrorMessage(t *testing.T) {
	err := &FieldAccessError{Path: "data[0", Message: "unmatched bracket in field path"}
	assert.Equal(t, `field access error for path 'data[0': unmatched bracket in field path`, err.Error())
}

func TestGetNestedFieldFallsBackOnUnparsablePath(t *testing.T) {
	// An unmatched "[" fails ParseFieldPath; GetNestedField then falls
	// back to the pre-fieldpath simple dot-split behavior (treating the
	// whole segment, brackets included, as a literal map key) instead of
	// erroring, since a mapper would rather return NULL for an odd
	// attribute name than fail the whole row.
	data := map[string]interface{}{"items[0": "literal-key-value"}

	got, found := GetNestedField(data, "items[0")
	assert.True(t, found)
	assert.Equal(t, "literal-key-value", got)
}
