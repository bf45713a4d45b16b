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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterGetIsCaseInsensitive(t *testing.T) {
	r := New[int]()
	r.Register("Count", 1, "numeric")
	v, ok := r.Get("COUNT")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestListByCategory(t *testing.T) {
	r := New[int]()
	r.Register("sum", 1, "numeric")
	r.Register("avg", 2, "numeric")
	r.Register("distinctCount", 3, "set")
	assert.Equal(t, []string{"avg", "sum"}, r.ListByCategory("numeric"))
}

func TestUnregisterPrunesCategories(t *testing.T) {
	r := New[int]()
	r.Register("sum", 1, "numeric")
	r.Unregister("sum")
	_, ok := r.Get("sum")
	assert.False(t, ok)
	assert.Empty(t, r.ListByCategory("numeric"))
}

func TestMustGetPanicsWhenMissing(t *testing.T) {
	r := New[int]()
	assert.Panics(t, func() { r.MustGet("missing") })
}

func TestClearRemovesEverything(t *testing.T) {
	r := New[int]()
	r.Register("sum", 1, "numeric")
	r.Clear()
	assert.Empty(t, r.ListAll())
}
