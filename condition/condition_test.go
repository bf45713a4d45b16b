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

package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/expression"
	"github.com/eventflux-io/engine-sub003/record"
)

func TestCompileAndEvaluateSingleStream(t *testing.T) {
	schema := expression.SingleStream([]string{"symbol", "amount"})
	cond, err := Compile(`symbol == "IBM" && amount > 100`, schema)
	require.NoError(t, err)

	ev := record.NewStreamEvent("trades", 1, []record.Value{record.String("IBM"), record.Float64(150)})
	se := record.NewStateEvent([]string{""}).WithChain("", ev)
	assert.True(t, cond.Evaluate(se))

	ev2 := record.NewStreamEvent("trades", 2, []record.Value{record.String("IBM"), record.Float64(10)})
	se2 := record.NewStateEvent([]string{""}).WithChain("", ev2)
	assert.False(t, cond.Evaluate(se2))
}

func TestCompileAndEvaluateJoinOn(t *testing.T) {
	schema := expression.Schema{
		Chains:    []string{"L", "R"},
		AttrNames: map[string][]string{"L": {"id"}, "R": {"id"}},
	}
	cond, err := Compile("L.id == R.id", schema)
	require.NoError(t, err)

	se := record.NewStateEvent([]string{"L", "R"}).
		WithChain("L", record.NewStreamEvent("orders", 1, []record.Value{record.Int32(7)})).
		WithChain("R", record.NewStreamEvent("shipments", 2, []record.Value{record.Int32(7)}))
	assert.True(t, cond.Evaluate(se))
}

func TestLikeMatchViaCondition(t *testing.T) {
	schema := expression.SingleStream([]string{"name"})
	cond, err := Compile(`like_match(name, "A%")`, schema)
	require.NoError(t, err)

	ev := record.NewStreamEvent("customers", 1, []record.Value{record.String("Acme")})
	se := record.NewStateEvent([]string{""}).WithChain("", ev)
	assert.True(t, cond.Evaluate(se))
}

func TestInvalidExpressionFailsToCompile(t *testing.T) {
	_, err := Compile("this is not )( valid", expression.SingleStream(nil))
	require.Error(t, err)
}
