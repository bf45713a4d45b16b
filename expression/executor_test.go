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

package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/record"
)

func singleEnv(attrNames []string, values ...record.Value) map[string]interface{} {
	ev := record.NewStreamEvent("s", 1, values)
	se := record.NewStateEvent([]string{""}).WithChain("", ev)
	return BuildEnv(se, SingleStream(attrNames))
}

func TestCompileBoolFilter(t *testing.T) {
	cond, err := CompileBool("amount > 100 && symbol == \"IBM\"")
	require.NoError(t, err)

	env := singleEnv([]string{"symbol", "amount"}, record.String("IBM"), record.Float64(150))
	assert.True(t, cond.EvalBool(env))

	env = singleEnv([]string{"symbol", "amount"}, record.String("IBM"), record.Float64(50))
	assert.False(t, cond.EvalBool(env))
}

func TestLikeMatchFunction(t *testing.T) {
	cond, err := CompileBool(`like_match(name, "A%")`)
	require.NoError(t, err)
	env := singleEnv([]string{"name"}, record.String("Acme"))
	assert.True(t, cond.EvalBool(env))
	env = singleEnv([]string{"name"}, record.String("Zenith"))
	assert.False(t, cond.EvalBool(env))
}

func TestUndefinedVariableEvaluatesNilNotError(t *testing.T) {
	cond, err := CompileBool("is_null(missing)")
	require.NoError(t, err)
	env := singleEnv([]string{"present"}, record.Int32(1))
	assert.True(t, cond.EvalBool(env))
}

func TestQualifiedChainAccess(t *testing.T) {
	left := record.NewStreamEvent("orders", 1, []record.Value{record.Int32(7), record.Float64(10)})
	right := record.NewStreamEvent("shipments", 2, []record.Value{record.Int32(7)})
	se := record.NewStateEvent([]string{"L", "R"}).WithChain("L", left).WithChain("R", right)
	schema := Schema{
		Chains: []string{"L", "R"},
		AttrNames: map[string][]string{
			"L": {"id", "amount"},
			"R": {"id"},
		},
	}
	env := BuildEnv(se, schema)

	cond, err := CompileBool("L.id == R.id && L.amount > 5")
	require.NoError(t, err)
	assert.True(t, cond.EvalBool(env))
}

func TestOuterJoinNullSideIsUndefinedNotError(t *testing.T) {
	se := record.NewStateEvent([]string{"L", "R"})
	se = se.WithChain("L", record.NewStreamEvent("orders", 1, []record.Value{record.Int32(1)}))
	schema := Schema{Chains: []string{"L", "R"}, AttrNames: map[string][]string{"L": {"id"}, "R": {"id"}}}
	env := BuildEnv(se, schema)

	cond, err := CompileBool("is_null(R.id)")
	require.NoError(t, err)
	assert.True(t, cond.EvalBool(env))
}

func TestSearchedCase(t *testing.T) {
	whenHigh, err := CompileBool("amount > 100")
	require.NoError(t, err)
	thenHigh, err := Compile(`"high"`)
	require.NoError(t, err)
	elseExpr, err := Compile(`"low"`)
	require.NoError(t, err)

	c := &SearchedCase{Cases: []WhenThen{{When: whenHigh, Then: thenHigh}}, Else: elseExpr}

	env := singleEnv([]string{"amount"}, record.Float64(500))
	v, err := c.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, "high", v.AsString())

	env = singleEnv([]string{"amount"}, record.Float64(1))
	v, err = c.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, "low", v.AsString())
}

func TestSimpleCaseNullOperandNeverMatches(t *testing.T) {
	operand, err := Compile("status")
	require.NoError(t, err)
	when, err := Compile(`nil`)
	require.NoError(t, err)
	then, err := Compile(`"matched-null"`)
	require.NoError(t, err)
	elseExpr, err := Compile(`"fallback"`)
	require.NoError(t, err)

	c := &SimpleCase{Operand: operand, Cases: []WhenThen{{When: when, Then: then}}, Else: elseExpr}

	env := singleEnv([]string{"status"}, record.Null())
	v, err := c.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, "fallback", v.AsString())
}

func TestSimpleCaseMatchesByStrictEquality(t *testing.T) {
	operand, err := Compile("status")
	require.NoError(t, err)
	when, err := Compile(`"OPEN"`)
	require.NoError(t, err)
	then, err := Compile(`"is-open"`)
	require.NoError(t, err)

	c := &SimpleCase{Operand: operand, Cases: []WhenThen{{When: when, Then: then}}}

	env := singleEnv([]string{"status"}, record.String("OPEN"))
	v, err := c.Eval(env)
	require.NoError(t, err)
	assert.Equal(t, "is-open", v.AsString())
}
