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

package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesKindAndLocation(t *testing.T) {
	err := New(ConfigError, "query:Q1", "unknown window kind 'bogus'")
	require.Equal(t, "[CONFIG_ERROR] query:Q1: unknown window kind 'bogus'", err.Error())
}

func TestErrorMessageWithoutLocation(t *testing.T) {
	err := New(ExpressionError, "", "division by zero")
	require.Equal(t, "[EXPRESSION_ERROR] division by zero", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ConnectivityError, "source:S1", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection refused")
}

func TestFailFastKinds(t *testing.T) {
	require.True(t, ConfigError.FailFast())
	require.True(t, ConnectivityError.FailFast())
	require.False(t, MappingError.FailFast())
	require.False(t, ExpressionError.FailFast())
	require.False(t, InvariantError.FailFast())
	require.False(t, BackpressureDrop.FailFast())
	require.False(t, CheckpointError.FailFast())
	require.False(t, PartialMatchTimeout.FailFast())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "MAPPING_ERROR", MappingError.String())
	require.Equal(t, "PARTIAL_MATCH_TIMEOUT", PartialMatchTimeout.String())
	require.Equal(t, "UNKNOWN_ERROR", Kind(99).String())
}

func TestMappingStrategyString(t *testing.T) {
	require.Equal(t, "drop", Drop.String())
	require.Equal(t, "retry", Retry.String())
	require.Equal(t, "dlq", Dlq.String())
	require.Equal(t, "fail", Fail.String())
	require.Equal(t, "unknown", MappingStrategy(99).String())
}

func TestCountersIncrementAndSnapshot(t *testing.T) {
	var c Counters
	c.IncExpressionError()
	c.IncExpressionError()
	c.IncBackpressureDrop()
	c.IncPartialMatchTimeout()

	require.EqualValues(t, 2, c.ExpressionErrors())
	require.EqualValues(t, 1, c.BackpressureDrops())
	require.EqualValues(t, 1, c.PartialMatchTimeouts())
	require.EqualValues(t, 0, c.CheckpointErrors())

	snap := c.Snapshot()
	require.EqualValues(t, 2, snap["expression_errors"])
	require.EqualValues(t, 1, snap["backpressure_drops"])
}
