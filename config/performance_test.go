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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPerformanceConfig(t *testing.T) {
	c := DefaultPerformanceConfig()
	require.Equal(t, 1000, c.Buffer.JunctionCapacity)
	require.Equal(t, "dropOldest", c.Overflow.Strategy)
	require.Equal(t, 4, c.Worker.PoolSize)
	require.False(t, c.Monitoring.Enabled)
}

func TestHighThroughputConfigFavorsBigBuffers(t *testing.T) {
	c := HighThroughputConfig()
	d := DefaultPerformanceConfig()
	require.Greater(t, c.Buffer.JunctionCapacity, d.Buffer.JunctionCapacity)
	require.Greater(t, c.Buffer.MaxBufferSize, d.Buffer.MaxBufferSize)
	require.True(t, c.Monitoring.Enabled)
}

func TestLowLatencyConfigFavorsSmallBuffersAndBlocking(t *testing.T) {
	c := LowLatencyConfig()
	d := DefaultPerformanceConfig()
	require.Less(t, c.Buffer.JunctionCapacity, d.Buffer.JunctionCapacity)
	require.Equal(t, "block", c.Overflow.Strategy)
	require.Equal(t, 1*time.Second, c.Overflow.BlockTimeout)
}
