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

package partition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/record"
)

// countingInstance counts how many events it has processed, letting
// tests assert isolation between partition keys.
type countingInstance struct {
	count int
}

func (c *countingInstance) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	c.count++
	return []*record.StreamEvent{ev}, nil
}

func ev(key int32) *record.StreamEvent {
	return record.NewStreamEvent("S", 0, []record.Value{record.Int32(key)})
}

func TestRouterCreatesOneInstancePerKey(t *testing.T) {
	var built int
	r := New(0, func() Instance {
		built++
		return &countingInstance{}
	}, 0)

	_, err := r.Route(ev(1))
	require.NoError(t, err)
	_, err = r.Route(ev(2))
	require.NoError(t, err)
	_, err = r.Route(ev(1))
	require.NoError(t, err)

	require.Equal(t, 2, built)
	require.Equal(t, 2, r.Len())
}

func TestRouterIsolatesStateBetweenKeys(t *testing.T) {
	var instances []*countingInstance
	r := New(0, func() Instance {
		inst := &countingInstance{}
		instances = append(instances, inst)
		return inst
	}, 0)

	for _, k := range []int32{1, 1, 2, 1} {
		_, err := r.Route(ev(k))
		require.NoError(t, err)
	}

	require.Equal(t, 2, r.Len())
	require.Len(t, instances, 2)
	require.Equal(t, 3, instances[0].count) // key 1
	require.Equal(t, 1, instances[1].count) // key 2
}

func TestRouterReapsIdlePartitionsAfterTTL(t *testing.T) {
	r := New(0, func() Instance { return &countingInstance{} }, 30*time.Millisecond)
	r.Start()
	defer r.Stop()

	_, err := r.Route(ev(1))
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	require.Eventually(t, func() bool {
		return r.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestRouterWithoutTTLNeverReaps(t *testing.T) {
	r := New(0, func() Instance { return &countingInstance{} }, 0)
	r.Start() // no-op since ttl is zero
	defer r.Stop()

	_, err := r.Route(ev(1))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, 1, r.Len())
}
