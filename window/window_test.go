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

package window

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/record"
)

func ev(ts int64, vals ...record.Value) *record.StreamEvent {
	return record.NewStreamEvent("s", ts, vals)
}

func TestLengthWindowEvictsOldest(t *testing.T) {
	w, err := New(Config{Kind: Length, Length: 2})
	require.NoError(t, err)

	out := w.Add(ev(1, record.Int32(1)))
	assert.Len(t, out, 1)
	assert.Equal(t, record.Current, out[0].Type)

	out = w.Add(ev(2, record.Int32(2)))
	assert.Len(t, out, 1)

	out = w.Add(ev(3, record.Int32(3)))
	require.Len(t, out, 2)
	assert.Equal(t, record.Current, out[0].Type)
	assert.Equal(t, record.Expired, out[1].Type)
	assert.Equal(t, int64(1), out[1].Values[0].AsInt64()) // oldest evicted
}

func TestLengthBatchWindowEmitsOnNth(t *testing.T) {
	w, err := New(Config{Kind: LengthBatch, Length: 3})
	require.NoError(t, err)

	assert.Nil(t, w.Add(ev(1, record.Int32(1))))
	assert.Nil(t, w.Add(ev(2, record.Int32(2))))
	out := w.Add(ev(3, record.Int32(3)))
	require.Len(t, out, 6) // 3 CURRENT + 3 EXPIRED
	for i := 0; i < 3; i++ {
		assert.Equal(t, record.Current, out[i].Type)
	}
	for i := 3; i < 6; i++ {
		assert.Equal(t, record.Expired, out[i].Type)
	}

	// resets after emission
	assert.Nil(t, w.Add(ev(4, record.Int32(4))))
}

func TestTimeWindowEvictsOlderThanDuration(t *testing.T) {
	w, err := New(Config{Kind: Time, Duration: 10 * time.Second})
	require.NoError(t, err)

	out := w.Add(ev(0, record.Int32(1)))
	assert.Len(t, out, 1)

	out = w.Add(ev(5*int64(time.Second), record.Int32(2)))
	assert.Len(t, out, 1) // nothing older than now-10s yet

	out = w.Add(ev(11*int64(time.Second), record.Int32(3)))
	require.Len(t, out, 2) // event at ts=0 now older than (11s - 10s) = 1s
	assert.Equal(t, record.Expired, out[0].Type)
	assert.Equal(t, int64(1), out[0].Values[0].AsInt64())
}

func TestExternalTimeWindowUsesNamedAttribute(t *testing.T) {
	w, err := New(Config{Kind: ExternalTime, Duration: 10 * time.Second, TimestampAttr: 0})
	require.NoError(t, err)

	out := w.Add(ev(999, record.Int64(0)))
	assert.Len(t, out, 1)
	out = w.Add(ev(999, record.Int64(11*int64(time.Second))))
	require.Len(t, out, 2)
	assert.Equal(t, record.Expired, out[0].Type)
}

func TestSortWindowEvictsLargestInOrder(t *testing.T) {
	w, err := New(Config{Kind: Sort, Length: 2, SortKeys: []SortKey{{AttrIndex: 0}}})
	require.NoError(t, err)

	w.Add(ev(1, record.Int32(5)))
	w.Add(ev(2, record.Int32(1)))
	out := w.Add(ev(3, record.Int32(3)))
	require.Len(t, out, 2)
	assert.Equal(t, record.Expired, out[1].Type)
	assert.Equal(t, int64(5), out[1].Values[0].AsInt64()) // largest evicted
}

func TestSortWindowNonNumericSortsAsGreatest(t *testing.T) {
	w, err := New(Config{Kind: Sort, Length: 1, SortKeys: []SortKey{{AttrIndex: 0}}})
	require.NoError(t, err)

	w.Add(ev(1, record.Int32(5)))
	out := w.Add(ev(2, record.String("not-a-number")))
	require.Len(t, out, 2)
	assert.Equal(t, record.Expired, out[1].Type)
	assert.Equal(t, "not-a-number", out[1].Values[0].AsString())
}

func TestSessionWindowClosesOnGapExceeded(t *testing.T) {
	w, err := New(Config{Kind: Session, Gap: 5 * time.Second})
	require.NoError(t, err)

	out := w.Add(ev(0, record.Int32(1)))
	assert.Len(t, out, 1)
	out = w.Add(ev(3*int64(time.Second), record.Int32(2)))
	assert.Len(t, out, 1) // still within gap

	out = w.Add(ev(20*int64(time.Second), record.Int32(3)))
	require.Len(t, out, 3) // 2 EXPIRED from closed session + 1 new CURRENT
	assert.Equal(t, record.Expired, out[0].Type)
	assert.Equal(t, record.Expired, out[1].Type)
	assert.Equal(t, record.Current, out[2].Type)
}

func TestSessionWindowFlushClosesOpenSessions(t *testing.T) {
	w, err := New(Config{Kind: Session, Gap: 5 * time.Second})
	require.NoError(t, err)
	w.Add(ev(0, record.Int32(1)))
	sw := w.(*SessionWindow)
	out := sw.Flush()
	require.Len(t, out, 1)
	assert.Equal(t, record.Expired, out[0].Type)
}

func TestTimeBatchWindowFlushesOnTimer(t *testing.T) {
	w, err := New(Config{Kind: TimeBatch, Duration: 30 * time.Millisecond})
	require.NoError(t, err)

	var mu sync.Mutex
	var got []*record.StreamEvent
	done := make(chan struct{})
	w.SetCallback(func(batch []*record.StreamEvent) {
		mu.Lock()
		got = append(got, batch...)
		mu.Unlock()
		close(done)
	})
	w.Start()
	defer w.Stop()

	w.Add(ev(1, record.Int32(1)))
	w.Add(ev(2, record.Int32(2)))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeBatch window never flushed")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 4) // 2 CURRENT + 2 EXPIRED
}

func TestSlidingWindowEmitsOnTick(t *testing.T) {
	w, err := New(Config{Kind: Sliding, Size: 50 * time.Millisecond, Slide: 20 * time.Millisecond})
	require.NoError(t, err)

	received := make(chan []*record.StreamEvent, 8)
	w.SetCallback(func(batch []*record.StreamEvent) { received <- batch })
	w.Start()
	defer w.Stop()

	w.Add(ev(1, record.Int32(1)))

	select {
	case batch := <-received:
		assert.NotEmpty(t, batch)
	case <-time.After(time.Second):
		t.Fatal("sliding window never ticked")
	}
}

func TestLengthWindowCaptureRestoreRoundTrip(t *testing.T) {
	w, err := New(Config{Kind: Length, Length: 5})
	require.NoError(t, err)
	w.Add(ev(1, record.Int32(1)))
	w.Add(ev(2, record.Int32(2)))

	data, err := w.Capture()
	require.NoError(t, err)

	restored, err := New(Config{Kind: Length, Length: 5})
	require.NoError(t, err)
	require.NoError(t, restored.Restore(data))

	out := restored.Add(ev(3, record.Int32(3)))
	assert.Len(t, out, 1) // still under capacity after restoring 2 records
}
