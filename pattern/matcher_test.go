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

package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eventflux-io/engine-sub003/record"
)

func ev(stream string, ts int64, id int32) *record.StreamEvent {
	return record.NewStreamEvent(stream, ts, []record.Value{record.Int32(id)})
}

func TestSequencePatternMatchesInOrder(t *testing.T) {
	p := Pattern{
		Steps: []Step{
			NewStep("e1", "A", nil),
			NewStep("e2", "B", nil),
		},
		Mode: Sequence,
	}
	m := New(p)

	out := m.Handle(ev("A", 1, 1))
	require.Empty(t, out)

	out = m.Handle(ev("B", 2, 2))
	require.Len(t, out, 1)
	require.True(t, out[0].Complete())
	require.EqualValues(t, 1, out[0].Chain("e1").At(0).AsInt64())
	require.EqualValues(t, 2, out[0].Chain("e2").At(0).AsInt64())
}

func TestSequencePatternIgnoresUnrelatedStream(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  Sequence,
	}
	m := New(p)
	m.Handle(ev("A", 1, 1))
	out := m.Handle(ev("C", 2, 9))
	require.Empty(t, out)
	out = m.Handle(ev("B", 3, 2))
	require.Len(t, out, 1)
}

func TestSequenceWithoutEveryIsOneShot(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  Sequence,
	}
	m := New(p)
	m.Handle(ev("A", 1, 1))
	// A second A arrives before B completes the first partial; since
	// Every is off and a partial is already active, no second one seeds.
	m.Handle(ev("A", 2, 2))
	out := m.Handle(ev("B", 3, 9))
	require.Len(t, out, 1)
	require.EqualValues(t, 1, out[0].Chain("e1").At(0).AsInt64())
}

func TestSequenceWithEveryRestartsContinuously(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  Sequence,
		Every: true,
	}
	m := New(p)
	m.Handle(ev("A", 1, 1))
	m.Handle(ev("A", 2, 2))
	out := m.Handle(ev("B", 3, 9))
	// Both in-flight partials (seeded by A=1 and A=2) complete against B.
	require.Len(t, out, 2)
}

func TestWithinEvictsStalePartial(t *testing.T) {
	p := Pattern{
		Steps:  []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:   Sequence,
		Within: 5 * time.Nanosecond,
	}
	var timeouts int
	m := New(p)
	m.OnTimeout = func() { timeouts++ }

	m.Handle(ev("A", 0, 1))
	out := m.Handle(ev("B", 100, 2))
	require.Empty(t, out)
	require.Equal(t, 1, timeouts)
}

func TestQuantifiedStepCollectsThenAdvances(t *testing.T) {
	p := Pattern{
		Steps: []Step{
			NewStep("e1", "A", nil).Quantified(2, 3),
			NewStep("e2", "B", nil),
		},
		Mode: Sequence,
	}
	m := New(p)
	require.Empty(t, m.Handle(ev("A", 1, 1)))
	require.Empty(t, m.Handle(ev("A", 2, 2)))
	// Min (2) satisfied; a B now forces the quantified step closed and
	// completes the pattern.
	out := m.Handle(ev("B", 3, 9))
	require.Len(t, out, 1)
	require.EqualValues(t, 2, out[0].Chain("e1").At(0).AsInt64())
}

func TestAndPatternMatchesEitherOrder(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  And,
	}
	m := New(p)
	require.Empty(t, m.Handle(ev("B", 1, 1)))
	out := m.Handle(ev("A", 2, 2))
	require.Len(t, out, 1)
	require.True(t, out[0].Complete())
}

func TestOrPatternCompletesOnEitherStep(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  Or,
	}
	m := New(p)
	out := m.Handle(ev("B", 1, 7))
	require.Len(t, out, 1)
	require.Nil(t, out[0].Chain("e1"))
	require.EqualValues(t, 7, out[0].Chain("e2").At(0).AsInt64())
}

func TestOrPatternWithoutEveryFiresOnce(t *testing.T) {
	p := Pattern{
		Steps: []Step{NewStep("e1", "A", nil), NewStep("e2", "B", nil)},
		Mode:  Or,
	}
	m := New(p)
	require.Len(t, m.Handle(ev("A", 1, 1)), 1)
	require.Empty(t, m.Handle(ev("B", 2, 2)))
}
