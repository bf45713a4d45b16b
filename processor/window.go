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

package processor

import (
	"github.com/eventflux-io/engine-sub003/record"
	"github.com/eventflux-io/engine-sub003/window"
)

// Window adapts a window.Window into the Processor contract: Add's
// synchronous return becomes Process's return. Timer-driven emissions
// (timeBatch/tumbling, sliding) still arrive through the window's own
// callback, registered separately by whoever wires the query graph —
// Window does not itself observe that path.
type Window struct {
	w window.Window
}

// NewWindow wraps w.
func NewWindow(w window.Window) *Window { return &Window{w: w} }

func (p *Window) Kind() Kind { return WindowKind }

func (p *Window) Process(ev *record.StreamEvent) ([]*record.StreamEvent, error) {
	return p.w.Add(ev), nil
}

// Underlying exposes the wrapped window so callers can register its
// callback and checkpoint it as a StateHolder.
func (p *Window) Underlying() window.Window { return p.w }
