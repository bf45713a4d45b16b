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

// Package aggregator implements the incremental aggregation engine of
// §4.5: pure add/remove/value aggregator state machines, shared
// unmodified across windows, GROUP BY buckets, and pattern collections,
// registered once in the extension registry the way the teacher's
// functions package registers its builtins.
package aggregator

import "github.com/eventflux-io/engine-sub003/record"

// Aggregator is a pure function of the added/removed value stream. add
// is called for CURRENT input, remove for EXPIRED input (§4.5); windows
// that never produce EXPIRED values (e.g. a plain length window feeding
// a non-removing consumer) simply never call remove.
type Aggregator interface {
	Add(v record.Value)
	Remove(v record.Value)
	Value() record.Value
	// New returns a fresh, zero-state instance of the same kind, used to
	// allocate one aggregator per GROUP BY key.
	New() Aggregator
}

// Factory builds a fresh Aggregator instance; registered in Builtins
// under its SQL-visible name.
type Factory func() Aggregator

// Builtins is the process-wide registry of aggregator factories,
// populated by newBuiltinsRegistry at package load the way the teacher's functions package
// registers its builtin catalog at package load.
var Builtins = newBuiltinsRegistry()
