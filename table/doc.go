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

// Package table implements the table store of §4.9: a thread-safe
// record store supporting O(1) keyed lookup plus condition scans, with
// in-memory, bounded-cache and delegating (external data source)
// variants. Row keys are produced by a type-tagged canonical encoder
// (EncodeKey) so values of different kinds never collide in the index.
//
// A delegating backend (e.g. a database/sql-backed implementation)
// satisfies DataSource, which receives only a condition's encoded key (or
// a full-scan request when the condition has no key); DelegatingTable
// then applies CompiledCondition.Eval to the returned rows locally. No
// concrete delegating backend ships here (see DESIGN.md).
package table
