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

// Package pattern implements the composite-event matcher of §4.8: a
// state machine of partial matches advancing a Pattern's steps as
// events arrive on the streams they reference. Top-level sequence
// (->), AND, OR, EVERY and WITHIN are supported; nested logical groups
// inside a sequence are the documented known limitation carried
// forward from the specification.
package pattern
