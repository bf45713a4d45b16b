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

// Package join implements the stream-stream (§4.6) and stream-table
// (§4.7) join contracts. Both probe one side's held records through the
// other side's ON condition and emit composite StateEvents; neither
// maintains its own buffer of matched output, so repeated probes against
// a window's Current() are the only state a join carries beyond its
// NULL-padding bookkeeping.
package join
