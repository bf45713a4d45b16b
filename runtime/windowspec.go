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

package runtime

import (
	"fmt"
	"time"

	"github.com/eventflux-io/engine-sub003/plan"
	"github.com/eventflux-io/engine-sub003/window"
)

// windowConfig resolves a plan.WindowSpec's loosely-typed Params into a
// window.Config. Params is positional per Kind, following the teacher's
// CreateWindow(WindowConfig) factory switch, adapted from a single typed
// config struct to a {Kind, Params} pair since plan.WindowSpec has to
// stay agnostic of window.Config's variant-specific fields.
func windowConfig(spec *plan.WindowSpec) (window.Config, error) {
	cfg := window.Config{}
	switch spec.Kind {
	case "length":
		cfg.Kind = window.Length
		n, err := intParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		cfg.Length = n
	case "lengthBatch":
		cfg.Kind = window.LengthBatch
		n, err := intParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		cfg.Length = n
	case "time":
		cfg.Kind = window.Time
		d, err := durationParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		cfg.Duration = d
	case "timeBatch", "tumbling":
		cfg.Kind = window.TimeBatch
		d, err := durationParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		cfg.Duration = d
	case "sliding":
		cfg.Kind = window.Sliding
		size, err := durationParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		slide, err := durationParam(spec, 1)
		if err != nil {
			return cfg, err
		}
		cfg.Size = size
		cfg.Slide = slide
	case "session":
		cfg.Kind = window.Session
		gap, err := durationParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		cfg.Gap = gap
		if len(spec.Params) > 1 {
			idx, err := intParam(spec, 1)
			if err != nil {
				return cfg, err
			}
			cfg.HasSessionKey = true
			cfg.SessionKeyIdx = idx
		}
	case "externalTime":
		cfg.Kind = window.ExternalTime
		idx, err := intParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		d, err := durationParam(spec, 1)
		if err != nil {
			return cfg, err
		}
		cfg.TimestampAttr = idx
		cfg.Duration = d
		if len(spec.Params) > 2 {
			lateness, err := durationParam(spec, 2)
			if err != nil {
				return cfg, err
			}
			cfg.Lateness = lateness
		}
	case "sort":
		cfg.Kind = window.Sort
		n, err := intParam(spec, 0)
		if err != nil {
			return cfg, err
		}
		keys, ok := spec.Params[1].([]window.SortKey)
		if !ok {
			return cfg, fmt.Errorf("runtime: sort window expects []window.SortKey at Params[1]")
		}
		cfg.Length = n
		cfg.SortKeys = keys
	default:
		return cfg, fmt.Errorf("runtime: unknown window kind %q", spec.Kind)
	}
	return cfg, nil
}

func intParam(spec *plan.WindowSpec, i int) (int, error) {
	if i >= len(spec.Params) {
		return 0, fmt.Errorf("runtime: window %q missing param %d", spec.Kind, i)
	}
	switch v := spec.Params[i].(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("runtime: window %q param %d is not an int (%T)", spec.Kind, i, v)
	}
}

func durationParam(spec *plan.WindowSpec, i int) (time.Duration, error) {
	if i >= len(spec.Params) {
		return 0, fmt.Errorf("runtime: window %q missing param %d", spec.Kind, i)
	}
	d, ok := spec.Params[i].(time.Duration)
	if !ok {
		return 0, fmt.Errorf("runtime: window %q param %d is not a time.Duration (%T)", spec.Kind, i, spec.Params[i])
	}
	return d, nil
}
