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

	"github.com/eventflux-io/engine-sub003/mapper"
	"github.com/eventflux-io/engine-sub003/registry"
	"github.com/eventflux-io/engine-sub003/table"
)

// TableBuilder constructs a table.Table from a plan.TableDef's extension
// config. Registered per extension name (§4.14), mirroring how the
// teacher's function registry resolves an AST function name to a
// concrete implementation at plan-build time.
type TableBuilder func(cfg map[string]string) (table.Table, error)

// TableBuilders is the process-wide registry of table backend
// extensions. init registers the two self-contained backends (§4.9);
// DelegatingTable is never registered here since it requires a live
// DataSource value a builder closure can't receive through string
// config alone. Engine has no option that accepts a ready-made table, so
// a DelegatingTable reaches an Engine only through a TableBuilder the
// caller registers here.
var TableBuilders = registry.New[TableBuilder]()

// MapperBuilders is the process-wide registry of source/sink mapper
// extensions, keyed by wire format name (§6.2).
var MapperBuilders = registry.New[mapperPair]()

// mapperPair bundles the source and sink half of one wire format, since
// a format like "json" or "csv" always needs both directions wired
// together for AddSource/AddSink to share one registry lookup.
type mapperPair struct {
	source mapper.SourceMapper
	sink   mapper.SinkMapper
}

func init() {
	TableBuilders.Register("memory", func(cfg map[string]string) (table.Table, error) {
		keyAttrs, err := keyAttrIndices(cfg)
		if err != nil {
			return nil, err
		}
		return table.NewMemTable(keyAttrs), nil
	}, "table")
	TableBuilders.Register("cache", func(cfg map[string]string) (table.Table, error) {
		size, err := intConfig(cfg, "size", 10000)
		if err != nil {
			return nil, err
		}
		keyAttrs, err := keyAttrIndices(cfg)
		if err != nil {
			return nil, err
		}
		return table.NewCacheTable(size, keyAttrs), nil
	}, "table")

	MapperBuilders.Register("json", mapperPair{source: mapper.JSONMapper{}, sink: mapper.JSONSink{}}, "mapper")
	MapperBuilders.Register("csv", mapperPair{source: mapper.CSVMapper{Delimiter: ','}, sink: mapper.CSVSink{Delimiter: ','}}, "mapper")
	MapperBuilders.Register("bytes", mapperPair{source: mapper.BytesMapper{}, sink: mapper.BytesSink{}}, "mapper")
}

// keyAttrIndices resolves a table extension's "key" config (comma-
// separated attribute names, §4.9's indexed key) to positions within
// its own "attributes" schema, so MemTable/CacheTable can index rows by
// position without re-parsing names on every Insert. A table declaring
// no "key" gets nil — unindexed, every lookup falls back to a scan.
func keyAttrIndices(cfg map[string]string) ([]int, error) {
	rawKey, ok := cfg["key"]
	if !ok || rawKey == "" {
		return nil, nil
	}
	attrs := splitAttrs(cfg["attributes"])
	keyNames := splitAttrs(rawKey)
	idxs := make([]int, len(keyNames))
	for i, name := range keyNames {
		idx := indexOf(attrs, name)
		if idx < 0 {
			return nil, fmt.Errorf("runtime: table key attribute %q not in attributes %q", name, cfg["attributes"])
		}
		idxs[i] = idx
	}
	return idxs, nil
}

func intConfig(cfg map[string]string, key string, def int) (int, error) {
	raw, ok := cfg[key]
	if !ok || raw == "" {
		return def, nil
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0, fmt.Errorf("runtime: table config %q is not an int: %q", key, raw)
	}
	return n, nil
}
