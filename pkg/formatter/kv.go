package formatter

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
)

// KeyValues renders ordered pairs as a mapping. With quote set, values get the label quote
// normalization of Quoted. Unset entries are written as `KEY:` and entries without a key
// are skipped.
func KeyValues(kv graph.KeyValues, quote bool) *yaml.Node {
	m := NewMapping()
	for _, entry := range kv {
		if entry.Key == "" {
			continue
		}
		if entry.Unset {
			m.Set(entry.Key, Unset())
		} else if quote {
			m.Set(entry.Key, Quoted(entry.Value))
		} else {
			m.Set(entry.Key, Str(entry.Value))
		}
	}
	return m.NodeOrNil()
}

// KeyValuesFrom normalizes a decoded value into ordered pairs. It accepts a list of
// "KEY=VALUE" strings, a list of {key, value} objects or a mapping (whose keys are sorted).
// ok is false when v has none of those shapes.
func KeyValuesFrom(v any) (graph.KeyValues, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case graph.KeyValues:
		return val, true
	case []string:
		out := make(graph.KeyValues, 0, len(val))
		for _, item := range val {
			out = append(out, graph.ParseKeyValue(item))
		}
		return out, true
	case []any:
		out := make(graph.KeyValues, 0, len(val))
		for _, item := range val {
			switch entry := item.(type) {
			case string:
				out = append(out, graph.ParseKeyValue(entry))
			case map[string]any:
				key, ok := entry["key"]
				if !ok {
					return nil, false
				}
				value := entry["value"]
				out = append(out, graph.KeyValue{Key: ScalarString(key), Value: ScalarString(value), Unset: value == nil})
			default:
				return nil, false
			}
		}
		return out, true
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(graph.KeyValues, 0, len(keys))
		for _, k := range keys {
			out = append(out, graph.KeyValue{Key: k, Value: ScalarString(val[k]), Unset: val[k] == nil})
		}
		return out, true
	}
	return nil, false
}
