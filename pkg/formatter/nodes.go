// Package formatter converts canvas-shaped graph fields into compose-shaped YAML nodes.
// Every formatter returns nil when there is nothing worth emitting, and callers drop nil
// values instead of writing empty keys.
package formatter

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
)

// yaml11Bools read back as booleans under YAML 1.1 parsers even though yaml.v3 writes them plain
var yaml11Bools = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": true, "N": true, "no": true, "No": true, "NO": true,
	"on": true, "On": true, "ON": true, "off": true, "Off": true, "OFF": true,
}

// Str is a plain string scalar. The encoder quotes it when it would otherwise read back as
// another type, so "8080" or "true" stay strings.
func Str(s string) *yaml.Node {
	if yaml11Bools[s] {
		return DoubleQuoted(s)
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// StrIf is Str for non-empty strings and nil otherwise
func StrIf(s string) *yaml.Node {
	if s == "" {
		return nil
	}
	return Str(s)
}

// DoubleQuoted is a string scalar always written in double quotes
func DoubleQuoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// SingleQuoted is a string scalar always written in single quotes
func SingleQuoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.SingleQuotedStyle}
}

// Quoted normalizes the quoting of a free-form value: single quotes are preferred, a value
// containing single quotes loses them, and a value containing only double quotes loses
// those and is double-quoted instead.
func Quoted(s string) *yaml.Node {
	if strings.Contains(s, "'") {
		return SingleQuoted(strings.ReplaceAll(s, "'", ""))
	}
	if strings.Contains(s, `"`) {
		return DoubleQuoted(strings.ReplaceAll(s, `"`, ""))
	}
	return SingleQuoted(s)
}

// Null is an explicit null value
func Null() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// Unset is a null written without a value, as in `KEY:`
func Unset() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
}

// Bool is a boolean scalar
func Bool(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(b)}
}

// Sequence is a block sequence of the non-nil items
func Sequence(items ...*yaml.Node) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, item := range items {
		if item != nil {
			seq.Content = append(seq.Content, item)
		}
	}
	return seq
}

// FlowSequence is an inline sequence of the non-nil items
func FlowSequence(items ...*yaml.Node) *yaml.Node {
	seq := Sequence(items...)
	seq.Style = yaml.FlowStyle
	return seq
}

// Mapping builds an ordered YAML mapping, skipping nil values
type Mapping struct {
	node  *yaml.Node
	index map[string]int
}

// NewMapping returns an empty mapping builder
func NewMapping() *Mapping {
	return &Mapping{
		node:  &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
		index: make(map[string]int),
	}
}

// Set adds key when value is non-nil. Setting a key twice keeps its first position and the
// last value.
func (m *Mapping) Set(key string, value *yaml.Node) *Mapping {
	if value == nil {
		return m
	}
	if i, ok := m.index[key]; ok {
		m.node.Content[i+1] = value
		return m
	}
	m.index[key] = len(m.node.Content)
	m.node.Content = append(m.node.Content, Str(key), value)
	return m
}

// Len is the number of keys
func (m *Mapping) Len() int {
	return len(m.index)
}

// Node returns the mapping node
func (m *Mapping) Node() *yaml.Node {
	return m.node
}

// NodeOrNil returns the mapping node, or nil when no key was set
func (m *Mapping) NodeOrNil() *yaml.Node {
	if m.Len() == 0 {
		return nil
	}
	return m.node
}

// Value converts a decoded JSON/YAML value into a node. Map keys are sorted so output is
// deterministic. Values that cannot be represented yield nil.
func Value(v any) *yaml.Node {
	switch val := v.(type) {
	case nil:
		return Null()
	case *yaml.Node:
		return val
	case string:
		return Str(val)
	case bool:
		return Bool(val)
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(val)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(val, 10)}
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(val, 10)}
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(val, 'f', -1, 64)}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Value(i)
		}
		if f, err := val.Float64(); err == nil {
			return Value(f)
		}
		return Str(val.String())
	case graph.KeyValues:
		return KeyValues(val, false)
	case []string:
		seq := Sequence()
		for _, item := range val {
			seq.Content = append(seq.Content, Str(item))
		}
		return seq
	case []any:
		seq := Sequence()
		for _, item := range val {
			seq.Content = append(seq.Content, Value(item))
		}
		return seq
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			m.Set(k, Value(val[k]))
		}
		return m.Node()
	case map[any]any:
		converted := make(map[string]any, len(val))
		for k, item := range val {
			converted[fmt.Sprint(k)] = item
		}
		return Value(converted)
	}

	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil
	}
	return &node
}

// ScalarString renders a decoded scalar as text
func ScalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	}
	return fmt.Sprint(v)
}
