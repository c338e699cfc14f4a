package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var nullJSON = []byte("null")

// Scalar is a string that also accepts JSON numbers and booleans, as port numbers and
// label values often arrive unquoted.
type Scalar string

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	case '{', '[':
		return fmt.Errorf("expected a scalar, got %s", data)
	default:
		// numbers and booleans keep their literal text
		*s = Scalar(data)
	}
	return nil
}

func (s Scalar) String() string { return string(s) }

// ParseKeyValue splits a "KEY=VALUE" entry at the first '='. A bare "KEY" is unset.
func ParseKeyValue(entry string) KeyValue {
	key, value, found := strings.Cut(entry, "=")
	return KeyValue{Key: key, Value: value, Unset: !found}
}

// isNullJSON reports whether a raw value is absent or null
func isNullJSON(data json.RawMessage) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, nullJSON)
}

// UnmarshalJSON accepts a list of {key, value} objects, a list of "KEY=VALUE" strings,
// or a plain object. Object key order is preserved.
func (kv *KeyValues) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		*kv = nil
		return nil
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(KeyValues, 0, len(items))
		for _, item := range items {
			var str string
			if err := json.Unmarshal(item, &str); err == nil {
				out = append(out, ParseKeyValue(str))
				continue
			}
			var entry struct {
				Key   string          `json:"key"`
				Value json.RawMessage `json:"value"`
				Unset bool            `json:"unset"`
			}
			if err := json.Unmarshal(item, &entry); err != nil {
				return fmt.Errorf("invalid key/value entry %s: %w", item, err)
			}
			var value Scalar
			if err := value.UnmarshalJSON(entry.Value); err != nil {
				return fmt.Errorf("invalid value for %q: %w", entry.Key, err)
			}
			out = append(out, KeyValue{
				Key:   entry.Key,
				Value: string(value),
				Unset: entry.Unset || (isNullJSON(entry.Value) && value == ""),
			})
		}
		*kv = out
		return nil

	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return err
		}
		var out KeyValues
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("invalid value for %q: %w", key, err)
			}
			var value Scalar
			if err := value.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("invalid value for %q: %w", key, err)
			}
			out = append(out, KeyValue{Key: key, Value: string(value), Unset: isNullJSON(raw)})
		}
		*kv = out
		return nil
	}

	return fmt.Errorf("key/value list must be an array or an object, got %s", data)
}

// StringList accepts either a single string or a list of strings
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		*l = nil
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*l = StringList{str}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(StringList, 0, len(items))
	for _, item := range items {
		var str Scalar
		if err := json.Unmarshal(item, &str); err == nil {
			out = append(out, string(str))
			continue
		}
		// canvas key/value editors send {key, value} rows
		var entry KeyValue
		if err := json.Unmarshal(item, &entry); err != nil {
			return fmt.Errorf("invalid list entry %s: %w", item, err)
		}
		if entry.Value != "" {
			out = append(out, entry.Key+"="+entry.Value)
		} else {
			out = append(out, entry.Key)
		}
	}
	*l = out
	return nil
}

// Command is a command or entrypoint, either a single string or an argument list
type Command struct {
	Text  string
	Items []string
	List  bool
}

// NewCommandText builds a single-string command
func NewCommandText(text string) *Command {
	return &Command{Text: text}
}

// NewCommandList builds a list command
func NewCommandList(items ...string) *Command {
	return &Command{Items: items, List: true}
}

func (c Command) MarshalJSON() ([]byte, error) {
	if c.List {
		items := c.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(c.Text)
}

func (c *Command) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		*c = Command{}
		return nil
	}
	if data[0] == '[' {
		var items []Scalar
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("invalid command list: %w", err)
		}
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = string(item)
		}
		*c = Command{Items: out, List: true}
		return nil
	}
	var text Scalar
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	*c = Command{Text: string(text)}
	return nil
}

// buildFields are the build keys modelled by BuildSpec; anything else lands in Extra.
var buildFields = map[string]bool{
	"build": true, "context": true, "dockerfile": true, "args": true, "cache_from": true,
	"labels": true, "network": true, "shm_size": true, "target": true,
}

type buildSpecAlias BuildSpec

// ShortForm reports whether the build is only a plain build string
func (b BuildSpec) ShortForm() bool {
	return b.Build != "" && b.Context == "" && b.Dockerfile == "" && len(b.Args) == 0 &&
		len(b.CacheFrom) == 0 && len(b.Labels) == 0 && b.Network == "" && b.ShmSize == "" &&
		b.Target == "" && len(b.Extra) == 0
}

func (b BuildSpec) MarshalJSON() ([]byte, error) {
	if b.ShortForm() {
		return json.Marshal(b.Build)
	}
	raw, err := json.Marshal(buildSpecAlias(b))
	if err != nil {
		return nil, err
	}
	if len(b.Extra) == 0 {
		return raw, nil
	}
	merged := map[string]any{}
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, err
	}
	for k, v := range b.Extra {
		if !buildFields[k] {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

func (b *BuildSpec) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, nullJSON) {
		*b = BuildSpec{}
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*b = BuildSpec{Build: str}
		return nil
	}

	var alias buildSpecAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("invalid build: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("invalid build: %w", err)
	}
	for k, v := range fields {
		if buildFields[k] {
			continue
		}
		var value any
		if err := json.Unmarshal(v, &value); err != nil {
			return fmt.Errorf("invalid build option %q: %w", k, err)
		}
		if alias.Extra == nil {
			alias.Extra = map[string]any{}
		}
		alias.Extra[k] = value
	}
	*b = BuildSpec(alias)
	return nil
}
