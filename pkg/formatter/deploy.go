package formatter

import (
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/version"
)

// Deploy renders the swarm deploy section for generations that support it. Labels become a
// mapping, placement preferences kept as key/value rows become single-key mappings, and
// empty values are pruned at every depth.
func Deploy(deploy map[string]any, gen version.Generation) *yaml.Node {
	if !gen.SupportsDeploy() || len(deploy) == 0 {
		return nil
	}

	out := make(map[string]any, len(deploy))
	for k, v := range deploy {
		out[k] = v
	}

	if labels, ok := KeyValuesFrom(out["labels"]); ok {
		if node := KeyValues(labels, false); node != nil {
			out["labels"] = node
		} else {
			delete(out, "labels")
		}
	}

	if placement, ok := out["placement"].(map[string]any); ok {
		p := make(map[string]any, len(placement))
		for k, v := range placement {
			p[k] = v
		}
		if prefs, ok := KeyValuesFrom(p["preferences"]); ok {
			rows := make([]any, 0, len(prefs))
			for _, pref := range prefs {
				if pref.Key == "" {
					continue
				}
				rows = append(rows, map[string]any{pref.Key: pref.Value})
			}
			p["preferences"] = rows
		}
		out["placement"] = p
	}

	pruned := Prune(out)
	if pruned == nil {
		return nil
	}
	return Value(pruned)
}

// Prune drops nil, empty strings, empty lists and empty mappings at every depth. It returns
// nil when nothing is left.
func Prune(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return val
	case *yaml.Node:
		if val == nil || (val.Kind != yaml.ScalarNode && len(val.Content) == 0) {
			return nil
		}
		return val
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if pruned := Prune(item); pruned != nil {
				out = append(out, pruned)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item != "" {
				out = append(out, item)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if pruned := Prune(item); pruned != nil {
				out[k] = pruned
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return v
}
