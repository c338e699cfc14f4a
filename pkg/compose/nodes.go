package compose

import (
	"gopkg.in/yaml.v3"
)

type pair struct {
	key   string
	value *yaml.Node
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isMergeKey(n *yaml.Node) bool {
	return n.Tag == "!!merge" || (n.Value == "<<" && n.Style == 0)
}

// pairs returns mapping entries in document order with "<<" merge keys expanded.
// Explicit keys win over merged ones; among merged sources the first wins.
func pairs(n *yaml.Node) []pair {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}

	var out []pair
	index := make(map[string]int)
	set := func(p pair, override bool) {
		if i, ok := index[p.key]; ok {
			if override {
				out[i].value = p.value
			}
			return
		}
		index[p.key] = len(out)
		out = append(out, p)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := resolve(n.Content[i]), resolve(n.Content[i+1])
		if isMergeKey(key) {
			sources := []*yaml.Node{value}
			if value != nil && value.Kind == yaml.SequenceNode {
				sources = value.Content
			}
			for _, src := range sources {
				for _, p := range pairs(src) {
					set(p, false)
				}
			}
			continue
		}
		set(pair{key: key.Value, value: value}, true)
	}
	return out
}

// lookup returns the value of key in a mapping, or nil
func lookup(n *yaml.Node, key string) *yaml.Node {
	for _, p := range pairs(n) {
		if p.key == key {
			return p.value
		}
	}
	return nil
}

// scalar returns the text of a scalar node; null reads as ""
func scalar(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return "", false
	}
	if n.Tag == "!!null" {
		return "", true
	}
	return n.Value, true
}

func scalarOf(n *yaml.Node) string {
	s, _ := scalar(n)
	return s
}

// stringList reads a scalar or a sequence of scalars
func stringList(n *yaml.Node) []string {
	n = resolve(n)
	if n == nil {
		return nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		if s, _ := scalar(n); s != "" {
			return []string{s}
		}
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if s, ok := scalar(item); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// names reads a sequence of names or the keys of a mapping
func names(n *yaml.Node) []string {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.MappingNode {
		var out []string
		for _, p := range pairs(n) {
			out = append(out, p.key)
		}
		return out
	}
	return stringList(n)
}

func decodeAny(n *yaml.Node) any {
	if n == nil {
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil
	}
	return v
}

func isMapping(n *yaml.Node) bool {
	n = resolve(n)
	return n != nil && n.Kind == yaml.MappingNode
}

func isNull(n *yaml.Node) bool {
	n = resolve(n)
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}
