package formatter

import (
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
)

// blockListThreshold is the element length from which a command list is written one
// element per line
const blockListThreshold = 30

// Command renders a command or entrypoint. A string is read as a list literal when it
// looks like one, split on newlines when it spans several lines, and kept as a scalar
// otherwise.
func Command(cmd *graph.Command) *yaml.Node {
	if cmd == nil {
		return nil
	}
	if cmd.List {
		return commandList(cmd.Items)
	}

	text := cmd.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if items, ok := parseListLiteral(text); ok {
		return commandList(items)
	}
	if strings.Contains(text, "\n") {
		return commandList(SplitLines(text))
	}
	return Str(text)
}

// SplitLines splits text on newlines, dropping blank lines
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// parseListLiteral accepts a bracketed list whose items are all quoted strings, so shell
// tests such as "[ -f x ]" stay scalars
func parseListLiteral(text string) ([]string, bool) {
	flat := strings.TrimSpace(strings.ReplaceAll(text, "\n", ""))
	if !strings.HasPrefix(flat, "[") || !strings.HasSuffix(flat, "]") {
		return nil, false
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(flat), &doc); err != nil || len(doc.Content) != 1 {
		return nil, false
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return nil, false
	}
	items := make([]string, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.ScalarNode ||
			(item.Style != yaml.SingleQuotedStyle && item.Style != yaml.DoubleQuotedStyle) {
			return nil, false
		}
		items = append(items, item.Value)
	}
	return items, true
}

func commandList(items []string) *yaml.Node {
	switch len(items) {
	case 0:
		return nil
	case 1:
		return Str(items[0])
	}

	longest := 0
	for _, item := range items {
		if n := utf8.RuneCountInString(item); n > longest {
			longest = n
		}
	}

	if longest >= blockListThreshold {
		seq := Sequence()
		for _, item := range items {
			seq.Content = append(seq.Content, Quoted(item))
		}
		return seq
	}

	seq := FlowSequence()
	for _, item := range items {
		seq.Content = append(seq.Content, DoubleQuoted(item))
	}
	return seq
}
