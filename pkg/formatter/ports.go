package formatter

import (
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
)

// Ports renders each port as a double-quoted "published" or "published:target" string
func Ports(ports []graph.Port) *yaml.Node {
	seq := Sequence()
	for _, p := range ports {
		published, target := p.Published.String(), p.Target.String()
		switch {
		case published != "" && target != "":
			seq.Content = append(seq.Content, DoubleQuoted(published+":"+target))
		case published != "":
			seq.Content = append(seq.Content, DoubleQuoted(published))
		case target != "":
			seq.Content = append(seq.Content, DoubleQuoted(target))
		}
	}
	if len(seq.Content) == 0 {
		return nil
	}
	return seq
}
