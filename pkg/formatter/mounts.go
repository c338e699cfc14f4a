package formatter

import (
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
)

// Mounts renders service mounts as "source:destination[:mode]" strings. Mounts of unknown
// volumes are dropped.
func Mounts(mounts []graph.VolumeMount, volumes []graph.VolumeSpec) *yaml.Node {
	names := make(map[string]string, len(volumes))
	for _, v := range volumes {
		names[v.UUID] = v.Name
	}

	seq := Sequence()
	for _, m := range mounts {
		var entry string
		switch {
		case m.Volume != "":
			name, ok := names[m.Volume]
			if !ok || m.Destination == "" {
				continue
			}
			entry = name + ":" + m.Destination
		case m.RelativePathSource != "":
			dest := m.Destination
			if dest == "" {
				dest = m.RelativePathSource
			}
			entry = m.RelativePathSource + ":" + dest
		default:
			continue
		}
		if m.Mode != "" {
			entry += ":" + m.Mode
		}
		seq.Content = append(seq.Content, Str(entry))
	}

	if len(seq.Content) == 0 {
		return nil
	}
	return seq
}

// NetworkRefs renders network uuids as network names, dropping unknown ones
func NetworkRefs(refs []string, networks []graph.NetworkSpec) *yaml.Node {
	names := make(map[string]string, len(networks))
	for _, n := range networks {
		names[n.UUID] = n.Name
	}

	seq := Sequence()
	seen := make(map[string]bool)
	for _, ref := range refs {
		name, ok := names[ref]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		seq.Content = append(seq.Content, Str(name))
	}

	if len(seq.Content) == 0 {
		return nil
	}
	return seq
}
