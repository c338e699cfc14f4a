package formatter

import (
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/version"
)

// TopLevelVolumes renders the top-level volumes section keyed by volume name
func TopLevelVolumes(volumes []graph.VolumeSpec, gen version.Generation) *yaml.Node {
	section := NewMapping()
	for _, v := range volumes {
		if v.Name == "" {
			continue
		}
		entry := NewMapping().
			Set("external", external(v.External, v.ExternalName)).
			Set("name", StrIf(v.VolumeCustomName)).
			Set("driver", StrIf(v.Driver)).
			Set("driver_opts", KeyValues(v.DriverOpts, true))
		if gen.SupportsLabels() {
			entry.Set("labels", KeyValues(v.Labels, true))
		}
		section.Set(v.Name, orNull(entry))
	}
	return section.NodeOrNil()
}

// TopLevelNetworks renders the top-level networks section keyed by network name
func TopLevelNetworks(networks []graph.NetworkSpec, gen version.Generation) *yaml.Node {
	if !gen.SupportsNetworks() {
		return nil
	}
	section := NewMapping()
	for _, n := range networks {
		if n.Name == "" {
			continue
		}
		entry := NewMapping().
			Set("external", external(n.External, n.ExternalName)).
			Set("name", StrIf(n.ObjectName)).
			Set("driver", StrIf(n.Driver)).
			Set("driver_opts", KeyValues(n.DriverOpts, true)).
			Set("labels", KeyValues(n.Labels, true))
		section.Set(n.Name, orNull(entry))
	}
	return section.NodeOrNil()
}

func external(isExternal bool, name string) *yaml.Node {
	if !isExternal {
		return nil
	}
	if name == "" {
		return Bool(true)
	}
	return NewMapping().Set("name", Str(name)).Node()
}

// orNull keeps entries with nothing set as an explicit null rather than {}
func orNull(m *Mapping) *yaml.Node {
	if m.Len() == 0 {
		return Null()
	}
	return m.Node()
}
