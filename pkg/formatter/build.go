package formatter

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/version"
)

// Build renders a build spec. Generation 1 only understands a context string, so the
// build or context string is all that survives there.
func Build(b *graph.BuildSpec, gen version.Generation) *yaml.Node {
	if b == nil {
		return nil
	}
	if !gen.SupportsBuildOptions() {
		if b.Build != "" {
			return Str(b.Build)
		}
		return StrIf(b.Context)
	}
	if b.Build != "" {
		return Str(b.Build)
	}

	m := NewMapping().
		Set("context", StrIf(b.Context)).
		Set("dockerfile", StrIf(b.Dockerfile)).
		Set("args", KeyValues(b.Args, false))
	if len(b.CacheFrom) > 0 {
		m.Set("cache_from", Value([]string(b.CacheFrom)))
	}
	m.Set("labels", KeyValues(b.Labels, false)).
		Set("network", StrIf(b.Network)).
		Set("shm_size", StrIf(b.ShmSize.String())).
		Set("target", StrIf(b.Target))

	keys := make([]string, 0, len(b.Extra))
	for k := range b.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if pruned := Prune(b.Extra[k]); pruned != nil {
			m.Set(k, Value(pruned))
		}
	}

	return m.NodeOrNil()
}
