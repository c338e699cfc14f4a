package compose

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/formatter"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/layout"
	"github.com/lissto-dev/composer/pkg/version"
)

// rootKeys are the top-level keys that are never legacy root services
var rootKeys = map[string]bool{
	"version":  true,
	"services": true,
	"volumes":  true,
	"networks": true,
	"configs":  true,
	"secrets":  true,
	"name":     true,
	"include":  true,
}

type parser struct {
	g        *graph.Graph
	services map[string]string
	volumes  map[string]string
	networks map[string]string
	used     map[string]bool
}

// Parse rebuilds a graph from docker-compose YAML. Canvas positions found in prior are
// kept for nodes of the same name; everything else is laid out by layout.Compute.
// An empty document, or one whose root is not a mapping, yields an empty graph.
func Parse(text string, prior layout.Prior) (*graph.Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, newParseError(err)
	}

	g := graph.New("latest")
	var root *yaml.Node
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root = resolve(doc.Content[0])
	}
	if root == nil || root.Kind != yaml.MappingNode {
		return g, nil
	}

	p := &parser{
		g:        g,
		services: make(map[string]string),
		volumes:  make(map[string]string),
		networks: make(map[string]string),
		used:     make(map[string]bool),
	}

	servicesNode := lookup(root, "services")
	legacy := legacyServices(root)

	if v, ok := scalar(lookup(root, "version")); ok && v != "" {
		g.Version = v
	} else if servicesNode == nil && len(legacy) > 0 {
		g.Version = "1"
	}

	resolved, err := version.Resolve(g.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose version: %w", err)
	}

	var serviceEntries []pair
	if resolved.Generation.ServicesAtRoot() || servicesNode == nil {
		serviceEntries = legacy
	} else {
		serviceEntries = pairs(servicesNode)
	}

	volumeEntries := pairs(lookup(root, "volumes"))
	networkEntries := pairs(lookup(root, "networks"))

	// every name gets its uuid before any body is read, so forward references resolve
	for _, e := range serviceEntries {
		p.services[e.key] = p.newID()
	}
	for _, e := range volumeEntries {
		p.volumes[e.key] = p.newID()
	}
	for _, e := range networkEntries {
		p.networks[e.key] = p.newID()
	}

	for _, e := range volumeEntries {
		g.Volumes = append(g.Volumes, p.volume(e))
	}
	for _, e := range networkEntries {
		g.Networks = append(g.Networks, p.network(e))
	}
	for _, e := range serviceEntries {
		g.Services = append(g.Services, p.service(e))
	}

	if secrets, ok := decodeAny(lookup(root, "secrets")).(map[string]any); ok && len(secrets) > 0 {
		g.Secrets = secrets
	}
	if configs, ok := decodeAny(lookup(root, "configs")).(map[string]any); ok && len(configs) > 0 {
		g.Configs = configs
	}

	g.Connections = connections(g)
	g.Canvas = layout.Compute(g, prior)
	return g, nil
}

// legacyServices returns the root entries that look like services of a document without a
// services section
func legacyServices(root *yaml.Node) []pair {
	var out []pair
	for _, e := range pairs(root) {
		if rootKeys[e.key] || strings.HasPrefix(e.key, "x-") {
			continue
		}
		if isMapping(e.value) || isNull(e.value) {
			out = append(out, e)
		}
	}
	return out
}

// newID returns a short uuid unique within the graph being built
func (p *parser) newID() string {
	for {
		id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
		if !p.used[id] {
			p.used[id] = true
			return id
		}
	}
}

func (p *parser) volume(e pair) graph.VolumeSpec {
	v := graph.VolumeSpec{UUID: p.volumes[e.key], Name: e.key}
	v.External, v.ExternalName = external(lookup(e.value, "external"))
	v.VolumeCustomName = scalarOf(lookup(e.value, "name"))
	v.Driver = scalarOf(lookup(e.value, "driver"))
	v.DriverOpts = keyValues(lookup(e.value, "driver_opts"))
	v.Labels = keyValues(lookup(e.value, "labels"))
	return v
}

func (p *parser) network(e pair) graph.NetworkSpec {
	n := graph.NetworkSpec{UUID: p.networks[e.key], Name: e.key}
	n.External, n.ExternalName = external(lookup(e.value, "external"))
	n.ObjectName = scalarOf(lookup(e.value, "name"))
	n.Driver = scalarOf(lookup(e.value, "driver"))
	n.DriverOpts = keyValues(lookup(e.value, "driver_opts"))
	n.Labels = keyValues(lookup(e.value, "labels"))
	return n
}

// external reads `external: true` and the older `external: {name: x}` form
func external(n *yaml.Node) (bool, string) {
	n = resolve(n)
	if n == nil {
		return false, ""
	}
	if n.Kind == yaml.MappingNode {
		return true, scalarOf(lookup(n, "name"))
	}
	s, _ := scalar(n)
	return s == "true" || s == "True" || s == "TRUE" || s == "yes", ""
}

func (p *parser) service(e pair) graph.ServiceSpec {
	body := e.value
	svc := graph.ServiceSpec{UUID: p.services[e.key], Name: e.key}

	if ref := scalarOf(lookup(body, "image")); ref != "" {
		svc.Image, svc.Tag = splitImage(ref)
	}
	svc.Build = build(lookup(body, "build"))
	svc.Command = command(lookup(body, "command"))
	svc.Entrypoint = command(lookup(body, "entrypoint"))
	svc.Environment = keyValues(lookup(body, "environment"))
	svc.EnvFile = stringList(lookup(body, "env_file"))
	svc.Labels = keyValues(lookup(body, "labels"))
	svc.Profiles = stringList(lookup(body, "profiles"))
	svc.Ports = ports(lookup(body, "ports"))
	svc.VolumeMounts = p.mounts(lookup(body, "volumes"))
	svc.ContainerName = scalarOf(lookup(body, "container_name"))
	svc.Restart = scalarOf(lookup(body, "restart"))
	svc.WorkingDir = scalarOf(lookup(body, "working_dir"))

	for _, name := range names(lookup(body, "networks")) {
		if id, ok := p.networks[name]; ok {
			svc.NetworkRefs = append(svc.NetworkRefs, id)
		}
	}
	svc.DependsOn = p.serviceRefs(e.key, names(lookup(body, "depends_on")))

	var links []string
	for _, link := range stringList(lookup(body, "links")) {
		name, _, _ := strings.Cut(link, ":")
		links = append(links, name)
	}
	svc.Links = p.serviceRefs(e.key, links)

	if deploy, ok := decodeAny(lookup(body, "deploy")).(map[string]any); ok && len(deploy) > 0 {
		svc.Deploy = normalizeDeploy(deploy)
	}
	return svc
}

// serviceRefs resolves service names to uuids, dropping unknown names and self references
func (p *parser) serviceRefs(self string, refs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range refs {
		id, ok := p.services[name]
		if !ok || name == self || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// splitImage splits an image reference on its last ':' unless that colon belongs to a
// registry host. Untagged images get "latest"; digests are kept whole.
func splitImage(ref string) (string, string) {
	if strings.Contains(ref, "@") {
		return ref, ""
	}
	i := strings.LastIndex(ref, ":")
	if i < 0 || strings.Contains(ref[i+1:], "/") {
		return ref, "latest"
	}
	return ref[:i], ref[i+1:]
}

func keyValues(n *yaml.Node) graph.KeyValues {
	n = resolve(n)
	if n == nil {
		return nil
	}
	var out graph.KeyValues
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if s, ok := scalar(item); ok && s != "" {
				out = append(out, graph.ParseKeyValue(s))
			}
		}
	case yaml.MappingNode:
		for _, e := range pairs(n) {
			out = append(out, graph.KeyValue{Key: e.key, Value: scalarOf(e.value), Unset: isNull(e.value)})
		}
	}
	return out
}

func command(n *yaml.Node) *graph.Command {
	n = resolve(n)
	if n == nil || isNull(n) {
		return nil
	}
	switch n.Kind {
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			items = append(items, scalarOf(item))
		}
		return graph.NewCommandList(items...)
	case yaml.ScalarNode:
		return graph.NewCommandText(n.Value)
	}
	return nil
}

var buildKeys = map[string]bool{
	"context": true, "dockerfile": true, "args": true, "cache_from": true,
	"labels": true, "network": true, "shm_size": true, "target": true,
}

func build(n *yaml.Node) *graph.BuildSpec {
	n = resolve(n)
	if n == nil || isNull(n) {
		return nil
	}
	if s, ok := scalar(n); ok {
		if s == "" {
			return nil
		}
		return &graph.BuildSpec{Build: s}
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}

	b := &graph.BuildSpec{
		Context:    scalarOf(lookup(n, "context")),
		Dockerfile: scalarOf(lookup(n, "dockerfile")),
		Args:       keyValues(lookup(n, "args")),
		CacheFrom:  stringList(lookup(n, "cache_from")),
		Labels:     keyValues(lookup(n, "labels")),
		Network:    scalarOf(lookup(n, "network")),
		ShmSize:    graph.Scalar(scalarOf(lookup(n, "shm_size"))),
		Target:     scalarOf(lookup(n, "target")),
	}
	for _, e := range pairs(n) {
		if buildKeys[e.key] {
			continue
		}
		if b.Extra == nil {
			b.Extra = make(map[string]any)
		}
		b.Extra[e.key] = decodeAny(e.value)
	}
	return b
}

func ports(n *yaml.Node) []graph.Port {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	var out []graph.Port
	for _, item := range n.Content {
		item = resolve(item)
		switch {
		case item.Kind == yaml.ScalarNode:
			s := item.Value
			if s == "" {
				continue
			}
			port := graph.Port{Protocol: "tcp", Mode: "host"}
			if i := strings.LastIndex(s, ":"); i >= 0 {
				port.Published, port.Target = graph.Scalar(s[:i]), graph.Scalar(s[i+1:])
			} else {
				port.Published = graph.Scalar(s)
			}
			out = append(out, port)
		case item.Kind == yaml.MappingNode:
			port := graph.Port{
				Published: graph.Scalar(scalarOf(lookup(item, "published"))),
				Target:    graph.Scalar(scalarOf(lookup(item, "target"))),
				Protocol:  scalarOf(lookup(item, "protocol")),
				Mode:      scalarOf(lookup(item, "mode")),
			}
			if port.Protocol == "" {
				port.Protocol = "tcp"
			}
			if port.Mode == "" {
				port.Mode = "host"
			}
			out = append(out, port)
		}
	}
	return out
}

func (p *parser) mounts(n *yaml.Node) []graph.VolumeMount {
	n = resolve(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	var out []graph.VolumeMount
	for _, item := range n.Content {
		item = resolve(item)
		switch item.Kind {
		case yaml.ScalarNode:
			if item.Value == "" {
				continue
			}
			parts := strings.Split(item.Value, ":")
			if len(parts) == 1 {
				out = append(out, graph.VolumeMount{RelativePathSource: parts[0], Destination: parts[0]})
				continue
			}
			m := p.mountSource(parts[0])
			m.Destination = parts[1]
			if len(parts) > 2 {
				m.Mode = strings.Join(parts[2:], ":")
			}
			out = append(out, m)
		case yaml.MappingNode:
			target := scalarOf(lookup(item, "target"))
			if target == "" {
				continue
			}
			source := scalarOf(lookup(item, "source"))
			if source == "" {
				source = target
			}
			m := p.mountSource(source)
			m.Destination = target
			if ro := scalarOf(lookup(item, "read_only")); ro == "true" {
				m.Mode = "ro"
			}
			out = append(out, m)
		}
	}
	return out
}

func (p *parser) mountSource(source string) graph.VolumeMount {
	if id, ok := p.volumes[source]; ok {
		return graph.VolumeMount{Volume: id}
	}
	return graph.VolumeMount{RelativePathSource: source}
}

// normalizeDeploy turns deploy labels and placement preferences into key/value rows
func normalizeDeploy(deploy map[string]any) map[string]any {
	if labels, ok := formatter.KeyValuesFrom(deploy["labels"]); ok && labels != nil {
		deploy["labels"] = labels
	}
	placement, ok := deploy["placement"].(map[string]any)
	if !ok {
		return deploy
	}
	prefs, ok := placement["preferences"].([]any)
	if !ok {
		return deploy
	}
	rows := make(graph.KeyValues, 0, len(prefs))
	for _, pref := range prefs {
		m, ok := pref.(map[string]any)
		if !ok || len(m) != 1 {
			return deploy
		}
		for k, v := range m {
			rows = append(rows, graph.KeyValue{Key: k, Value: formatter.ScalarString(v)})
		}
	}
	placement["preferences"] = rows
	return deploy
}

// connections links every service to the services it depends on and the volumes it mounts
func connections(g *graph.Graph) []graph.Connection {
	out := []graph.Connection{}
	seen := make(map[graph.Connection]bool)
	add := func(c graph.Connection) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, svc := range g.Services {
		for _, dep := range svc.DependsOn {
			add(graph.NewConnection(svc.UUID, dep))
		}
		for _, dep := range svc.Links {
			add(graph.NewConnection(svc.UUID, dep))
		}
		for _, m := range svc.VolumeMounts {
			if m.Volume != "" {
				add(graph.NewConnection(svc.UUID, m.Volume))
			}
		}
	}
	return out
}
