package serializer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lissto-dev/composer/pkg/formatter"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/version"
)

type ComposeSerializer struct{}

func NewComposeSerializer() *ComposeSerializer {
	return &ComposeSerializer{}
}

// Serialize converts a graph to docker-compose YAML for the requested version.
// Top-level sections are separated by a blank line, and so are the service stanzas.
func (cs *ComposeSerializer) Serialize(g *graph.Graph, targetVersion string) (string, error) {
	v, err := version.Resolve(targetVersion)
	if err != nil {
		return "", err
	}
	gen := v.Generation

	var sections []string
	add := func(key string, value *yaml.Node) error {
		if value == nil {
			return nil
		}
		text, err := encode(formatter.NewMapping().Set(key, value).Node())
		if err != nil {
			return fmt.Errorf("failed to serialize %s: %w", key, err)
		}
		sections = append(sections, text)
		return nil
	}

	if line := v.Line(); line != "" {
		if err := add("version", formatter.DoubleQuoted(line)); err != nil {
			return "", err
		}
	}

	if len(g.Services) > 0 {
		services := cs.services(g, gen)
		if gen.ServicesAtRoot() {
			text, err := encode(services)
			if err != nil {
				return "", fmt.Errorf("failed to serialize services: %w", err)
			}
			sections = append(sections, separateEntries(text, 0))
		} else {
			text, err := encode(formatter.NewMapping().Set("services", services).Node())
			if err != nil {
				return "", fmt.Errorf("failed to serialize services: %w", err)
			}
			sections = append(sections, separateEntries(text, 2))
		}
	}

	if err := add("networks", formatter.TopLevelNetworks(g.Networks, gen)); err != nil {
		return "", err
	}
	if err := add("volumes", formatter.TopLevelVolumes(g.Volumes, gen)); err != nil {
		return "", err
	}
	if len(g.Secrets) > 0 {
		if err := add("secrets", formatter.Value(g.Secrets)); err != nil {
			return "", err
		}
	}
	if len(g.Configs) > 0 {
		if err := add("configs", formatter.Value(g.Configs)); err != nil {
			return "", err
		}
	}

	return strings.Join(sections, "\n"), nil
}

func (cs *ComposeSerializer) services(g *graph.Graph, gen version.Generation) *yaml.Node {
	services := formatter.NewMapping()
	for i := range g.Services {
		svc := &g.Services[i]
		if svc.Name == "" {
			continue
		}
		services.Set(svc.Name, cs.service(g, svc, gen))
	}
	return services.Node()
}

func (cs *ComposeSerializer) service(g *graph.Graph, svc *graph.ServiceSpec, gen version.Generation) *yaml.Node {
	m := formatter.NewMapping().
		Set("image", formatter.StrIf(imageRef(svc))).
		Set("container_name", formatter.StrIf(svc.ContainerName)).
		Set("restart", formatter.StrIf(svc.Restart)).
		Set("command", formatter.Command(svc.Command)).
		Set("entrypoint", formatter.Command(svc.Entrypoint)).
		Set("working_dir", formatter.StrIf(svc.WorkingDir)).
		Set("ports", formatter.Ports(svc.Ports))

	if deps := formatter.Dependencies(g, svc); len(deps) > 0 {
		m.Set(gen.DependencyKey(), formatter.Value(deps))
	}

	m.Set("environment", formatter.KeyValues(svc.Environment, false))
	if gen.SupportsEnvFile() && len(svc.EnvFile) > 0 {
		m.Set("env_file", formatter.Value([]string(svc.EnvFile)))
	}
	m.Set("volumes", formatter.Mounts(svc.VolumeMounts, g.Volumes))

	if gen.SupportsLabels() {
		m.Set("labels", formatter.KeyValues(svc.Labels.Without(graph.ReservedKeyLabel), true))
	}
	if gen.SupportsNetworks() {
		m.Set("networks", formatter.NetworkRefs(svc.NetworkRefs, g.Networks))
	}

	m.Set("build", formatter.Build(svc.Build, gen))
	if gen.SupportsProfiles() && len(svc.Profiles) > 0 {
		m.Set("profiles", formatter.Value([]string(svc.Profiles)))
	}
	m.Set("deploy", formatter.Deploy(svc.Deploy, gen))

	node := m.Node()
	if m.Len() == 0 {
		node.Style = yaml.FlowStyle
	}
	return node
}

func imageRef(svc *graph.ServiceSpec) string {
	if svc.Image == "" {
		return ""
	}
	if svc.Tag == "" {
		return svc.Image
	}
	return svc.Image + ":" + svc.Tag
}

func encode(node *yaml.Node) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// separateEntries puts a blank line before every entry at the given indentation except the
// first one, so each service stanza stands apart.
func separateEntries(text string, indent int) string {
	var b strings.Builder
	first := true
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		if strings.TrimSpace(trimmed) != "" && len(line)-len(trimmed) == indent {
			if !first {
				b.WriteString("\n")
			}
			first = false
		}
		b.WriteString(line)
	}
	return b.String()
}
