package formatter

import (
	"github.com/lissto-dev/composer/pkg/graph"
)

// Dependencies returns the names of the services svc depends on: its depends_on and links
// entries followed by the targets of connections leaving any of its addressing tokens.
// References that resolve to no service, or to svc itself, are dropped.
func Dependencies(g *graph.Graph, svc *graph.ServiceSpec) []string {
	var names []string
	seen := map[string]bool{svc.Name: true}
	add := func(token string) {
		dep, ok := g.ServiceByToken(token)
		if !ok || seen[dep.Name] {
			return
		}
		seen[dep.Name] = true
		names = append(names, dep.Name)
	}

	for _, ref := range svc.DependsOn {
		add(ref)
	}
	for _, ref := range svc.Links {
		add(ref)
	}

	tokens := make(map[string]bool)
	for _, t := range svc.Tokens() {
		tokens[t] = true
	}
	for _, c := range g.Connections {
		if tokens[c.From()] {
			add(c.To())
		}
	}
	return names
}
