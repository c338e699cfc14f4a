// Package layout places imported services, volumes and networks on the canvas.
package layout

import (
	"sort"

	"github.com/lissto-dev/composer/pkg/graph"
)

const (
	origin = 20
	step   = 200
	perRow = 5
)

// Key addresses a prior node. Services, volumes and networks have separate name spaces, so
// a service and a volume may both be called "postgres".
type Key struct {
	Kind graph.NodeKind
	Name string
}

// Prior is a caller-supplied layout keyed by node kind and name
type Prior map[Key]graph.CanvasNode

// PriorFromGraph builds a prior layout from an earlier version of a graph, naming every
// canvas node after the entity that owns its uuid. Nodes without an owner are skipped.
func PriorFromGraph(g *graph.Graph) Prior {
	prior := make(Prior)
	if g == nil {
		return prior
	}
	for _, node := range g.Canvas {
		name, kind, ok := g.NodeName(node.UUID)
		if !ok {
			continue
		}
		node.Name = name
		node.Kind = kind
		prior[Key{Kind: kind, Name: name}] = node
	}
	return prior
}

// lookup returns the prior position of a node with this name and kind
func (p Prior) lookup(name string, kind graph.NodeKind) (graph.Position, bool) {
	node, ok := p[Key{Kind: kind, Name: name}]
	if !ok {
		return graph.Position{}, false
	}
	return node.Position, true
}

// placer hands out grid positions row by row
type placer struct {
	top, left float64
	count     int
}

func newPlacer() *placer {
	return &placer{top: origin, left: origin}
}

func (p *placer) next() graph.Position {
	if p.count%perRow == 0 {
		p.left = origin
		p.top += step
	}
	p.left += step
	p.count++
	return graph.Position{Top: p.top, Left: p.left}
}

// breakRow makes the next position start a new row
func (p *placer) breakRow() {
	if p.count%perRow != 0 {
		p.count += perRow - p.count%perRow
	}
}

// Compute lays out the canvas for g. Services are grouped by how many services they depend
// on; groups are placed in increasing dependency count, document order within a group, five
// per row. The service nodes are then reversed, so the most dependent services come first.
// Volumes and networks follow on rows of their own. Nodes found in prior keep their
// position under their new uuid.
func Compute(g *graph.Graph, prior Prior) []graph.CanvasNode {
	groups := make(map[int][]*graph.ServiceSpec)
	for i := range g.Services {
		svc := &g.Services[i]
		n := DependencyCount(g, svc)
		groups[n] = append(groups[n], svc)
	}
	counts := make([]int, 0, len(groups))
	for n := range groups {
		counts = append(counts, n)
	}
	sort.Ints(counts)

	p := newPlacer()
	place := func(id, name string, kind graph.NodeKind) graph.CanvasNode {
		pos := p.next()
		if prev, ok := prior.lookup(name, kind); ok {
			pos = prev
		}
		return graph.CanvasNode{UUID: id, Kind: kind, Name: name, Position: pos}
	}

	var services []graph.CanvasNode
	for _, n := range counts {
		for _, svc := range groups[n] {
			services = append(services, place(svc.UUID, svc.Name, graph.KindService))
		}
	}
	canvas := make([]graph.CanvasNode, 0, len(services)+len(g.Volumes)+len(g.Networks))
	for i := len(services) - 1; i >= 0; i-- {
		canvas = append(canvas, services[i])
	}

	if len(g.Volumes) > 0 {
		p.breakRow()
		for _, v := range g.Volumes {
			canvas = append(canvas, place(v.UUID, v.Name, graph.KindVolume))
		}
	}
	if len(g.Networks) > 0 {
		p.breakRow()
		for _, n := range g.Networks {
			canvas = append(canvas, place(n.UUID, n.Name, graph.KindNetwork))
		}
	}
	return canvas
}

// DependencyCount is the number of distinct services svc resolves through depends_on and links
func DependencyCount(g *graph.Graph, svc *graph.ServiceSpec) int {
	seen := make(map[string]bool)
	for _, refs := range [][]string{svc.DependsOn, svc.Links} {
		for _, ref := range refs {
			if ref == svc.UUID {
				continue
			}
			if _, ok := g.ServiceByUUID(ref); ok {
				seen[ref] = true
			}
		}
	}
	return len(seen)
}
