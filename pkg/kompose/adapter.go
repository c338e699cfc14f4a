package kompose

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/serializer"
)

// Adapter produces Kubernetes manifests from a graph or a compose document. It removes the
// keys Kubernetes cannot represent, renders compose YAML and hands it to a Converter.
type Adapter struct {
	converter  Converter
	serializer *serializer.ComposeSerializer
	stripKeys  []string
}

func NewAdapter(converter Converter) *Adapter {
	return &Adapter{
		converter:  converter,
		serializer: serializer.NewComposeSerializer(),
		stripKeys:  DefaultStripKeys,
	}
}

// ConvertGraph converts g rendered at targetVersion (the graph's own version when empty).
// The error covers invalid input only; converter failures are reported in the Result.
func (a *Adapter) ConvertGraph(ctx context.Context, g *graph.Graph, targetVersion string) (Result, error) {
	composeYAML, err := a.Render(g, targetVersion)
	if err != nil {
		return Result{}, err
	}
	return a.converter.Convert(ctx, composeYAML), nil
}

// ConvertDocument reads a compose document into a graph and converts it at the document's
// own version.
func (a *Adapter) ConvertDocument(ctx context.Context, composeYAML string) (Result, error) {
	rendered, err := a.RenderDocument(composeYAML)
	if err != nil {
		return Result{}, err
	}
	return a.converter.Convert(ctx, rendered), nil
}

// Render returns the compose text the converter would receive for g
func (a *Adapter) Render(g *graph.Graph, targetVersion string) (string, error) {
	if targetVersion == "" {
		targetVersion = g.Version
	}
	stripped, err := a.Strip(g)
	if err != nil {
		return "", err
	}
	return a.serializer.Serialize(stripped, targetVersion)
}

// RenderDocument is Render for a compose document at its own version
func (a *Adapter) RenderDocument(composeYAML string) (string, error) {
	g, err := compose.Parse(composeYAML, nil)
	if err != nil {
		return "", err
	}
	return a.Render(g, g.Version)
}

// Strip returns a copy of g without the strip keys, removed at every depth of its JSON form
func (a *Adapter) Strip(g *graph.Graph) (*graph.Graph, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	raw, err = json.Marshal(StripKeys(tree, a.stripKeys...))
	if err != nil {
		return nil, fmt.Errorf("failed to encode stripped graph: %w", err)
	}

	stripped := graph.New(g.Version)
	if err := json.Unmarshal(raw, stripped); err != nil {
		return nil, fmt.Errorf("failed to decode stripped graph: %w", err)
	}
	return stripped, nil
}
