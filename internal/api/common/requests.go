package common

import (
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/layout"
)

// GenerateRequest carries the canvas graph as the editor posts it
type GenerateRequest struct {
	Data *graph.Graph `json:"data" validate:"required"`
	// Version overrides data.version when set
	Version string `json:"version,omitempty"`
}

// TargetVersion picks the compose version to render: the explicit override, then the
// graph's own version, then fallback.
func (r *GenerateRequest) TargetVersion(fallback string) string {
	if r.Version != "" {
		return r.Version
	}
	if r.Data != nil && r.Data.Version != "" {
		return r.Data.Version
	}
	return fallback
}

// ImportRequest carries a compose document to turn into a graph
type ImportRequest struct {
	Code string `json:"code" validate:"required"`
	// Layout is a previously imported graph whose node positions are reused by name
	Layout *graph.Graph `json:"layout,omitempty"`
}

// Prior returns the name-keyed layout of the previous graph, or nil
func (r *ImportRequest) Prior() layout.Prior {
	if r.Layout == nil {
		return nil
	}
	return layout.PriorFromGraph(r.Layout)
}
