package common

import (
	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/graph"
)

// ImportResponse is the graph rebuilt from a compose document
type ImportResponse struct {
	Data *graph.Graph        `json:"data"`
	Lint *compose.LintResult `json:"lint,omitempty"`
}

// HealthInfo is returned by GET /health?info=true
type HealthInfo struct {
	PublicURL  string `json:"public_url,omitempty"`
	InstanceID string `json:"instance_id"`
	Backend    string `json:"backend"`
}
