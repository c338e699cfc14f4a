package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// ConversionResult is a cached Kubernetes conversion
type ConversionResult struct {
	Backend   string `json:"backend"`
	Manifest  string `json:"manifest"`
	Error     string `json:"error,omitempty"`
	Documents int    `json:"documents"`
}

// ConversionKey derives the cache key of a compose document converted by backend
func ConversionKey(backend, composeYAML string) string {
	sum := sha256.Sum256([]byte(composeYAML))
	return "kompose:" + backend + ":" + hex.EncodeToString(sum[:])
}
