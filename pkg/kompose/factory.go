package kompose

import (
	"fmt"
)

const (
	BackendCLI     = "cli"
	BackendLibrary = "library"
)

// NewConverter builds the converter for backend. binary is only used by the CLI backend
// and namespace only by the library backend.
func NewConverter(backend, binary, namespace string, opts ...Option) (Converter, error) {
	switch backend {
	case BackendCLI, "":
		return NewCLIConverter(binary, NewRealRunner(), opts...), nil
	case BackendLibrary:
		return NewLibraryConverter(namespace, opts...), nil
	default:
		return nil, fmt.Errorf("unknown kompose backend %q", backend)
	}
}
