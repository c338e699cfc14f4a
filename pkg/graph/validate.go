package graph

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ErrDuplicateUUID is returned when two graph entities share a uuid
var ErrDuplicateUUID = errors.New("duplicate uuid")

// Validate checks that every entity is named, names are unique per collection and
// uuids are unique across the whole graph.
func (g *Graph) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}

	seen := make(map[string]string)
	check := func(id, name string) error {
		if other, ok := seen[id]; ok {
			return fmt.Errorf("%w %q shared by %q and %q", ErrDuplicateUUID, id, other, name)
		}
		seen[id] = name
		return nil
	}
	for _, s := range g.Services {
		if err := check(s.UUID, s.Name); err != nil {
			return err
		}
	}
	for _, v := range g.Volumes {
		if err := check(v.UUID, v.Name); err != nil {
			return err
		}
	}
	for _, n := range g.Networks {
		if err := check(n.UUID, n.Name); err != nil {
			return err
		}
	}
	return nil
}
