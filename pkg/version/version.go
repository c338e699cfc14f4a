// Package version classifies compose version tokens into schema generations.
package version

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidVersionToken is returned when a version token is neither a known alias nor a number
var ErrInvalidVersionToken = errors.New("invalid compose version token")

// latestAliases name the version-less compose specification
var latestAliases = map[string]bool{
	"latest":        true,
	"latest (spec)": true,
	"spec":          true,
	"compose-spec":  true,
}

// Version is a resolved compose version token
type Version struct {
	// Token is the trimmed token the version was resolved from
	Token string
	// Number is the numeric version; meaningless when HasNumber is false
	Number     float64
	HasNumber  bool
	Generation Generation
}

// Resolve classifies a version token. Aliases of the compose specification and the empty
// token resolve to Latest; numeric tokens resolve to their clamped major generation.
func Resolve(token string) (Version, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" || latestAliases[strings.ToLower(trimmed)] {
		return Version{Token: trimmed, Generation: Latest}, nil
	}

	v := Version{Token: trimmed, HasNumber: true}
	if n, err := strconv.Atoi(trimmed); err == nil {
		v.Number = float64(n)
	} else {
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersionToken, token)
		}
		v.Number = f
	}

	v.Generation = clamp(int(math.Floor(v.Number)))
	return v, nil
}

// MustResolve is Resolve for tokens known to be valid
func MustResolve(token string) Version {
	v, err := Resolve(token)
	if err != nil {
		panic(err)
	}
	return v
}

func clamp(major int) Generation {
	switch {
	case major <= 1:
		return V1
	case major == 2:
		return V2
	default:
		return V3
	}
}

// Line is the value of the document's version key, or "" when no version key is written.
// The token is kept as written so "3.10" does not become "3.1".
func (v Version) Line() string {
	if !v.HasNumber {
		return ""
	}
	return v.Token
}

func (v Version) String() string {
	if !v.HasNumber {
		return "latest"
	}
	return v.Line()
}
