package compose

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// KindMalformedInputDocument marks a document that is not valid YAML
const KindMalformedInputDocument = "MalformedInputDocument"

var lineRe = regexp.MustCompile(`line (\d+):?\s*`)

// ParseError is a YAML syntax error in an imported document, shaped so it can be shown to
// end users as is.
type ParseError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Err     error  `json:"-"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed compose document at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("malformed compose document: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func newParseError(err error) *ParseError {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	pe := &ParseError{Kind: KindMalformedInputDocument, Err: err}
	if m := lineRe.FindStringSubmatch(msg); m != nil {
		pe.Line, _ = strconv.Atoi(m[1])
		msg = strings.Replace(msg, m[0], "", 1)
	}
	pe.Message = strings.TrimSpace(msg)
	return pe
}
