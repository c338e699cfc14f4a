package response

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/version"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	// Parse carries the structured details of a malformed compose document
	Parse *compose.ParseError `json:"parse,omitempty"`
}

// CodeResponse carries generated compose text
type CodeResponse struct {
	Code string `json:"code"`
}

// OK sends a 200 response with data as the body
func OK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// Code sends generated text as {"code": ...}
func Code(c echo.Context, code string) error {
	return c.JSON(http.StatusOK, CodeResponse{Code: code})
}

// Error sends an error response
func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorResponse{Error: message})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

// InternalServerError sends a 500 Internal Server Error response
func InternalServerError(c echo.Context, message string) error {
	return Error(c, http.StatusInternalServerError, message)
}

// FromError maps an engine error to a status code. Input problems (malformed YAML, bad
// version tokens, invalid graphs) are 400s; anything else is a 500.
func FromError(c echo.Context, err error) error {
	var parseErr *compose.ParseError
	if errors.As(err, &parseErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: parseErr.Error(), Parse: parseErr})
	}

	var validationErrs validator.ValidationErrors
	if errors.Is(err, version.ErrInvalidVersionToken) || errors.Is(err, graph.ErrDuplicateUUID) ||
		errors.As(err, &validationErrs) {
		return BadRequest(c, err.Error())
	}
	return InternalServerError(c, err.Error())
}
