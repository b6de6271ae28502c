// Package server provides the HTTP REST API for the listing optimizer.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/store"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// ErrBadRequest indicates a request that could not be decoded
type ErrBadRequest struct {
	Message string
	Cause   error
}

func (e *ErrBadRequest) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bad request: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("bad request: %s", e.Message)
}

func (e *ErrBadRequest) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var badRequest *ErrBadRequest
	var validation *types.ValidationError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &badRequest), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, category.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error      string                 `json:"error"`
	Violations []types.FieldViolation `json:"violations,omitempty"`
}

// newErrorBody hides internal error text behind a generic message.
func newErrorBody(status int, err error) errorBody {
	if status == http.StatusInternalServerError {
		return errorBody{Error: "internal server error"}
	}
	body := errorBody{Error: err.Error()}
	if ve, ok := types.AsValidationError(err); ok {
		body.Violations = ve.Violations
	}
	return body
}
