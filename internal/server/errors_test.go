package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/store"
	"github.com/jonathan/listing-optimizer/internal/types"
)

func TestErrBadRequest(t *testing.T) {
	err := &ErrBadRequest{Message: "invalid JSON body", Cause: errors.New("unexpected EOF")}
	assert.Equal(t, "bad request: invalid JSON body: unexpected EOF", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	bare := &ErrBadRequest{Message: "missing format"}
	assert.Equal(t, "bad request: missing format", bare.Error())
}

func TestHTTPStatus(t *testing.T) {
	validation := &types.ValidationError{Subject: "keyword"}
	validation.Add("term", "is required")

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", validation, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("import: %w", validation), http.StatusBadRequest},
		{"store not found", fmt.Errorf("keyword %q: %w", "k1", store.ErrNotFound), http.StatusNotFound},
		{"rule not found", fmt.Errorf("%w: 뷰티", category.ErrRuleNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("term: %w", store.ErrConflict), http.StatusConflict},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewErrorBody(t *testing.T) {
	validation := &types.ValidationError{Subject: "keyword"}
	validation.Add("volume", "must be >= 0")

	body := newErrorBody(http.StatusBadRequest, validation)
	assert.Equal(t, "invalid keyword: volume: must be >= 0", body.Error)
	assert.Equal(t, []types.FieldViolation{{Field: "volume", Message: "must be >= 0"}}, body.Violations)

	internal := newErrorBody(http.StatusInternalServerError, errors.New("connection refused"))
	assert.Equal(t, "internal server error", internal.Error)
	assert.Empty(t, internal.Violations)
}
