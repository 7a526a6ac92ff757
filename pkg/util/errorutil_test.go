package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	err := NewValidationError("bad input", map[string]any{"field": "email"})
	mapped := ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, mapped.HTTPStatus)
	assert.Equal(t, "VALIDATION_FAILED", mapped.Code)
	assert.Equal(t, "bad input", mapped.Message)
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	mapped := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", mapped.Code)

	wrapped := fmt.Errorf("fetch ticket: %w", pgx.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, ToDomainError(wrapped).HTTPStatus)
}

func TestToDomainErrorHidesInternalDetail(t *testing.T) {
	mapped := ToDomainError(errors.New("connection reset by postgres"))
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
	assert.Equal(t, "internal server error", mapped.Message)
	// Wrapped cause stays available for logging.
	assert.Contains(t, mapped.Error(), "connection reset")
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError(cause)
	assert.True(t, errors.Is(err, cause))
}
