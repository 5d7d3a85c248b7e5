package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchByCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		status int
	}{
		{"validation", NewValidationError("bad", nil), ErrInvalidInput, http.StatusBadRequest},
		{"duplicate", NewDuplicateEmail("a@b.c"), ErrDuplicateEmail, http.StatusConflict},
		{"credentials", NewInvalidCredentials(), ErrInvalidCredentials, http.StatusUnauthorized},
		{"mismatch", NewMismatch("x"), ErrMismatch, http.StatusBadRequest},
		{"forbidden", NewForbidden("x", "/app"), ErrForbidden, http.StatusForbidden},
		{"not found", NewNotFound("ticket", nil), ErrNotFound, http.StatusNotFound},
		{"status", NewInvalidStatus("zzz"), ErrInvalidStatus, http.StatusBadRequest},
		{"taxonomy", NewInvalidTaxonomy("a", "b"), ErrInvalidTaxonomy, http.StatusBadRequest},
		{"empty body", NewEmptyBody(), ErrEmptyBody, http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("x"), ErrUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)
			assert.Equal(t, tt.status, ToDomainError(wrapped).HTTPStatus)
			assert.NotErrorIs(t, tt.err, errInternal)
		})
	}
}

var errInternal = &DomainError{Code: CodeInternal}

func TestForbiddenCarriesRedirect(t *testing.T) {
	err := ToDomainError(NewForbidden("no", "/tickets"))
	assert.Equal(t, "/tickets", err.Details["redirect"])
	assert.Nil(t, ToDomainError(NewForbidden("no", "")).Details)
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.Equal(t, CodeNotFound, ToDomainError(sql.ErrNoRows).Code)

	cause := errors.New("disk full")
	internal := ToDomainError(cause)
	assert.Equal(t, CodeInternal, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.ErrorIs(t, internal, cause)
}
