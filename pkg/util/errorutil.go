package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeDuplicateEmail     = "DUPLICATE_EMAIL"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeMismatch           = "MISMATCH"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidTaxonomy    = "INVALID_TAXONOMY"
	CodeEmptyBody          = "EMPTY_BODY"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Any DomainError with the same Code matches.
var (
	ErrInvalidInput       = &DomainError{Code: CodeInvalidInput, HTTPStatus: http.StatusBadRequest}
	ErrDuplicateEmail     = &DomainError{Code: CodeDuplicateEmail, HTTPStatus: http.StatusConflict}
	ErrInvalidCredentials = &DomainError{Code: CodeInvalidCredentials, HTTPStatus: http.StatusUnauthorized}
	ErrMismatch           = &DomainError{Code: CodeMismatch, HTTPStatus: http.StatusBadRequest}
	ErrForbidden          = &DomainError{Code: CodeForbidden, HTTPStatus: http.StatusForbidden}
	ErrNotFound           = &DomainError{Code: CodeNotFound, HTTPStatus: http.StatusNotFound}
	ErrInvalidStatus      = &DomainError{Code: CodeInvalidStatus, HTTPStatus: http.StatusBadRequest}
	ErrInvalidTaxonomy    = &DomainError{Code: CodeInvalidTaxonomy, HTTPStatus: http.StatusBadRequest}
	ErrEmptyBody          = &DomainError{Code: CodeEmptyBody, HTTPStatus: http.StatusBadRequest}
	ErrUnauthorized       = &DomainError{Code: CodeUnauthorized, HTTPStatus: http.StatusUnauthorized}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidInput, message, http.StatusBadRequest, details)
}

func NewDuplicateEmail(email string) error {
	return NewDomainError(CodeDuplicateEmail, "email already registered", http.StatusConflict,
		map[string]any{"email": email})
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid credentials", http.StatusUnauthorized, nil)
}

func NewMismatch(message string) error {
	return NewDomainError(CodeMismatch, message, http.StatusBadRequest, nil)
}

func NewInvalidStatus(status string) error {
	return NewDomainError(CodeInvalidStatus, "invalid status", http.StatusBadRequest,
		map[string]any{"status": status})
}

func NewInvalidTaxonomy(department, subcategory string) error {
	return NewDomainError(CodeInvalidTaxonomy, "subcategory does not belong to department", http.StatusBadRequest,
		map[string]any{"department": department, "subcategory": subcategory})
}

func NewEmptyBody() error {
	return NewDomainError(CodeEmptyBody, "comment body is empty", http.StatusBadRequest, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewForbidden builds a forbidden error pointing the client at a neutral page.
func NewForbidden(message, redirect string) error {
	var details map[string]any
	if redirect != "" {
		details = map[string]any{"redirect": redirect}
	}
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, details)
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, "too many requests", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
