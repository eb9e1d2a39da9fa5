package utils

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindAuth         ErrorKind = "auth"
	KindInvalidToken ErrorKind = "invalid_token"
	KindNotFound     ErrorKind = "not_found"
	KindUpload       ErrorKind = "upload"
	KindInternal     ErrorKind = "internal"
)

// APIError is an error that knows its HTTP status and client-facing message.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error // underlying cause, never sent to clients
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func NewValidationError(message string) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewConflictError(message string) *APIError {
	return &APIError{Kind: KindConflict, Status: http.StatusBadRequest, Message: message}
}

// NewAuthError is used for bad credentials (400) and missing or superseded tokens (401).
func NewAuthError(status int, message string) *APIError {
	return &APIError{Kind: KindAuth, Status: status, Message: message}
}

func NewInvalidTokenError(message string, err error) *APIError {
	return &APIError{Kind: KindInvalidToken, Status: http.StatusUnauthorized, Message: message, Err: err}
}

func NewNotFoundError(message string) *APIError {
	return &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewUploadError(message string) *APIError {
	return &APIError{Kind: KindUpload, Status: http.StatusBadRequest, Message: message}
}

func NewInternalError(message string, err error) *APIError {
	return &APIError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindInternal
}
