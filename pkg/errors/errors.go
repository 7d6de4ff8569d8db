package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error and decides how it is rendered.
type Kind string

const (
	// KindValidation is returned when a request is missing required input.
	KindValidation Kind = "validation"
	// KindNotFound is returned when the addressed record does not exist.
	KindNotFound Kind = "not_found"
	// KindStorage is returned when the database cannot be reached or a statement fails.
	KindStorage Kind = "storage"
	// KindRouteNotFound is returned when no route matches the request.
	KindRouteNotFound Kind = "route_not_found"
)

// HTTPStatus returns the HTTP status code for the kind
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound, KindRouteNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the tagged error result shared by the usecase and transport layers.
// Detail carries the raw driver message for storage errors and is empty otherwise.
type AppError struct {
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewRouteNotFoundError creates a new route not found error
func NewRouteNotFoundError(message string) *AppError {
	return &AppError{Kind: KindRouteNotFound, Message: message}
}

// NewStorageError wraps a database failure
func NewStorageError(message string, err error) *AppError {
	appErr := &AppError{Kind: KindStorage, Message: message, Err: err}
	if err != nil {
		appErr.Detail = err.Error()
	}
	return appErr
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error
func (e *AppError) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// As extracts an *AppError from the error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an *AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
