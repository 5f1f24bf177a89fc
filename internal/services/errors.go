package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure into the closed set the transport layer maps
// to HTTP statuses. Handlers switch on the kind, never on message text.
type ErrorKind int

const (
	// ErrorKindValidation covers malformed or inconsistent input. Safe to
	// retry after fixing the request.
	ErrorKindValidation ErrorKind = iota

	// ErrorKindNotFound covers references to entities that do not exist.
	ErrorKindNotFound

	// ErrorKindPolicy covers requests a project is not permitted to make
	// (suspended/killed project, target not allowlisted). Retrying the same
	// request will not help.
	ErrorKindPolicy

	// ErrorKindResource covers exhausted funds or caps. The caller resolves
	// it externally (top up, wait for the window) before retrying.
	ErrorKindResource

	// ErrorKindInfrastructure covers store or downstream failures. The
	// operation had no partial effect and is safe to retry.
	ErrorKindInfrastructure
)

// ServiceError carries a typed kind, a stable machine-readable code and a
// human message. The wrapped cause is for logs only and never leaves the
// process.
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
	cause   error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewValidationError creates a validation-kind error.
func NewValidationError(code, message string) *ServiceError {
	return &ServiceError{Kind: ErrorKindValidation, Code: code, Message: message}
}

// NewNotFoundError creates a not-found-kind error.
func NewNotFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: ErrorKindNotFound, Code: code, Message: message}
}

// NewPolicyError creates a policy-kind error.
func NewPolicyError(code, message string) *ServiceError {
	return &ServiceError{Kind: ErrorKindPolicy, Code: code, Message: message}
}

// NewResourceError creates a resource-kind error.
func NewResourceError(code, message string) *ServiceError {
	return &ServiceError{Kind: ErrorKindResource, Code: code, Message: message}
}

// NewInfrastructureError creates an infrastructure-kind error wrapping the
// underlying cause.
func NewInfrastructureError(code, message string, cause error) *ServiceError {
	return &ServiceError{Kind: ErrorKindInfrastructure, Code: code, Message: message, cause: cause}
}

// AsServiceError extracts a ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// KindOf returns the error kind for err, defaulting to infrastructure for
// anything untyped.
func KindOf(err error) ErrorKind {
	if svcErr, ok := AsServiceError(err); ok {
		return svcErr.Kind
	}
	return ErrorKindInfrastructure
}
