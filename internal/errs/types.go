package errs

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error category returned to API callers.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindForbidden        Kind = "forbidden"
	KindModelUnavailable Kind = "model_unavailable"
	KindToolUnavailable  Kind = "tool_unavailable"
	KindInternal         Kind = "internal_error"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type ForbiddenError struct {
	ErrorMessage
}

// NotConvergedError is returned when the model keeps requesting tools past the round limit.
type NotConvergedError struct {
	ErrorMessage
	Rounds int
}

type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Message, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

type EncryptionError struct {
	ErrorMessage
	Err error
}

func (e *EncryptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewNotConvergedError(rounds int) *NotConvergedError {
	return &NotConvergedError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("agent did not converge after %d rounds", rounds)},
		Rounds:       rounds,
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewEncryptionError(message string, err error) *EncryptionError {
	return &EncryptionError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

// IsTransient reports whether err is an external failure worth one retry.
func IsTransient(err error) bool {
	var ext *ExternalServiceError
	return errors.As(err, &ext) && ext.Transient
}

// KindOf classifies err for API responses. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	var (
		validation *ValidationError
		forbidden  *ForbiddenError
		ext        *ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		return KindInvalidRequest
	case errors.As(err, &forbidden):
		return KindForbidden
	case errors.As(err, &ext):
		if ext.Service == ServiceVertex {
			return KindModelUnavailable
		}
		return KindToolUnavailable
	default:
		return KindInternal
	}
}

// Service names used in ExternalServiceError.
const (
	ServiceVertex = "vertex"
	ServiceMaps   = "maps"
	ServiceTavily = "tavily"
)
