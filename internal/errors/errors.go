// Package errors defines the domain error taxonomy shared by the services
// and mapped to transport status codes at the HTTP edge.
package errors

import (
	stderrors "errors"
	"fmt"
)

// DomainError is a synchronous, locally detected failure. Two DomainErrors
// are the same error when their codes match.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e carrying a request specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid request",
	}
	ErrInvalidStatusTransition = &DomainError{
		Code:    "INVALID_STATUS_TRANSITION",
		Message: "status transition not allowed",
	}
	ErrUnavailable = &DomainError{
		Code:    "UNAVAILABLE",
		Message: "service temporarily unavailable",
	}
)

// Validation returns an ErrValidation carrying the given detail.
func Validation(format string, args ...interface{}) error {
	return ErrValidation.WithMessage(format, args...)
}

type unavailableError struct {
	op  string
	err error
}

func (u *unavailableError) Error() string {
	return fmt.Sprintf("%s: %v", u.op, u.err)
}

func (u *unavailableError) Unwrap() []error {
	return []error{ErrUnavailable, u.err}
}

// Unavailable marks err as an infrastructure failure which callers may retry.
// Domain errors pass through untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return err
	}
	return &unavailableError{op: op, err: err}
}

// Code returns the domain code carried by err, or "" when err is not a
// domain error.
func Code(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

func New(text string) error { return stderrors.New(text) }
