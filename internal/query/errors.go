package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes expression errors.
type ErrorCode string

const (
	// CodeInvalidArgument is raised by setters for wrongly typed input or
	// values outside a whitelist.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeDomain is raised at compile time by structurally valid expressions
	// that lack the information needed to compile.
	CodeDomain ErrorCode = "DOMAIN"
)

// Sentinels for errors.Is matching.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrDomain          = errors.New("domain error")
)

// Error is the error type returned by expression setters and compilers.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Field is the expression field at fault (e.g. "operator").
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches the ErrInvalidArgument and ErrDomain sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Code == CodeInvalidArgument
	case ErrDomain:
		return e.Code == CodeDomain
	}
	return false
}

// InvalidArgument creates an Error with CodeInvalidArgument.
func InvalidArgument(field, format string, args ...any) *Error {
	return &Error{
		Code:    CodeInvalidArgument,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// DomainError creates an Error with CodeDomain.
func DomainError(field, format string, args ...any) *Error {
	return &Error{
		Code:    CodeDomain,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInvalidArgument reports whether err is, or wraps, an invalid-argument error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsDomainError reports whether err is, or wraps, a domain error.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}
