package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingPrerequisite means a dependent component was constructed or
	// invoked without the tables/index/capability it needs. Fatal for the
	// operation that needed them; previously built state stays untouched.
	ErrMissingPrerequisite = errors.New("missing prerequisite data")

	ErrDatabase = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// MissingPrerequisite builds the standard construction-time failure for a
// component whose required input is absent.
func MissingPrerequisite(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingPrerequisite, what)
}
