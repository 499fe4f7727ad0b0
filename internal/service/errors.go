package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrDependency = errors.New("dependency unavailable")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLockedOut          = errors.New("account locked out, try again later")
)

// ValidationError carries every problem found in one submission. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

func invalid(format string, args ...interface{}) error {
	v := &ValidationError{}
	v.add(format, args...)
	return v
}
