package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound     = errors.New("resource not found")
	ErrBlobNotFound = fmt.Errorf("%w: blob", ErrNotFound)

	ErrAlreadyExists = errors.New("resource already exists")

	// ErrQuotaExceeded is returned by stores that enforce the plan limit
	// inside the insert itself
	ErrQuotaExceeded = errors.New("file quota exhausted")
)

// NewNotFoundError wraps ErrNotFound with the resource and id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err is any kind of not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
