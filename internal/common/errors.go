package common

import (
	"errors"
	"fmt"
)

// Error kinds shared by every store. Expected conditions are returned as
// these values; only StorageFault wraps an underlying I/O failure.
var (
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrValidation        = errors.New("validation failed")
	ErrStorageFault      = errors.New("storage fault")
)

// ValidationError rejects input before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageFault wraps a failure of the underlying database or blob bucket.
// Callers may retry the whole operation; the layer never retries it.
type StorageFault struct {
	Op  string
	Err error
}

func (e *StorageFault) Error() string {
	return fmt.Sprintf("storage fault: %s: %v", e.Op, e.Err)
}

func (e *StorageFault) Unwrap() error {
	return e.Err
}

func (e *StorageFault) Is(target error) bool {
	return target == ErrStorageFault
}

// Fault classifies err as a StorageFault for op. nil stays nil and errors
// that already are faults are returned unchanged.
func Fault(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFault) {
		return err
	}
	return &StorageFault{Op: op, Err: err}
}
