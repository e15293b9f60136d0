package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can pick a status code with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store error")
	ErrInternal     = errors.New("internal error")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrCredentialsRequired = fmt.Errorf("%w: email and password are required", ErrValidation)
	ErrDescriptionRequired = fmt.Errorf("%w: description is required", ErrValidation)
	ErrPasswordTooLong     = fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)

	ErrAccountExists = fmt.Errorf("%w: account already exists", ErrConflict)

	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords; callers must not be able to tell the two apart.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrMissingToken       = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid token", ErrUnauthorized)

	ErrAccountNotFound = fmt.Errorf("%w: account not found", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("%w: Task not found", ErrNotFound)
)

// StoreError wraps a persistence fault. The cause is kept for logging and is
// never rendered to clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports ErrStore so callers can match the kind without unwrapping.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore returns nil for a nil err.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// WrapInternal marks a fault outside the store, such as hashing or signing.
// It returns nil for a nil err.
func WrapInternal(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}
