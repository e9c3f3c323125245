// Package apperrors holds the sentinel errors shared by the ticket and payment
// flows. Callers match them with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrProvider         = errors.New("payment provider error")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
)

// Store marks err as a storage failure while keeping the original cause in
// the chain.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStoreUnavailable, err))
}

// Kind returns the sentinel err belongs to, or nil when it carries none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrUnauthenticated,
		ErrInvalidInput,
		ErrNotFound,
		ErrConflict,
		ErrProvider,
		ErrStoreUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
