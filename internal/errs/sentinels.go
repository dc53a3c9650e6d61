// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrUnauthenticated indicates no identity was presented where one is required.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the identity is known but does not own the target.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the entity does not exist or is not visible to the requester.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed or empty input.
	ErrValidation = errors.New("validation")

	// ErrPersistence indicates the storage engine failed to apply a write or read.
	ErrPersistence = errors.New("persistence")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrRateLimited indicates a temporary lock after repeated authentication failures.
	ErrRateLimited = errors.New("rate limited")
)

// IsTaxonomy reports whether err already carries one of the sentinels above.
func IsTaxonomy(err error) bool {
	for _, s := range []error{
		ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrValidation,
		ErrPersistence, ErrAlreadyExists, ErrRateLimited,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// Persistence classifies a storage error: taxonomy and context errors pass through,
// anything else is reported as ErrPersistence.
func Persistence(err error) error {
	if err == nil || IsTaxonomy(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
