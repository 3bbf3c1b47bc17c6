// Package apperr defines the sentinel errors shared by the service and
// handler layers. Services wrap these with context via fmt.Errorf and %w;
// handlers map them onto HTTP statuses with errors.Is.
package apperr

import "errors"

var (
	// ErrValidation marks caller-fixable input: blank required fields,
	// malformed identifiers.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup key that matches no record.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden marks a caller that is not the owning user.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict marks a uniqueness invariant violation.
	ErrConflict = errors.New("conflict")

	// ErrDependency marks a failed external collaborator (media store,
	// cascade step). Fatal to the current operation, retryable by caller.
	ErrDependency = errors.New("dependency failure")
)
