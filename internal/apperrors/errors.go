// Package apperrors defines the error taxonomy shared by the storage,
// repository and service layers. Callers classify failures with errors.Is.
package apperrors

import "errors"

// ErrStorage indicates that the underlying storage failed (unavailable,
// corrupt, disk full). Fatal to the current operation, never retried.
var ErrStorage = errors.New("storage error")

// ErrConstraint indicates a uniqueness or foreign-key violation on write.
// Surfaced immediately, never retried.
var ErrConstraint = errors.New("constraint violation")

// ErrNotFound indicates that a referenced entity is absent.
var ErrNotFound = errors.New("not found")

// ErrMalformedData indicates that an import document failed shape or type
// validation.
var ErrMalformedData = errors.New("malformed data")

// ErrUnsupportedVersion indicates an import document version this build
// does not handle.
var ErrUnsupportedVersion = errors.New("unsupported document version")
