// Package common defines shared constants and sentinel errors used across
// the repo store, its façade and the operator CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrorNotFound = errors.New("not found")

	// Addressing errors. A malformed target is a caller bug and is never retried.
	ErrInvalidTarget = errors.New("invalid target")

	// Write-path validation errors.
	ErrMissingRequiredField = errors.New("missing required field")
	ErrUnknownField         = errors.New("unknown field")
	ErrImmutableField       = errors.New("immutable field")

	// ErrConstraintViolation wraps a storage engine rejection of a row that
	// passed the store's own checks.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrFingerprintMismatch is never returned from a write. It is carried by
	// consistency warnings when a supplied fingerprint does not match the
	// one computed from the public key.
	ErrFingerprintMismatch = errors.New("stored and calculated fingerprints do not match")
)
