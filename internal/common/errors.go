// Package common defines shared constants and sentinel errors used across
// the client layers of capgallery. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")

	// Validation errors (raised before any network call).
	ErrValidation = errors.New("validation error")

	// View lifecycle errors.
	ErrViewClosed = errors.New("view closed")
)
