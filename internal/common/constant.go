// Package common contains shared constants and sentinel errors used across
// capgallery components.
package common

// RequestIDHeaderName is the HTTP header carrying the per-request correlation ID
// on outbound backend calls.
const RequestIDHeaderName = "X-Request-ID"

// MinPasswordLength is the minimum accepted length of password fields in the
// login and register forms.
const MinPasswordLength = 6
