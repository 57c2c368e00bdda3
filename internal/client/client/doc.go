// Package client contains the transport building blocks of capgallery.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     gallery backend: CurrentUser, Login/Register, AllPosts/MyPosts and
//     CreatePost.
//  2. A concrete HTTP implementation (see HTTPClient) that keeps the session
//     cookie in a jar, sends it on every request, tags requests with an
//     X-Request-ID, traces them through otelhttp and maps response codes to
//     sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrUnexpectedStatus,
// ErrBadResponse.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context; the client itself imposes no timeout beyond the configured
// http.Client timeout.
package client
