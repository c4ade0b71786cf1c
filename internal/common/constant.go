// Package common contains constants and byte helpers shared by the gauth
// client packages.
package common

const (
	// RequestIDHeaderName carries the per-call correlation id on HTTP requests
	// and gRPC metadata.
	RequestIDHeaderName = "X-Request-ID"

	// AuthorizationHeaderName carries the bearer token once a session exists.
	AuthorizationHeaderName = "Authorization"
)
