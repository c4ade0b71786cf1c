// Package client talks to the gauth authentication backend and bootstraps the
// local vault database.
//
// # Overview
//
// The package provides:
//  1. The Client interface: Login, Register, Ping and Close.
//  2. HTTPClient, the default transport: JSON over HTTP against
//     /api/users/login, /api/users/register and /api/health.
//  3. GRPCClient, an alternative transport using structpb payloads and the
//     standard gRPC health service.
//  4. InitDatabase and RunMigrations, which open the SQLite vault and apply
//     the embedded goose migrations.
//
// # Error Handling
//
// Both transports map failures onto the same sentinel errors, matched with
// errors.Is: ErrUnauthorized, ErrUnavailable, ErrRejected and
// ErrMalformedResponse. A success response that lacks an email or a token is
// reported as ErrMalformedResponse; callers never receive a half-filled
// AuthResponse.
//
// Every call carries an X-Request-ID and honors ctx together with the
// per-call timeout the client was built with.
package client
