// Package models defines the data shapes shared by the gauth client packages:
// the session, the credentials collected by the login and registration pages,
// and the wire response of the authentication endpoints.
package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the authenticated identity plus bearer token held by the client.
// A Session is either the zero value (absent) or Valid; the session store
// never holds anything in between.
type Session struct {
	// UserID is the server-side identifier ("_id" on the wire).
	UserID string

	// User is the account email; together with Token it is what the guard checks.
	User string

	// Picture is the display picture URL (may be a data URL).
	Picture string

	// Token is the bearer token returned by the server.
	Token string

	// ExpiresAt is read from the token's "exp" claim when the token is a JWT.
	// Zero means unknown.
	ExpiresAt time.Time
}

// Valid reports whether both the identity and the token are present.
func (s Session) Valid() bool {
	return s.User != "" && s.Token != ""
}

// IsZero reports whether the session is entirely absent.
func (s Session) IsZero() bool {
	return s == Session{}
}

// Expired reports whether the token is known to have expired at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TokenExpiry reads the "exp" claim of a JWT without verifying its
// signature; the client only uses it to drop stale sessions. Opaque tokens
// and tokens without "exp" yield the zero time.
func TokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
