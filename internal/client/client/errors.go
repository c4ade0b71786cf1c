package client

import "errors"

var (
	ErrUnavailable       = errors.New("server unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRejected          = errors.New("request rejected")
	ErrMalformedResponse = errors.New("malformed response")
)
