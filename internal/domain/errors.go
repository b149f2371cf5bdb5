package domain

import "errors"

var (
	// ErrValidation signals missing or malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrNoCredential signals that no usable bearer token could be extracted.
	ErrNoCredential = errors.New("no usable credential")
	// ErrUpstream signals that the vault API is unreachable or every fetch tier failed.
	ErrUpstream = errors.New("vault upstream unavailable")
	// ErrSessionNotFound signals a missing or expired session.
	ErrSessionNotFound = errors.New("session not found")
)
