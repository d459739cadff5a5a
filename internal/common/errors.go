// Package common contains shared constants and sentinel errors used across
// the Life is Skill client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Transport-level errors.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors. ErrInvalidToken is session-fatal: the orchestrator
	// responds with a forced logout and a full user-data wipe.
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingToken = errors.New("missing token")

	// Scan preconditions. A point scanned without a location fix can never
	// be submitted and must not be queued for retry.
	ErrMissingLocation = errors.New("missing location")

	// Offline login without locally cached credentials.
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)
