package managers

import "context"

// TokenSource resolves the current session token. Implemented by the
// SessionManager; returns common.ErrMissingToken when nobody is logged in,
// which is the hard precondition check preventing null-token network calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
