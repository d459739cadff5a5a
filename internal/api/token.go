package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the bearer token is a JWT whose exp claim is
// already in the past. The signature is not verified — the server remains
// the authority — this only avoids sending requests that are guaranteed to
// come back as invalid-token. Opaque (non-JWT) tokens and tokens without an
// exp claim are never considered expired locally.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
